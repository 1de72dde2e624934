package lexicon

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/lexica-dev/wordbreak/core/errors"
)

// Manifest represents a parsed .lex dictionary manifest.
type Manifest struct {
	Lines []ManifestLine `parser:"@@*"`
}

// ManifestLine represents a single meaningful line in a manifest.
type ManifestLine struct {
	Section  string `parser:"  @Section"`
	Property string `parser:"| @Property"`
}

// manifestLexer defines tokens for .lex manifests using line-based
// patterns. Order matters: more specific patterns come first.
var manifestLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comment lines (full line starting with #)
	{Name: "Comment", Pattern: `#[^\r\n]*`},
	// Section header line: [DictionaryName]
	{Name: "Section", Pattern: `\[[^\]\r\n]+\]`},
	// Property line: Key=Value
	{Name: "Property", Pattern: `[a-zA-Z][a-zA-Z0-9_.]*=[^\r\n]*`},
	// Whitespace (spaces/tabs)
	{Name: "Whitespace", Pattern: `[ \t]+`},
	// Newlines
	{Name: "Newline", Pattern: `[\r\n]+`},
})

// manifestParser is the Participle parser for .lex manifests.
var manifestParser = participle.MustBuild[Manifest](
	participle.Lexer(manifestLexer),
	participle.Elide("Comment", "Whitespace", "Newline"),
)

// ParseManifest parses a .lex manifest from a string.
func ParseManifest(input string) (*Manifest, error) {
	return manifestParser.ParseString("", input)
}

// manifestFields are the recognized manifest properties.
type manifestFields struct {
	name        string
	description string
	source      string
}

// fields flattens the parsed lines into the recognized properties.
// Unknown keys are ignored so manifests stay forward-compatible.
func (m *Manifest) fields() manifestFields {
	var f manifestFields
	for _, line := range m.Lines {
		if line.Section != "" {
			name := strings.TrimPrefix(line.Section, "[")
			name = strings.TrimSuffix(name, "]")
			f.name = strings.ToLower(name)
			continue
		}
		if line.Property != "" {
			idx := strings.Index(line.Property, "=")
			if idx < 0 {
				continue
			}
			key := line.Property[:idx]
			value := strings.TrimSpace(line.Property[idx+1:])
			switch key {
			case "Description":
				f.description = value
			case "Source":
				f.source = value
			}
		}
	}
	return f
}

// LoadManifest parses the .lex manifest at path and loads the word
// source it names. A relative Source is resolved against the manifest's
// directory.
func LoadManifest(path string) (*Lexicon, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	m, err := ParseManifest(string(data))
	if err != nil {
		return nil, errors.NewParse("manifest", path, err.Error())
	}

	f := m.fields()
	if f.name == "" {
		return nil, errors.NewParse("manifest", path, "missing [name] section")
	}
	if f.source == "" {
		return nil, errors.NewParse("manifest", path, "missing Source property")
	}

	source := f.source
	if !filepath.IsAbs(source) {
		source = filepath.Join(filepath.Dir(path), source)
	}
	if strings.HasSuffix(source, ".lex") {
		return nil, errors.NewParse("manifest", path, "Source must not be another manifest")
	}

	lex, err := LoadFile(source)
	if err != nil {
		return nil, errors.Wrapf(err, "loading manifest source %s", f.source)
	}
	lex.Name = f.name
	if f.description != "" {
		lex.Description = f.description
	}
	return lex, nil
}
