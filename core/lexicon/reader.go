package lexicon

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/lexica-dev/wordbreak/core/errors"
)

// LoadFile loads a word source from path, dispatching on the extension:
//
//	.lex        dictionary manifest (see LoadManifest)
//	.xml        XML lexicon (see ParseXML)
//	.xz, .gz    compressed plain word list
//	anything    plain word list
//
// The lexicon name defaults to the file's base name without extensions.
func LoadFile(path string) (*Lexicon, error) {
	switch {
	case strings.HasSuffix(path, ".lex"):
		return LoadManifest(path)
	case strings.HasSuffix(path, ".xml"):
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.NewIO("open", path, err)
		}
		defer f.Close()
		lex, err := ParseXML(f)
		if err != nil {
			return nil, err
		}
		if lex.Name == "" {
			lex.Name = baseName(path)
		}
		lex.Source = path
		return lex, nil
	default:
		return loadWordListFile(path)
	}
}

// loadWordListFile opens a plain word list, transparently decompressing
// .xz and .gz files by suffix.
func loadWordListFile(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	var reader io.Reader = f
	switch {
	case strings.HasSuffix(path, ".xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			return nil, errors.NewParse("xz word list", path, err.Error())
		}
		reader = xzr
	case strings.HasSuffix(path, ".gz"):
		gzr, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.NewParse("gzip word list", path, err.Error())
		}
		defer gzr.Close()
		reader = gzr
	}

	words, err := ParseWordList(reader)
	if err != nil {
		return nil, errors.Wrapf(err, "reading word list %s", path)
	}
	return &Lexicon{
		Name:   baseName(path),
		Source: path,
		Words:  words,
	}, nil
}

// ParseWordList reads whitespace-separated tokens from r. Blank lines
// and lines starting with '#' are ignored; a '#' mid-line is part of the
// token (word lists do not carry trailing comments).
func ParseWordList(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, strings.Fields(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return dedupe(words), nil
}

// readFile reads a whole file, wrapping failures as IOError.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return data, nil
}

// baseName strips the directory and all extensions from path, so
// "dicts/english.txt.xz" becomes "english".
func baseName(path string) string {
	name := filepath.Base(path)
	for {
		ext := filepath.Ext(name)
		if ext == "" {
			return name
		}
		name = strings.TrimSuffix(name, ext)
	}
}
