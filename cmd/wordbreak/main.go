// Command wordbreak is the CLI tool for dictionary-based word
// segmentation. It provides commands for managing stored dictionaries,
// segmenting text, and running the API server.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/lexica-dev/wordbreak/core/errors"
	"github.com/lexica-dev/wordbreak/core/lexicon"
	"github.com/lexica-dev/wordbreak/core/segment"
	"github.com/lexica-dev/wordbreak/core/trie"
	"github.com/lexica-dev/wordbreak/internal/api"
	"github.com/lexica-dev/wordbreak/internal/logging"
	"github.com/lexica-dev/wordbreak/internal/store"
	"github.com/lexica-dev/wordbreak/internal/validation"
)

const version = "0.1.0"

// CLI defines the command-line interface for wordbreak.
var CLI struct {
	// Global flags
	DB        string `help:"Path to dictionary store database" default:"wordbreak.db" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level" enum:"debug,info,warn,error" default:"info"`
	LogFormat string `name:"log-format" help:"Log format" enum:"text,json" default:"text"`

	// Command groups (noun-first organization)
	Dict    DictGroup  `cmd:"" help:"Dictionary operations (import, list, info, export, delete)"`
	Segment SegmentCmd `cmd:"" help:"Segment text into dictionary words"`
	Serve   ServeCmd   `cmd:"" help:"Start REST API server"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// DictGroup contains dictionary lifecycle operations.
type DictGroup struct {
	Import DictImportCmd `cmd:"" help:"Import a word list into the store"`
	List   DictListCmd   `cmd:"" help:"List stored dictionaries"`
	Info   DictInfoCmd   `cmd:"" help:"Show dictionary details"`
	Export DictExportCmd `cmd:"" help:"Export a stored dictionary as a plain word list"`
	Delete DictDeleteCmd `cmd:"" help:"Delete a stored dictionary"`
}

// DictImportCmd imports a word list into the store.
type DictImportCmd struct {
	Path        string `arg:"" help:"Path to word list (.txt, .txt.gz, .txt.xz, .xml, or .lex manifest)" type:"existingfile"`
	Name        string `help:"Dictionary name (default: derived from filename)"`
	Description string `help:"Dictionary description"`
}

func (c *DictImportCmd) Run() error {
	if err := validation.ValidatePath(c.Path); err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}

	lex, err := lexicon.LoadFile(c.Path)
	if err != nil {
		return fmt.Errorf("failed to load word list: %w", err)
	}

	if c.Name != "" {
		lex.Name = c.Name
	}
	if c.Description != "" {
		lex.Description = c.Description
	}
	if err := validation.ValidateDictionaryName(lex.Name); err != nil {
		return fmt.Errorf("invalid dictionary name %q (use --name): %w", lex.Name, err)
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	info, err := s.Import(lex)
	if err != nil {
		if errors.Is(err, errors.ErrAlreadyExists) {
			return fmt.Errorf("dictionary already exists: %s", lex.Name)
		}
		return fmt.Errorf("failed to import dictionary: %w", err)
	}

	fmt.Printf("Imported: %s\n", info.Name)
	fmt.Printf("  Words: %d\n", info.WordCount)
	fmt.Printf("  Fingerprint: %s\n", info.Fingerprint)
	fmt.Printf("  Source: %s\n", info.Source)
	return nil
}

// DictListCmd lists stored dictionaries.
type DictListCmd struct{}

func (c *DictListCmd) Run() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	dicts, err := s.List()
	if err != nil {
		return fmt.Errorf("failed to list dictionaries: %w", err)
	}

	if len(dicts) == 0 {
		fmt.Printf("No dictionaries in %s\n", CLI.DB)
		return nil
	}

	fmt.Printf("Dictionaries in %s:\n\n", CLI.DB)
	for _, d := range dicts {
		fmt.Printf("  %s (%d words)\n", d.Name, d.WordCount)
		if d.Description != "" {
			fmt.Printf("    %s\n", d.Description)
		}
	}
	fmt.Printf("\nTotal: %d dictionar(ies)\n", len(dicts))
	return nil
}

// DictInfoCmd shows dictionary details.
type DictInfoCmd struct {
	Name string `arg:"" help:"Dictionary name"`
}

func (c *DictInfoCmd) Run() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	info, err := s.Info(c.Name)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return fmt.Errorf("dictionary not found: %s", c.Name)
		}
		return fmt.Errorf("failed to query store: %w", err)
	}

	fmt.Printf("Dictionary: %s\n", info.Name)
	fmt.Printf("  Words: %d\n", info.WordCount)
	fmt.Printf("  Fingerprint: %s\n", info.Fingerprint)
	if info.Description != "" {
		fmt.Printf("  Description: %s\n", info.Description)
	}
	if info.Source != "" {
		fmt.Printf("  Source: %s\n", info.Source)
	}
	fmt.Printf("  Created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

// DictExportCmd exports a stored dictionary as a plain word list.
type DictExportCmd struct {
	Name string `arg:"" help:"Dictionary name"`
	Out  string `help:"Output path (default: stdout)" type:"path"`
}

func (c *DictExportCmd) Run() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	lex, err := s.Load(c.Name)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return fmt.Errorf("dictionary not found: %s", c.Name)
		}
		return fmt.Errorf("failed to load dictionary: %w", err)
	}

	var out io.Writer = os.Stdout
	if c.Out != "" {
		f, err := os.Create(c.Out)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	for _, word := range lex.Words {
		fmt.Fprintln(w, word)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write word list: %w", err)
	}

	if c.Out != "" {
		fmt.Printf("Exported %d words to %s\n", lex.Len(), c.Out)
	}
	return nil
}

// DictDeleteCmd deletes a stored dictionary.
type DictDeleteCmd struct {
	Name string `arg:"" help:"Dictionary name"`
}

func (c *DictDeleteCmd) Run() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Delete(c.Name); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return fmt.Errorf("dictionary not found: %s", c.Name)
		}
		return fmt.Errorf("failed to delete dictionary: %w", err)
	}

	fmt.Printf("Deleted: %s\n", c.Name)
	return nil
}

// SegmentCmd segments text into dictionary words.
type SegmentCmd struct {
	Text      []string `arg:"" optional:"" help:"Text to segment (reads stdin lines when omitted)"`
	Name      string   `help:"Stored dictionary name"`
	DictFile  string   `name:"dict-file" help:"Load dictionary from a word list file instead of the store" type:"existingfile"`
	Separator string   `help:"Separator policy" enum:"none,skip-one" default:"none"`
	Symbols   string   `help:"Non-letter run policy" enum:"fail,emit,skip" default:"fail"`
	JSON      bool     `help:"Output as JSON"`
}

// segmentOutput is one line of --json output.
type segmentOutput struct {
	Input    string   `json:"input"`
	Words    []string `json:"words,omitempty"`
	Error    string   `json:"error,omitempty"`
	Position *int     `json:"position,omitempty"`
}

func (c *SegmentCmd) Run() error {
	dict, err := c.loadDict()
	if err != nil {
		return err
	}

	sep, err := segment.ParseSeparatorPolicy(c.Separator)
	if err != nil {
		return err
	}
	sym, err := segment.ParseSymbolPolicy(c.Symbols)
	if err != nil {
		return err
	}
	seg := segment.New(dict, segment.Options{Separator: sep, Symbols: sym})

	if len(c.Text) > 0 {
		failures := 0
		for _, input := range c.Text {
			if !c.segmentOne(seg, input) {
				failures++
			}
		}
		if failures > 0 {
			return fmt.Errorf("%d input(s) could not be segmented", failures)
		}
		return nil
	}

	// Batch mode: one input per stdin line. A failed line is reported
	// and the batch continues; the exit status reflects any failure.
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	failures := 0
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if !c.segmentOne(seg, line) {
			failures++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	if failures > 0 {
		return fmt.Errorf("%d input(s) could not be segmented", failures)
	}
	return nil
}

// segmentOne processes a single input and reports success.
func (c *SegmentCmd) segmentOne(seg *segment.Segmenter, input string) bool {
	words, err := seg.Segment(input)
	if err != nil {
		var unmatched *segment.UnmatchedRunError
		if errors.As(err, &unmatched) {
			if c.JSON {
				pos := unmatched.Pos
				printJSON(segmentOutput{Input: input, Error: "unmatched run", Position: &pos})
			} else {
				fmt.Fprintf(os.Stderr, "error: %s: no dictionary word matches at position %d\n", input, unmatched.Pos)
			}
			return false
		}
		fmt.Fprintf(os.Stderr, "error: %s: %v\n", input, err)
		return false
	}

	if c.JSON {
		printJSON(segmentOutput{Input: input, Words: words})
	} else {
		fmt.Println(strings.Join(words, " "))
	}
	return true
}

// loadDict resolves the dictionary from --dict-file or --name.
func (c *SegmentCmd) loadDict() (*trie.Trie, error) {
	switch {
	case c.DictFile != "" && c.Name != "":
		return nil, fmt.Errorf("--dict-file and --name are mutually exclusive")

	case c.DictFile != "":
		lex, err := lexicon.LoadFile(c.DictFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load dictionary file: %w", err)
		}
		logging.DictionaryLoad(lex.Name, c.DictFile, lex.Len())
		return lex.Build(), nil

	case c.Name != "":
		s, err := openStore()
		if err != nil {
			return nil, err
		}
		defer s.Close()

		lex, err := s.Load(c.Name)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return nil, fmt.Errorf("dictionary not found: %s", c.Name)
			}
			return nil, fmt.Errorf("failed to load dictionary: %w", err)
		}
		logging.DictionaryLoad(lex.Name, CLI.DB, lex.Len())
		return lex.Build(), nil

	default:
		return nil, fmt.Errorf("either --dict-file or --name is required")
	}
}

// ServeCmd starts the REST API server.
type ServeCmd struct {
	Addr           string `help:"Listen address" default:":8081"`
	APIKey         string `name:"api-key" help:"Require this API key on requests" env:"WORDBREAK_API_KEY"`
	RateLimit      int    `name:"rate-limit" help:"Requests per minute per client (0 = disabled)"`
	RateLimitBurst int    `name:"rate-limit-burst" help:"Burst size for rate limiting" default:"10"`
	TLSCert        string `name:"tls-cert" help:"Path to TLS certificate file" type:"path"`
	TLSKey         string `name:"tls-key" help:"Path to TLS private key file" type:"path"`
}

func (c *ServeCmd) Run() error {
	cfg := api.Config{
		Addr:              c.Addr,
		DBPath:            CLI.DB,
		RateLimitRequests: c.RateLimit,
		RateLimitBurst:    c.RateLimitBurst,
		Auth: api.AuthConfig{
			Enabled: c.APIKey != "",
			APIKey:  c.APIKey,
		},
		TLS: api.TLSConfig{
			Enabled:  c.TLSCert != "" || c.TLSKey != "",
			CertFile: c.TLSCert,
			KeyFile:  c.TLSKey,
		},
	}
	return api.Start(cfg)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("wordbreak version %s\n", version)
	return nil
}

// Helper functions

func openStore() (*store.Store, error) {
	s, err := store.Open(CLI.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary store %s: %w", CLI.DB, err)
	}
	return s, nil
}

func printJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to encode JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func initLogging() {
	level := logging.LevelInfo
	switch CLI.LogLevel {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}

	format := logging.FormatText
	if CLI.LogFormat == "json" {
		format = logging.FormatJSON
	}

	logging.InitLogger(level, format)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("wordbreak"),
		kong.Description("Dictionary-based segmentation of boundary-free text"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	initLogging()
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
