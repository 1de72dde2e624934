// Package lexicon loads word sources for the segmentation dictionary.
// It reads plain word lists (optionally xz- or gzip-compressed), XML
// lexicon files, and .lex manifest files describing a named dictionary,
// and compiles them into the prefix tree the segmenter queries.
package lexicon

import (
	"sort"
	"strings"

	"github.com/lexica-dev/wordbreak/core/trie"
)

// Lexicon is a named, loaded word set. Words keep their source casing;
// the trie normalizes on insertion, so casing never affects matching.
type Lexicon struct {
	Name        string
	Description string
	Source      string   // path or description of where the words came from
	Words       []string // deduplicated, in first-seen order
}

// Len returns the number of words.
func (l *Lexicon) Len() int {
	return len(l.Words)
}

// Build compiles the lexicon into a prefix-tree dictionary. The returned
// trie is read-only and safe to share across segmentation calls.
func (l *Lexicon) Build() *trie.Trie {
	t := trie.New()
	for _, w := range l.Words {
		t.Insert(w)
	}
	return t
}

// Fingerprint returns the BLAKE3 content fingerprint of the word set.
// See ComputeFingerprint for the identity rules.
func (l *Lexicon) Fingerprint() string {
	return ComputeFingerprint(l.Words)
}

// dedupe returns words with case-insensitive duplicates removed,
// preserving first-seen order. Word order never affects the built tree,
// but a stable order keeps fingerprints and store contents reproducible.
func dedupe(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		key := strings.ToLower(w)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, w)
	}
	return out
}

// sortedNormalized returns the lowercased word set in sorted order.
func sortedNormalized(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	sort.Strings(out)
	return out
}
