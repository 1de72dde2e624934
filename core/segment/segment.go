// Package segment decomposes a run of characters with no explicit word
// boundaries into a sequence of dictionary words. It applies greedy
// longest-match with single-step backtracking: at each position the
// longest confirmed word wins, a dead end reverts to the last confirmed
// word of the current round, and committed words are never reconsidered.
package segment

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/lexica-dev/wordbreak/core/trie"
)

// ErrUnmatchedRun is the sentinel for segmentation failures. Use
// errors.Is against it, or errors.As with *UnmatchedRunError for the
// failure position.
var ErrUnmatchedRun = errors.New("unmatched run")

// UnmatchedRunError reports that no decomposition exists from some
// position onward: at Pos neither a complete word nor any extendable
// prefix exists, and no earlier-confirmed word in the round could be
// used as a fallback.
type UnmatchedRunError struct {
	Pos   int    // rune offset into the input where matching became impossible
	Input string // the full input, for diagnostics
}

func (e *UnmatchedRunError) Error() string {
	return fmt.Sprintf("unmatched run at position %d in %q", e.Pos, e.Input)
}

func (e *UnmatchedRunError) Unwrap() error {
	return ErrUnmatchedRun
}

// SeparatorPolicy controls what happens to the input position after a
// word is committed.
type SeparatorPolicy int

const (
	// NoSeparator starts the next round immediately after the committed
	// word. This is the default: the input is boundary-free text and every
	// rune belongs to some word.
	NoSeparator SeparatorPolicy = iota

	// SkipOne consumes one rune after each committed word, treating it as
	// a mandatory separator between words.
	SkipOne
)

// SymbolPolicy controls how maximal runs of non-letter runes are handled.
type SymbolPolicy int

const (
	// SymbolsFail gives non-letter runes no special treatment. Unless the
	// dictionary itself contains them (insertion is character-agnostic),
	// a run of symbols dead-ends like any other unmatched input.
	SymbolsFail SymbolPolicy = iota

	// SymbolsEmit passes each maximal non-letter run through as a single
	// opaque output word, without consulting the dictionary.
	SymbolsEmit

	// SymbolsSkip drops maximal non-letter runs from the output.
	SymbolsSkip
)

// Options configures a Segmenter. The zero value is the documented
// default: no separator skipping, symbols fail the run.
type Options struct {
	Separator SeparatorPolicy
	Symbols   SymbolPolicy
}

// Segmenter splits boundary-free text into dictionary words. It holds a
// read-only dictionary and is safe for concurrent use; each Segment call
// owns its own scan state.
type Segmenter struct {
	dict *trie.Trie
	opts Options
}

// New creates a Segmenter over the given dictionary.
func New(dict *trie.Trie, opts Options) *Segmenter {
	return &Segmenter{dict: dict, opts: opts}
}

// Segment decomposes input into an ordered sequence of dictionary words.
// On failure it returns a nil slice and an *UnmatchedRunError; the
// accumulated partial output is never exposed, so a batch of independent
// inputs can continue after one failure.
func (s *Segmenter) Segment(input string) ([]string, error) {
	runes := []rune(input)
	end := len(runes)

	var out []string
	start := 0
	for start < end {
		if s.opts.Symbols != SymbolsFail && !unicode.IsLetter(runes[start]) {
			stop := start + 1
			for stop < end && !unicode.IsLetter(runes[stop]) {
				stop++
			}
			if s.opts.Symbols == SymbolsEmit {
				out = append(out, string(runes[start:stop]))
			}
			start = stop
			continue
		}

		word, next, err := s.round(runes, start, end)
		if err != nil {
			return nil, err
		}
		out = append(out, word)
		start = next
		if s.opts.Separator == SkipOne && start < end {
			start++
		}
	}
	return out, nil
}

// round finds the longest dictionary word beginning at start. It returns
// the committed word and the rune position immediately after it.
//
// The probe grows one rune at a time through a trie cursor rather than
// re-querying from the root, so a round is linear in the probe length.
func (s *Segmenter) round(runes []rune, start, end int) (string, int, error) {
	c := s.dict.Root()
	probe := start
	bestEnd := -1 // exclusive end of the longest confirmed word this round

	for {
		isWord := c.IsWord()
		extendable := c.IsExtendable()

		switch {
		case isWord && (!extendable || probe == end):
			// Unambiguous longest word for this round: no longer
			// dictionary word shares this prefix, or input is exhausted.
			return string(runes[start:probe]), probe, nil

		case isWord:
			// A valid word, but a longer one might exist. Remember it and
			// keep extending.
			bestEnd = probe

		case !extendable:
			// Dead end. Backtrack to the last confirmed word, or fail.
			if bestEnd >= 0 {
				return string(runes[start:bestEnd]), bestEnd, nil
			}
			return "", start, &UnmatchedRunError{Pos: start, Input: string(runes)}
		}

		if probe == end {
			// Still a viable prefix but nothing left to extend with.
			if bestEnd >= 0 {
				return string(runes[start:bestEnd]), bestEnd, nil
			}
			return "", start, &UnmatchedRunError{Pos: start, Input: string(runes)}
		}
		c.Step(runes[probe]) // a failed step leaves the cursor dead; the next pass sees it
		probe++
	}
}
