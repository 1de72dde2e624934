package lexicon

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// ComputeFingerprint returns the hex BLAKE3 hash identifying a word set.
// The hash is taken over the lowercased words in sorted order, each
// terminated by a newline, so two lists with the same words in any order
// or casing share a fingerprint. Fingerprints key the dictionary cache
// and identify dictionaries in the store.
func ComputeFingerprint(words []string) string {
	h := blake3.New()
	for _, w := range sortedNormalized(dedupe(words)) {
		h.WriteString(w)
		h.WriteString("\n")
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}
