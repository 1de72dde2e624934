// Package trie implements the prefix-tree dictionary used for word
// segmentation. The tree answers two questions about a character range in
// near-linear time: is it a complete dictionary word, and can it still be
// extended into one.
package trie

import "unicode"

// node is a single tree node. Children are exclusively owned by their
// parent; the tree is acyclic and rooted, so no back-references are needed.
type node struct {
	children map[rune]*node
	terminal bool
}

// newNode creates an empty, non-terminal node.
func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Trie is a case-insensitive prefix dictionary. It is built once via
// Insert and is read-only afterwards: any number of goroutines may query
// a built Trie concurrently without synchronization.
type Trie struct {
	root  *node
	words int
}

// New creates an empty Trie.
func New() *Trie {
	return &Trie{root: newNode()}
}

// normalize maps a rune to its tree key. Both insertion and queries go
// through this, which is what makes the dictionary case-insensitive.
func normalize(r rune) rune {
	return unicode.ToLower(r)
}

// Insert adds a word to the dictionary, creating one node per normalized
// rune and marking the final node terminal. Inserting a word twice is a
// no-op beyond the flag already being set. The tree is character-agnostic:
// empty or non-alphabetic input is not rejected at this layer, though the
// empty word marks no node and is not counted.
func (t *Trie) Insert(word string) {
	if word == "" {
		return
	}
	n := t.root
	for _, r := range word {
		key := normalize(r)
		child, ok := n.children[key]
		if !ok {
			child = newNode()
			n.children[key] = child
		}
		n = child
	}
	if !n.terminal {
		n.terminal = true
		t.words++
	}
}

// Len returns the number of distinct words inserted.
func (t *Trie) Len() int {
	return t.words
}

// Query walks the tree from the root consuming each normalized rune in
// runes[start:end] and reports:
//
//   - isWord: a complete path exists for the whole range and the final
//     node is terminal.
//   - isExtendable: the final node has at least one child, i.e. some
//     longer dictionary word has this range as a strict prefix.
//
// If the path breaks before the full range is consumed, both results are
// false regardless of what matched before the break.
func (t *Trie) Query(runes []rune, start, end int) (isWord, isExtendable bool) {
	c := t.Root()
	for i := start; i < end; i++ {
		if !c.Step(runes[i]) {
			return false, false
		}
	}
	return c.IsWord(), c.IsExtendable()
}

// Contains reports whether word is in the dictionary.
func (t *Trie) Contains(word string) bool {
	runes := []rune(word)
	isWord, _ := t.Query(runes, 0, len(runes))
	return isWord
}

// Cursor is a memoized walk position inside the tree. Extending a probe
// by one rune through an existing cursor avoids re-walking the whole
// prefix from the root, which keeps a segmentation round effectively
// linear instead of quadratic. A Cursor that has stepped off the tree is
// dead and stays dead.
type Cursor struct {
	n *node
}

// Root returns a cursor positioned at the root of the tree.
func (t *Trie) Root() Cursor {
	return Cursor{n: t.root}
}

// Step advances the cursor along the edge for the normalized rune r.
// It returns false if no such edge exists; the cursor is then dead and
// every subsequent Step returns false.
func (c *Cursor) Step(r rune) bool {
	if c.n == nil {
		return false
	}
	child, ok := c.n.children[normalize(r)]
	if !ok {
		c.n = nil
		return false
	}
	c.n = child
	return true
}

// IsWord reports whether the path walked so far spells a complete word.
func (c *Cursor) IsWord() bool {
	return c.n != nil && c.n.terminal
}

// IsExtendable reports whether some longer dictionary word has the path
// walked so far as a strict prefix.
func (c *Cursor) IsExtendable() bool {
	return c.n != nil && len(c.n.children) > 0
}

// Dead reports whether the cursor has stepped off the tree.
func (c *Cursor) Dead() bool {
	return c.n == nil
}
