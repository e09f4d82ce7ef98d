// Package lexicon provides word interning and annotated text for the book
// generator. Every word that appears anywhere in a book is interned exactly
// once in an Arena, and annotated text records the handle of each word in
// order of occurrence. Global bookkeeping (glossary coverage, the index,
// word counts) works on handles, never on raw strings.
package lexicon

import (
	"fmt"
	"math/rand"
	"regexp"
)

// Word is a stable handle for an interned word. Handles are dense indexes
// assigned in first-intern order, so sorting a slice of Words orders them
// by first appearance in the run.
type Word uint32

// wordShape is the canonical form accepted by Intern: lowercase ASCII
// letters, optionally continued by apostrophe-joined letter groups
// ("it's", "you'll").
var wordShape = regexp.MustCompile(`^[a-z]+(?:'[a-z]+)*$`)

// Arena is an append-only intern table. The zero value is not usable; use
// NewArena.
type Arena struct {
	names []string
	index map[string]Word
}

// NewArena returns an empty Arena.
func NewArena() *Arena {
	return &Arena{index: make(map[string]Word)}
}

// Intern returns the handle for word, allocating one on first sight.
// Interning is idempotent: the same spelling always yields the same handle.
// The word must already be in canonical lowercase form; anything else is a
// caller bug, and Intern panics rather than corrupt the table.
func (a *Arena) Intern(word string) Word {
	if !wordShape.MatchString(word) {
		panic(fmt.Sprintf("lexicon: cannot intern %q: not a canonical lowercase word", word))
	}
	if w, ok := a.index[word]; ok {
		return w
	}
	w := Word(len(a.names))
	a.names = append(a.names, word)
	a.index[word] = w
	return w
}

// Name resolves a handle back to its spelling.
func (a *Arena) Name(w Word) string {
	return a.names[w]
}

// Lookup returns the handle for word if it has been interned.
func (a *Arena) Lookup(word string) (Word, bool) {
	w, ok := a.index[word]
	return w, ok
}

// Len reports the number of distinct interned words.
func (a *Arena) Len() int {
	return len(a.names)
}

// PickRandom returns a uniformly chosen interned word. The arena must be
// nonempty; generation interns the entire glossary before the first pick.
func (a *Arena) PickRandom(rng *rand.Rand) string {
	return a.names[rng.Intn(len(a.names))]
}
