// Package glossary builds the global glossary: the closed set of words the
// book is allowed to contain. The word list ships as an embedded lexicon
// source; building it against an arena interns every term and definition and
// enforces the closure invariant, so a successfully built glossary can
// define any word the renderers will ever produce.
package glossary

import (
	_ "embed"
	"fmt"

	"github.com/FocuswithJustin/Ouroboros/core/errors"
	"github.com/FocuswithJustin/Ouroboros/core/lexicon"
)

// RandomRef is the sentinel definition content meaning "render as a
// reference to a freshly chosen random word". Renderers detect it by
// comparing definition content, not by a flag on the entry, so the data
// shape stays one string per term.
const RandomRef = "::::"

//go:embed global.lex
var globalSource string

// Entry is one glossary row: a term and its definition, when it has one.
// Terms with a nil definition are deliberately listed without one; they are
// legal book words the glossary section silently skips.
type Entry struct {
	Term lexicon.Word
	Def  *lexicon.Text
}

// IsRandomRef reports whether the entry's definition is the RandomRef
// sentinel.
func (e *Entry) IsRandomRef() bool {
	return e.Def != nil && e.Def.Raw == RandomRef
}

// Glossary is the global word list, keyed by interned handle. It is built
// once per run and never mutated afterwards.
type Glossary struct {
	entries map[lexicon.Word]*Entry
}

// Build parses the embedded global lexicon against arena. It fails only if
// the embedded source is malformed or violates closure, which is a bug in
// the data file, surfaced as an error so the caller can abort with the
// diagnostic.
func Build(arena *lexicon.Arena) (*Glossary, error) {
	return BuildSource(arena, globalSource)
}

// BuildSource builds a glossary from the given lexicon source. Terms and
// their definitions intern in statement order, which fixes the handle order
// later introspective sections sort by. After interning, the closure
// invariant is enforced: every word used inside any definition must itself
// be listed, term or plain. A violation returns an UndefinedWordError naming
// the word.
func BuildSource(arena *lexicon.Arena, src string) (*Glossary, error) {
	file, err := parseLexicon(src)
	if err != nil {
		return nil, errors.NewParse("lexicon source", "", err.Error())
	}

	g := &Glossary{entries: make(map[lexicon.Word]*Entry)}
	for _, stmt := range file.Statements {
		switch {
		case stmt.Term != nil:
			term := arena.Intern(stmt.Term.Name)
			if _, dup := g.entries[term]; dup {
				return nil, errors.Wrapf(errors.ErrAlreadyExists, "lexicon entry '%s'", stmt.Term.Name)
			}
			def := lexicon.Annotate(arena, stmt.Term.Def)
			g.entries[term] = &Entry{Term: term, Def: &def}
		case stmt.Plain != nil:
			for _, name := range stmt.Plain.Words {
				term := arena.Intern(name)
				if _, dup := g.entries[term]; dup {
					return nil, errors.Wrapf(errors.ErrAlreadyExists, "lexicon entry '%s'", name)
				}
				g.entries[term] = &Entry{Term: term}
			}
		}
	}

	for _, e := range g.entries {
		if e.Def == nil {
			continue
		}
		for _, w := range e.Def.Words {
			if _, ok := g.entries[w]; !ok {
				return nil, errors.NewUndefinedWord(arena.Name(w),
					fmt.Sprintf("definition of '%s'", arena.Name(e.Term)))
			}
		}
	}
	return g, nil
}

// Lookup returns the entry for w, if w is a glossary key.
func (g *Glossary) Lookup(w lexicon.Word) (*Entry, bool) {
	e, ok := g.entries[w]
	return e, ok
}

// Contains reports whether w is a glossary key.
func (g *Glossary) Contains(w lexicon.Word) bool {
	_, ok := g.entries[w]
	return ok
}

// Len reports the number of glossary keys, defined and plain.
func (g *Glossary) Len() int {
	return len(g.entries)
}
