package glossary

import (
	"strings"
	"testing"

	"github.com/FocuswithJustin/Ouroboros/core/errors"
	"github.com/FocuswithJustin/Ouroboros/core/lexicon"
)

func TestBuildGlobalLexicon(t *testing.T) {
	arena := lexicon.NewArena()

	g, err := Build(arena)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	// The shipped lexicon carries around two hundred entries.
	if g.Len() < 200 {
		t.Errorf("Len() = %d, want >= 200", g.Len())
	}

	// Every interned definition word is a key: the closure Build enforces.
	for _, e := range g.entries {
		if e.Def == nil {
			continue
		}
		for _, w := range e.Def.Words {
			if !g.Contains(w) {
				t.Errorf("definition word %q is not a glossary key", arena.Name(w))
			}
		}
	}
}

func TestBuildSentinelEntry(t *testing.T) {
	arena := lexicon.NewArena()
	g, err := Build(arena)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	w, ok := arena.Lookup("random")
	if !ok {
		t.Fatal("lexicon does not intern 'random'")
	}
	e, ok := g.Lookup(w)
	if !ok {
		t.Fatal("'random' is not a glossary key")
	}
	if !e.IsRandomRef() {
		t.Errorf("IsRandomRef() = false for 'random'; def = %q", e.Def.Raw)
	}
}

func TestBuildSourceClosureViolation(t *testing.T) {
	arena := lexicon.NewArena()
	src := `term "cat" = "A small ghost."`

	_, err := BuildSource(arena, src)
	if err == nil {
		t.Fatal("BuildSource() accepted a lexicon with unlisted definition words")
	}
	if !errors.Is(err, errors.ErrUndefinedWord) {
		t.Errorf("error = %v, want ErrUndefinedWord", err)
	}
	// The diagnostic names an offending word.
	msg := err.Error()
	if !strings.Contains(msg, "'a'") && !strings.Contains(msg, "'small'") && !strings.Contains(msg, "'ghost'") {
		t.Errorf("error %q does not name the offending word", msg)
	}
}

func TestBuildSourceClosed(t *testing.T) {
	arena := lexicon.NewArena()
	src := `
# a closed two-entry lexicon
term "cat" = "A dog."
plain "a" "dog"
`
	g, err := BuildSource(arena, src)
	if err != nil {
		t.Fatalf("BuildSource() error: %v", err)
	}
	if g.Len() != 3 {
		t.Errorf("Len() = %d, want 3", g.Len())
	}

	cat, _ := arena.Lookup("cat")
	e, ok := g.Lookup(cat)
	if !ok || e.Def == nil {
		t.Fatal("defined entry missing")
	}
	if e.Def.Raw != "A dog." {
		t.Errorf("Def.Raw = %q, want %q", e.Def.Raw, "A dog.")
	}

	dog, _ := arena.Lookup("dog")
	e, ok = g.Lookup(dog)
	if !ok {
		t.Fatal("plain entry missing")
	}
	if e.Def != nil {
		t.Errorf("plain entry has definition %q", e.Def.Raw)
	}
}

func TestBuildSourceDuplicateEntry(t *testing.T) {
	arena := lexicon.NewArena()
	src := `
plain "cat"
term "cat" = "Listed twice."
`
	_, err := BuildSource(arena, src)
	if err == nil {
		t.Fatal("BuildSource() accepted a duplicate entry")
	}
	if !errors.Is(err, errors.ErrAlreadyExists) {
		t.Errorf("error = %v, want ErrAlreadyExists", err)
	}
}

func TestBuildSourceParseError(t *testing.T) {
	arena := lexicon.NewArena()

	_, err := BuildSource(arena, `nonsense "cat"`)
	if err == nil {
		t.Fatal("BuildSource() accepted malformed source")
	}
}
