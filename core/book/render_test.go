package book

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/FocuswithJustin/Ouroboros/core/glossary"
	"github.com/FocuswithJustin/Ouroboros/core/lexicon"
)

func TestIndexBody(t *testing.T) {
	arena := lexicon.NewArena()
	s1 := makeSection(arena, 100, KindChapterOne, "cat dog")
	s2 := makeSection(arena, 50, KindAfterword, "dog")

	body := indexBody(999, arena, []*Section{s1, s2})

	if !strings.Contains(body, "- **cat** - #100") {
		t.Errorf("index missing cat entry:\n%s", body)
	}
	// IDs ascending: 50 before 100.
	if !strings.Contains(body, "- **dog** - #50, #100") {
		t.Errorf("index missing ascending dog entry:\n%s", body)
	}
}

func TestTableOfContentsSnapshot(t *testing.T) {
	g, err := New(Config{Seed: 11})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	chapter, err := g.renderChapterOne()
	if err != nil {
		t.Fatalf("renderChapterOne() error: %v", err)
	}
	g.insert(chapter)

	toc, err := g.renderTableOfContents()
	if err != nil {
		t.Fatalf("renderTableOfContents() error: %v", err)
	}
	g.insert(toc)
	before := toc.Content.Raw

	// Add two more sections after the snapshot.
	for i := 0; i < 2; i++ {
		s, err := g.renderDedication()
		if err != nil {
			t.Fatalf("renderDedication() error: %v", err)
		}
		g.insert(s)
		if toc.Content.Raw != before {
			t.Fatal("table of contents changed after later insertion")
		}
		if strings.Contains(before, "Dedication") {
			t.Fatal("table of contents lists a section rendered after it")
		}
	}

	if !strings.Contains(before, "Chapter 1") {
		t.Errorf("table of contents missing Chapter 1 entry:\n%s", before)
	}
}

func TestGlossaryBody(t *testing.T) {
	arena := lexicon.NewArena()
	src := `
term "cat" = "Something."
plain "dog" "something"
`
	gl, err := glossary.BuildSource(arena, src)
	if err != nil {
		t.Fatalf("BuildSource() error: %v", err)
	}

	s := makeSection(arena, 1, KindChapterOne, "cat dog")

	body, err := glossaryBody(2, arena, gl, []*Section{s}, rand.New(rand.NewSource(4)))
	if err != nil {
		t.Fatalf("glossaryBody() error: %v", err)
	}

	if !strings.Contains(body, "- **cat** - Something.") {
		t.Errorf("glossary missing defined entry:\n%s", body)
	}
	if strings.Contains(body, "**dog**") {
		t.Errorf("glossary lists undefined word:\n%s", body)
	}
}

func TestGlossaryBodyUndefinedWord(t *testing.T) {
	arena := lexicon.NewArena()
	gl, err := glossary.BuildSource(arena, `plain "known"`)
	if err != nil {
		t.Fatalf("BuildSource() error: %v", err)
	}

	s := &Section{ID: 1, Kind: KindChapterOne, Content: lexicon.Annotate(arena, "unanticipated")}

	_, err = glossaryBody(2, arena, gl, []*Section{s}, rand.New(rand.NewSource(5)))
	if err == nil {
		t.Fatal("glossaryBody() succeeded with a word absent from the glossary")
	}
	if !strings.Contains(err.Error(), "unanticipated") {
		t.Errorf("error %q does not name the offending word", err)
	}
}

func TestGlossarySentinelVaries(t *testing.T) {
	arena := lexicon.NewArena()
	src := `
term "random" = "::::"
plain "alpha" "beta" "gamma" "delta" "epsilon" "zeta" "eta" "theta"
`
	gl, err := glossary.BuildSource(arena, src)
	if err != nil {
		t.Fatalf("BuildSource() error: %v", err)
	}

	s := &Section{ID: 1, Kind: KindChapterOne, Content: lexicon.Annotate(arena, "random")}
	sections := []*Section{s}

	rng := rand.New(rand.NewSource(6))
	renders := make(map[string]bool)
	for i := 0; i < 16; i++ {
		body, err := glossaryBody(2, arena, gl, sections, rng)
		if err != nil {
			t.Fatalf("glossaryBody() error: %v", err)
		}
		if !strings.Contains(body, "See '") {
			t.Fatalf("sentinel not rendered as a reference:\n%s", body)
		}
		renders[body] = true
	}
	if len(renders) < 2 {
		t.Error("sentinel rendered identically across 16 draws")
	}
}

func TestRenderFourword(t *testing.T) {
	g, err := New(Config{Seed: 12})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	s, err := g.renderFourword()
	if err != nil {
		t.Fatalf("renderFourword() error: %v", err)
	}

	body := s.Content.Raw
	if !strings.HasPrefix(body, "## Fourword (#") {
		t.Errorf("fourword heading malformed:\n%s", body)
	}
	if !strings.HasSuffix(body, ".") {
		t.Errorf("fourword missing terminal period:\n%s", body)
	}
	// Heading contributes one word; the body proper carries four.
	if got := s.WordCount(); got != 5 {
		t.Errorf("fourword word count = %d, want 5", got)
	}
}

func TestRenderDedicationReferencesOwnID(t *testing.T) {
	g, err := New(Config{Seed: 13})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	s, err := g.renderDedication()
	if err != nil {
		t.Fatalf("renderDedication() error: %v", err)
	}

	// The heading and the in-text reference both carry the section's ID.
	ref := fmt.Sprintf("(#%d)", s.ID)
	if strings.Count(s.Content.Raw, ref) != 2 {
		t.Errorf("dedication does not reference its own ID twice:\n%s", s.Content.Raw)
	}
}

func TestRenderListOfFiguresDisclaimerCitesExistingID(t *testing.T) {
	g, err := New(Config{Seed: 14})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	chapter, err := g.renderChapterOne()
	if err != nil {
		t.Fatalf("renderChapterOne() error: %v", err)
	}
	g.insert(chapter)

	// Render until a flagged entry produces the disclaimer.
	for i := 0; i < 100; i++ {
		s, err := g.renderListOfFigures()
		if err != nil {
			t.Fatalf("renderListOfFigures() error: %v", err)
		}
		if !strings.Contains(s.Content.Raw, "(*) The accuracy") {
			continue
		}
		want := fmt.Sprintf("section #%d", chapter.ID)
		if !strings.Contains(s.Content.Raw, want) {
			t.Errorf("disclaimer does not cite a registered section:\n%s", s.Content.Raw)
		}
		return
	}
	t.Fatal("no flagged list of figures in 100 renders")
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"word", "Word"},
		{"you're", "You're"},
		{"a", "A"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := titleCase(tt.in); got != tt.want {
			t.Errorf("titleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
