package book

import (
	"math/rand"
	"testing"

	"github.com/FocuswithJustin/Ouroboros/core/lexicon"
)

func makeSection(arena *lexicon.Arena, id ID, kind Kind, body string) *Section {
	return &Section{ID: id, Kind: kind, Content: lexicon.Annotate(arena, body)}
}

func TestRegistryOrder(t *testing.T) {
	arena := lexicon.NewArena()
	r := NewRegistry()

	r.PushBack(makeSection(arena, 1, KindChapterOne, "one"))
	r.PushBack(makeSection(arena, 2, KindGlossary, "two"))
	r.PushFront(makeSection(arena, 3, KindDedication, "three"))

	var got []ID
	for _, s := range r.Sections() {
		got = append(got, s.ID)
	}
	want := []ID{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("Sections() returned %d sections, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sections()[%d].ID = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestRegistryInsertByPlacement(t *testing.T) {
	arena := lexicon.NewArena()
	r := NewRegistry()

	r.PushBack(makeSection(arena, 10, KindChapterOne, "middle"))
	r.Insert(makeSection(arena, 11, KindFourword, "front"))
	r.Insert(makeSection(arena, 12, KindAfterword, "back"))

	ss := r.Sections()
	if ss[0].ID != 11 {
		t.Errorf("front section ID = %d, want 11", ss[0].ID)
	}
	if ss[2].ID != 12 {
		t.Errorf("back section ID = %d, want 12", ss[2].ID)
	}
}

func TestRegistryTotalWords(t *testing.T) {
	arena := lexicon.NewArena()
	r := NewRegistry()

	if got := r.TotalWords(); got != 0 {
		t.Errorf("TotalWords() on empty registry = %d, want 0", got)
	}

	r.PushBack(makeSection(arena, 1, KindChapterOne, "one two three"))
	r.PushBack(makeSection(arena, 2, KindAfterword, "four five"))

	if got := r.TotalWords(); got != 5 {
		t.Errorf("TotalWords() = %d, want 5", got)
	}
}

func TestRegistryContainsID(t *testing.T) {
	arena := lexicon.NewArena()
	r := NewRegistry()
	r.PushBack(makeSection(arena, 42, KindChapterOne, "body"))

	if !r.ContainsID(42) {
		t.Error("ContainsID(42) = false")
	}
	if r.ContainsID(43) {
		t.Error("ContainsID(43) = true")
	}
}

func TestRegistryRandomID(t *testing.T) {
	arena := lexicon.NewArena()
	r := NewRegistry()
	r.PushBack(makeSection(arena, 7, KindChapterOne, "only"))

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 10; i++ {
		if got := r.RandomID(rng); got != 7 {
			t.Fatalf("RandomID() = %d, want 7", got)
		}
	}
}
