package lexicon

import (
	"math/rand"
	"testing"
)

func TestArenaIntern_Idempotent(t *testing.T) {
	a := NewArena()

	cat1 := a.Intern("cat")
	dog := a.Intern("dog")
	cat2 := a.Intern("cat")

	if cat1 != cat2 {
		t.Errorf("Intern(\"cat\") twice = %v, %v, want identical handles", cat1, cat2)
	}
	if cat1 == dog {
		t.Errorf("Intern(\"cat\") and Intern(\"dog\") share handle %v", cat1)
	}
	if got := a.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	if got := a.Name(cat1); got != "cat" {
		t.Errorf("Name(cat) = %q, want %q", got, "cat")
	}
}

func TestArenaIntern_HandleOrder(t *testing.T) {
	a := NewArena()
	first := a.Intern("zebra")
	second := a.Intern("aardvark")

	// Handles order by first intern, not alphabetically.
	if first >= second {
		t.Errorf("handles out of intern order: zebra=%v aardvark=%v", first, second)
	}
}

func TestArenaIntern_RejectsNonCanonical(t *testing.T) {
	tests := []struct {
		name string
		word string
	}{
		{"uppercase", "Cat"},
		{"empty", ""},
		{"punctuation", "cat!"},
		{"leading apostrophe", "'cat"},
		{"trailing apostrophe", "cat'"},
		{"double apostrophe", "it''s"},
		{"digits", "cat2"},
		{"space", "two words"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("Intern(%q) did not panic", tt.word)
				}
			}()
			NewArena().Intern(tt.word)
		})
	}
}

func TestArenaLookup(t *testing.T) {
	a := NewArena()
	w := a.Intern("cat")

	if got, ok := a.Lookup("cat"); !ok || got != w {
		t.Errorf("Lookup(\"cat\") = %v, %v, want %v, true", got, ok, w)
	}
	if _, ok := a.Lookup("dog"); ok {
		t.Error("Lookup(\"dog\") = true, want false for un-interned word")
	}
}

func TestAnnotate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "mixed punctuation and case",
			raw:  "It's a test-case, isn't it? NaNoGenMo 2019!",
			want: []string{"it's", "a", "test", "case", "isn't", "it", "nanogenmo"},
		},
		{
			name: "empty",
			raw:  "",
			want: nil,
		},
		{
			name: "digits only",
			raw:  "2019 404",
			want: nil,
		},
		{
			name: "hyphens split",
			raw:  "state-of-the-art",
			want: []string{"state", "of", "the", "art"},
		},
		{
			name: "duplicates preserved",
			raw:  "dog dog dog",
			want: []string{"dog", "dog", "dog"},
		},
		{
			name: "section reference",
			raw:  "see section #4242.",
			want: []string{"see", "section"},
		},
		{
			name: "markdown heading",
			raw:  "## Chapter 1 (#123)",
			want: []string{"chapter"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewArena()
			text := Annotate(a, tt.raw)

			if text.Raw != tt.raw {
				t.Errorf("Raw = %q, want %q", text.Raw, tt.raw)
			}
			if got := text.WordCount(); got != len(tt.want) {
				t.Fatalf("WordCount() = %d, want %d", got, len(tt.want))
			}
			for i, w := range text.Words {
				if got := a.Name(w); got != tt.want[i] {
					t.Errorf("word[%d] = %q, want %q", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestAnnotate_SharesHandles(t *testing.T) {
	a := NewArena()
	first := Annotate(a, "the cat")
	second := Annotate(a, "the dog")

	if first.Words[0] != second.Words[0] {
		t.Errorf("shared word %q interned twice: %v vs %v", "the", first.Words[0], second.Words[0])
	}
	if got := a.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3 distinct words", got)
	}
}

func TestPickRandom(t *testing.T) {
	a := NewArena()
	members := map[string]bool{"cat": true, "dog": true, "fish": true}
	for w := range members {
		a.Intern(w)
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		if got := a.PickRandom(rng); !members[got] {
			t.Fatalf("PickRandom() = %q, not an interned word", got)
		}
	}
}
