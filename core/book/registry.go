// Package book generates self-referential books: an ordered registry of
// sections that cite each other's IDs, grown one section at a time until a
// word target is met. Renderers read the registry as a snapshot and never
// mutate it; only the assembly loop inserts, so a table of contents or index
// reflects exactly the sections that existed when it was rendered.
package book

import (
	"fmt"
	"math/rand"

	"github.com/FocuswithJustin/Ouroboros/core/lexicon"
)

// Kind identifies a section type.
type Kind int

const (
	KindChapterOne Kind = iota
	KindDedication
	KindFourword
	KindTableOfContents
	KindGlossary
	KindListOfFigures
	KindIndex
	KindAfterword
)

// kindInfo carries the display label, the machine slug used in manifests
// and exports, and where the assembly loop inserts the section.
var kindInfo = map[Kind]struct {
	label     string
	slug      string
	placement Placement
}{
	KindChapterOne:      {"Chapter 1", "chapter-1", PlaceBack},
	KindDedication:      {"Dedication", "dedication", PlaceFront},
	KindFourword:        {"Fourword", "fourword", PlaceFront},
	KindTableOfContents: {"Table of Contents", "table-of-contents", PlaceFront},
	KindGlossary:        {"Glossary", "glossary", PlaceBack},
	KindListOfFigures:   {"List of Figures", "list-of-figures", PlaceBack},
	KindIndex:           {"Index", "index", PlaceBack},
	KindAfterword:       {"Afterword", "afterword", PlaceBack},
}

// Label returns the heading label, e.g. "Table of Contents".
func (k Kind) Label() string {
	return kindInfo[k].label
}

// String returns the machine slug, e.g. "table-of-contents".
func (k Kind) String() string {
	return kindInfo[k].slug
}

// Placement returns where the assembly loop inserts sections of this kind.
func (k Kind) Placement() Placement {
	return kindInfo[k].placement
}

// ParseKind inverts the machine slug back to its Kind.
func ParseKind(slug string) (Kind, error) {
	for k, info := range kindInfo {
		if info.slug == slug {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown section kind %q", slug)
}

// Placement says which end of the registry a section is inserted at.
type Placement int

const (
	PlaceFront Placement = iota
	PlaceBack
)

func (p Placement) String() string {
	if p == PlaceFront {
		return "front"
	}
	return "back"
}

// Section is one generated unit of the book. Sections are immutable once
// registered.
type Section struct {
	ID      ID
	Kind    Kind
	Content lexicon.Text
}

// WordCount reports the number of word tokens in the section.
func (s *Section) WordCount() int {
	return s.Content.WordCount()
}

// Registry is the ordered double-ended sequence of generated sections.
// It only ever grows; existing entries are never removed or reordered.
type Registry struct {
	sections []*Section
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// PushFront prepends a section.
func (r *Registry) PushFront(s *Section) {
	r.sections = append([]*Section{s}, r.sections...)
}

// PushBack appends a section.
func (r *Registry) PushBack(s *Section) {
	r.sections = append(r.sections, s)
}

// Insert places s at the end given by its kind.
func (r *Registry) Insert(s *Section) {
	if s.Kind.Placement() == PlaceFront {
		r.PushFront(s)
	} else {
		r.PushBack(s)
	}
}

// Sections returns the sections front to back. The returned slice is a
// copy; the sections themselves are shared and must not be mutated.
func (r *Registry) Sections() []*Section {
	out := make([]*Section, len(r.sections))
	copy(out, r.sections)
	return out
}

// Len reports the number of registered sections.
func (r *Registry) Len() int {
	return len(r.sections)
}

// TotalWords sums the word counts of all registered sections.
func (r *Registry) TotalWords() int {
	total := 0
	for _, s := range r.sections {
		total += s.WordCount()
	}
	return total
}

// ContainsID reports whether some registered section has the given ID.
func (r *Registry) ContainsID(id ID) bool {
	for _, s := range r.sections {
		if s.ID == id {
			return true
		}
	}
	return false
}

// RandomID returns the ID of a uniformly chosen registered section. The
// registry must be nonempty; the assembly loop seeds it with Chapter 1
// before any renderer asks for a reference.
func (r *Registry) RandomID(rng *rand.Rand) ID {
	return r.sections[rng.Intn(len(r.sections))].ID
}
