package book

import (
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/Ouroboros/core/glossary"
	"github.com/FocuswithJustin/Ouroboros/core/lexicon"
)

// defaultSpread is the standard deviation of the List of Figures samples.
const defaultSpread = 3.0

// Config controls one generation run.
type Config struct {
	// WordTarget is the minimum total word count. Generation stops as soon
	// as the registry reaches it; 0 yields Chapter 1 alone.
	WordTarget int

	// Seed fixes the run's RNG for reproducible output. 0 means seed from
	// the clock.
	Seed int64

	// Spread is the standard deviation of the List of Figures distribution.
	// 0 means the default of 3.0.
	Spread float64

	// OnSection, when set, is called after every section insertion.
	OnSection func(Event)
}

// Event describes one section insertion during assembly.
type Event struct {
	Section    *Section
	Placement  Placement
	TotalWords int
	Sections   int
}

// Generator owns all state of one run: the word arena, the global glossary
// built against it, the ID allocator, the registry, and the RNG every random
// decision draws from.
type Generator struct {
	cfg      Config
	arena    *lexicon.Arena
	glossary *glossary.Glossary
	alloc    *IDAllocator
	registry *Registry
	rng      *rand.Rand
}

// New prepares a generator: it builds the global glossary against a fresh
// arena, which is also where a malformed lexicon surfaces.
func New(cfg Config) (*Generator, error) {
	if cfg.Spread == 0 {
		cfg.Spread = defaultSpread
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	arena := lexicon.NewArena()
	gl, err := glossary.Build(arena)
	if err != nil {
		return nil, err
	}

	return &Generator{
		cfg:      cfg,
		arena:    arena,
		glossary: gl,
		alloc:    NewIDAllocator(rng),
		registry: NewRegistry(),
		rng:      rng,
	}, nil
}

// Arena exposes the run's word arena for verification.
func (g *Generator) Arena() *lexicon.Arena {
	return g.arena
}

// Glossary exposes the run's global glossary for verification.
func (g *Generator) Glossary() *glossary.Glossary {
	return g.glossary
}

// generatable is the set of kinds the loop chooses among. Chapter 1 is not
// in it; it seeds the registry exactly once.
var generatable = []Kind{
	KindDedication,
	KindFourword,
	KindTableOfContents,
	KindGlossary,
	KindListOfFigures,
	KindIndex,
	KindAfterword,
}

func (g *Generator) render(kind Kind) (*Section, error) {
	switch kind {
	case KindChapterOne:
		return g.renderChapterOne()
	case KindDedication:
		return g.renderDedication()
	case KindFourword:
		return g.renderFourword()
	case KindTableOfContents:
		return g.renderTableOfContents()
	case KindGlossary:
		return g.renderGlossary()
	case KindListOfFigures:
		return g.renderListOfFigures()
	case KindIndex:
		return g.renderIndex()
	case KindAfterword:
		return g.renderAfterword()
	}
	panic("book: unknown section kind")
}

func (g *Generator) insert(s *Section) {
	g.registry.Insert(s)
	if g.cfg.OnSection != nil {
		g.cfg.OnSection(Event{
			Section:    s,
			Placement:  s.Kind.Placement(),
			TotalWords: g.registry.TotalWords(),
			Sections:   g.registry.Len(),
		})
	}
}

// Generate runs the assembly loop: Chapter 1 first, then uniformly chosen
// kinds until the word target is met. Termination is guaranteed because
// every iteration inserts a section with a positive word count (even an
// empty-bodied section carries heading words).
func (g *Generator) Generate() (*Book, error) {
	chapter, err := g.renderChapterOne()
	if err != nil {
		return nil, err
	}
	g.insert(chapter)

	for g.registry.TotalWords() < g.cfg.WordTarget {
		kind := generatable[g.rng.Intn(len(generatable))]
		s, err := g.render(kind)
		if err != nil {
			return nil, err
		}
		g.insert(s)
	}

	return &Book{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Sections:  g.registry.Sections(),
		WordCount: g.registry.TotalWords(),
	}, nil
}

// Book is the finished product of one run.
type Book struct {
	ID        string
	CreatedAt time.Time
	Sections  []*Section
	WordCount int
}

// Text returns the canonical rendition: section contents in final registry
// order, separated by blank lines, with a trailing newline.
func (b *Book) Text() string {
	var sb strings.Builder
	for i, s := range b.Sections {
		if i != 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(s.Content.Raw)
	}
	sb.WriteByte('\n')
	return sb.String()
}
