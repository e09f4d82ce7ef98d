package book

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"

	"github.com/FocuswithJustin/Ouroboros/core/errors"
	"github.com/FocuswithJustin/Ouroboros/core/glossary"
	"github.com/FocuswithJustin/Ouroboros/core/lexicon"
)

// afterwordMetaOdds is the denominator of the afterword's meta-narrator
// branch. At one in ten million, most books get a single random word.
const afterwordMetaOdds = 10_000_000

// heading writes the standard section heading line.
func heading(b *strings.Builder, kind Kind, id ID) {
	fmt.Fprintf(b, "## %s (#%d)", kind.Label(), id)
}

// titleCase uppercases the first letter of an interned word. Interned words
// are lowercase ASCII, so a byte-level fix-up is enough.
func titleCase(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

// section annotates body against the arena and wraps it as a Section.
func (g *Generator) section(kind Kind, id ID, body string) *Section {
	return &Section{ID: id, Kind: kind, Content: lexicon.Annotate(g.arena, body)}
}

func (g *Generator) renderChapterOne() (*Section, error) {
	id, err := g.alloc.Next()
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	heading(&b, KindChapterOne, id)
	b.WriteString("\n\n\\<Insert academia joke here>")
	return g.section(KindChapterOne, id, b.String()), nil
}

func (g *Generator) renderDedication() (*Section, error) {
	id, err := g.alloc.Next()
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	heading(&b, KindDedication, id)
	fmt.Fprintf(&b, "\n\nAll material following this dedication is dedicated to the "+
		"NaNoGenMo 2019 community, with the exception of sections with an ID higher "+
		"than this one (#%d).", id)
	return g.section(KindDedication, id, b.String()), nil
}

func (g *Generator) renderFourword() (*Section, error) {
	id, err := g.alloc.Next()
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	heading(&b, KindFourword, id)
	b.WriteString("\n\n")
	b.WriteString(titleCase(g.arena.PickRandom(g.rng)))
	for i := 0; i < 3; i++ {
		b.WriteByte(' ')
		b.WriteString(g.arena.PickRandom(g.rng))
	}
	b.WriteByte('.')
	return g.section(KindFourword, id, b.String()), nil
}

func (g *Generator) renderTableOfContents() (*Section, error) {
	id, err := g.alloc.Next()
	if err != nil {
		return nil, err
	}
	body := tableOfContentsBody(id, g.registry.Sections())
	return g.section(KindTableOfContents, id, body), nil
}

// tableOfContentsBody lists the snapshot's sections in registry order.
// Sections inserted after the snapshot are deliberately absent.
func tableOfContentsBody(id ID, sections []*Section) string {
	var b strings.Builder
	heading(&b, KindTableOfContents, id)
	b.WriteByte('\n')
	for _, s := range sections {
		fmt.Fprintf(&b, "\n- **%s** (#%d)", s.Kind.Label(), s.ID)
	}
	return b.String()
}

func (g *Generator) renderGlossary() (*Section, error) {
	id, err := g.alloc.Next()
	if err != nil {
		return nil, err
	}
	body, err := glossaryBody(id, g.arena, g.glossary, g.registry.Sections(), g.rng)
	if err != nil {
		return nil, err
	}
	return g.section(KindGlossary, id, body), nil
}

// glossaryBody emits one bullet per distinct defined word used anywhere in
// the snapshot, in first-intern order. A word with no glossary key at all is
// the fatal integrity failure of the whole system: the static lexicon failed
// to anticipate a word the book actually contains.
func glossaryBody(id ID, arena *lexicon.Arena, gl *glossary.Glossary, sections []*Section, rng *rand.Rand) (string, error) {
	words := distinctWords(sections)

	var b strings.Builder
	heading(&b, KindGlossary, id)
	b.WriteByte('\n')
	for _, w := range words {
		entry, ok := gl.Lookup(w)
		if !ok {
			return "", errors.NewUndefinedWord(arena.Name(w), "glossary section")
		}
		if entry.Def == nil {
			continue
		}
		fmt.Fprintf(&b, "\n- **%s** - ", arena.Name(w))
		if entry.IsRandomRef() {
			fmt.Fprintf(&b, "See '%s.'", arena.PickRandom(rng))
		} else {
			b.WriteString(entry.Def.Raw)
		}
	}
	return b.String(), nil
}

// distinctWords collects the deduplicated words of all sections, sorted by
// handle, i.e. in order of first appearance in the run.
func distinctWords(sections []*Section) []lexicon.Word {
	seen := make(map[lexicon.Word]struct{})
	var words []lexicon.Word
	for _, s := range sections {
		for _, w := range s.Content.Words {
			if _, dup := seen[w]; !dup {
				seen[w] = struct{}{}
				words = append(words, w)
			}
		}
	}
	slices.Sort(words)
	return words
}

func (g *Generator) renderListOfFigures() (*Section, error) {
	id, err := g.alloc.Next()
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	heading(&b, KindListOfFigures, id)
	b.WriteByte('\n')

	quantity := 5 + g.rng.Intn(25)
	flagged := false
	for i := 0; i < quantity; i++ {
		fmt.Fprintf(&b, "\n- %.3f", g.rng.NormFloat64()*g.cfg.Spread)
		if g.rng.Intn(10) == 0 {
			b.WriteString(" (*)")
			flagged = true
		}
	}
	if flagged {
		fmt.Fprintf(&b, "\n\n(*) The accuracy of these numbers is not known. It is "+
			"recommended not to trust them when reading section #%d.",
			g.registry.RandomID(g.rng))
	}
	return g.section(KindListOfFigures, id, b.String()), nil
}

func (g *Generator) renderIndex() (*Section, error) {
	id, err := g.alloc.Next()
	if err != nil {
		return nil, err
	}
	body := indexBody(id, g.arena, g.registry.Sections())
	return g.section(KindIndex, id, body), nil
}

// indexBody maps every distinct word of the snapshot to the ascending list
// of section IDs containing it, one bullet per word in first-intern order.
func indexBody(id ID, arena *lexicon.Arena, sections []*Section) string {
	uses := make(map[lexicon.Word]map[ID]struct{})
	for _, s := range sections {
		for _, w := range s.Content.Words {
			if uses[w] == nil {
				uses[w] = make(map[ID]struct{})
			}
			uses[w][s.ID] = struct{}{}
		}
	}

	words := make([]lexicon.Word, 0, len(uses))
	for w := range uses {
		words = append(words, w)
	}
	slices.Sort(words)

	var b strings.Builder
	heading(&b, KindIndex, id)
	b.WriteByte('\n')
	for _, w := range words {
		ids := make([]ID, 0, len(uses[w]))
		for sid := range uses[w] {
			ids = append(ids, sid)
		}
		slices.Sort(ids)

		fmt.Fprintf(&b, "\n- **%s** - ", arena.Name(w))
		for i, sid := range ids {
			if i != 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "#%d", sid)
		}
	}
	return b.String()
}

func (g *Generator) renderAfterword() (*Section, error) {
	id, err := g.alloc.Next()
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	heading(&b, KindAfterword, id)
	b.WriteString("\n\n")
	if g.rng.Intn(afterwordMetaOdds) == 0 {
		g.writeMetaAfterword(&b)
	} else {
		b.WriteString(titleCase(g.arena.PickRandom(g.rng)))
	}
	return g.section(KindAfterword, id, b.String()), nil
}

// writeMetaAfterword emits the rare narrator aside. Its wording is pinned to
// the global lexicon: every word here must be a glossary key, or the next
// glossary section would refuse the book.
func (g *Generator) writeMetaAfterword(b *strings.Builder) {
	b.WriteString(
		"Hello, dear reader! I'm the author of the text you're reading. " +
			"Not the programming - the narrator. The character playing the author.\n\n" +
			"I have a suggestion for you. Go into this book's source code and find " +
			"the part that generates this message. What's the probability it would " +
			"appear? Go on, look. I can wait.\n\n" +
			"It's pretty low, isn't it? Do you think the one submitted to the " +
			"NaNoGenMo issue just happened to have it? Or do you think the author " +
			"chose one that did on purpose?\n\n" +
			"This entire book *could*, in theory, have been generated by precisely " +
			"the code I shared. But *was* it?\n\n" +
			"Are the section IDs *really* random? What about the fourwords? Or is " +
			"there something else going on?\n\n" +
			"Have fun.\n\n")
	quantity := 3 + g.rng.Intn(13)
	for i := 0; i < quantity; i++ {
		switch {
		case i == 0:
			b.WriteString("P.S. your lucky section numbers are ")
		case i == quantity-1:
			b.WriteString(", and ")
		default:
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "#%d", g.registry.RandomID(g.rng))
	}
	b.WriteByte('.')
}
