package book

import (
	"fmt"
	"strings"
	"time"

	"github.com/FocuswithJustin/Ouroboros/core/digest"
	"github.com/FocuswithJustin/Ouroboros/core/errors"
	"github.com/FocuswithJustin/Ouroboros/core/lexicon"
)

// Restore rebuilds a Book from its canonical text and manifest, verifying
// each section body against the recorded digests. The restored sections are
// re-annotated against a fresh arena, so word handles will not match the
// generating run; order, IDs, kinds, and raw content do.
func Restore(text []byte, m *Manifest) (*Book, error) {
	raw := strings.TrimSuffix(string(text), "\n")
	chunks := strings.Split(raw, "\n\n## ")
	for i := 1; i < len(chunks); i++ {
		chunks[i] = "## " + chunks[i]
	}
	if len(chunks) != len(m.Sections) {
		return nil, errors.NewValidation("text",
			fmt.Sprintf("%d sections, manifest records %d", len(chunks), len(m.Sections)))
	}

	arena := lexicon.NewArena()
	sections := make([]*Section, 0, len(chunks))
	for i, chunk := range chunks {
		rec := m.Sections[i]
		if got := digest.SHA256([]byte(chunk)); got != rec.Digests.SHA256 {
			return nil, fmt.Errorf("section %d (#%d): %w", i, rec.ID, errors.ErrChecksumMismatch)
		}
		kind, err := ParseKind(rec.Kind)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		sections = append(sections, &Section{
			ID:      ID(rec.ID),
			Kind:    kind,
			Content: lexicon.Annotate(arena, chunk),
		})
	}

	createdAt, err := time.Parse(time.RFC3339, m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("manifest created_at: %w", err)
	}

	b := &Book{
		ID:        m.BookID,
		CreatedAt: createdAt,
		Sections:  sections,
		WordCount: m.WordCount,
	}
	if got := digest.SHA256([]byte(b.Text())); got != m.Digests.SHA256 {
		return nil, fmt.Errorf("book text: %w", errors.ErrChecksumMismatch)
	}
	return b, nil
}
