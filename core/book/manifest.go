package book

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/FocuswithJustin/Ouroboros/core/digest"
)

// ManifestVersion is the current manifest format version.
const ManifestVersion = "1.0"

// GeneratorName identifies this generator in manifests.
const GeneratorName = "ouroboros"

// Manifest records what a generated book contains so it can be verified
// later without regenerating it. It is written as book.json next to the
// canonical text, and stored alongside shelf rows.
type Manifest struct {
	FormatVersion string          `json:"format_version"`
	BookID        string          `json:"book_id"`
	CreatedAt     string          `json:"created_at"`
	Generator     GeneratorInfo   `json:"generator"`
	Seed          int64           `json:"seed,omitempty"`
	WordTarget    int             `json:"word_target"`
	WordCount     int             `json:"word_count"`
	Sections      []SectionRecord `json:"sections"`
	Digests       digest.Result   `json:"digests"`
}

// GeneratorInfo describes the generator that produced a book.
type GeneratorInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// SectionRecord describes one section in final registry order.
type SectionRecord struct {
	Position int           `json:"position"`
	ID       uint16        `json:"id"`
	Kind     string        `json:"kind"`
	Words    int           `json:"words"`
	Digests  digest.Result `json:"digests"`
}

// BuildManifest computes the manifest of a finished book. The digests cover
// the canonical text and each section body.
func BuildManifest(b *Book, cfg Config, version string) *Manifest {
	m := &Manifest{
		FormatVersion: ManifestVersion,
		BookID:        b.ID,
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
		Generator:     GeneratorInfo{Name: GeneratorName, Version: version},
		Seed:          cfg.Seed,
		WordTarget:    cfg.WordTarget,
		WordCount:     b.WordCount,
		Sections:      make([]SectionRecord, 0, len(b.Sections)),
		Digests:       digest.Sum([]byte(b.Text())),
	}
	for i, s := range b.Sections {
		m.Sections = append(m.Sections, SectionRecord{
			Position: i,
			ID:       uint16(s.ID),
			Kind:     s.Kind.String(),
			Words:    s.WordCount(),
			Digests:  digest.Sum([]byte(s.Content.Raw)),
		})
	}
	return m
}

// ToJSON serializes the manifest with indentation.
func (m *Manifest) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// WriteManifest writes the manifest to path.
func WriteManifest(m *Manifest, path string) error {
	data, err := m.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest reads and strictly decodes a manifest from path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest strictly decodes manifest JSON. Unknown fields are rejected
// so version drift surfaces as a parse error, not silent data loss.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.FormatVersion != ManifestVersion {
		return nil, fmt.Errorf("unsupported manifest version %q", m.FormatVersion)
	}
	return &m, nil
}
