package book

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/Ouroboros/core/digest"
)

func generateTestBook(t *testing.T, cfg Config) *Book {
	t.Helper()
	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	b, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	return b
}

func TestBuildManifest(t *testing.T) {
	cfg := Config{WordTarget: 2_000, Seed: 31}
	b := generateTestBook(t, cfg)

	m := BuildManifest(b, cfg, "1.2.3")

	if m.FormatVersion != ManifestVersion {
		t.Errorf("FormatVersion = %q, want %q", m.FormatVersion, ManifestVersion)
	}
	if m.BookID != b.ID {
		t.Errorf("BookID = %q, want %q", m.BookID, b.ID)
	}
	if m.Generator.Name != GeneratorName || m.Generator.Version != "1.2.3" {
		t.Errorf("Generator = %+v", m.Generator)
	}
	if m.WordCount != b.WordCount {
		t.Errorf("WordCount = %d, want %d", m.WordCount, b.WordCount)
	}
	if len(m.Sections) != len(b.Sections) {
		t.Fatalf("Sections = %d records, want %d", len(m.Sections), len(b.Sections))
	}
	for i, rec := range m.Sections {
		if rec.Position != i {
			t.Errorf("Sections[%d].Position = %d", i, rec.Position)
		}
		if rec.ID != uint16(b.Sections[i].ID) {
			t.Errorf("Sections[%d].ID = %d, want %d", i, rec.ID, b.Sections[i].ID)
		}
	}

	if !digest.Verify([]byte(b.Text()), m.Digests) {
		t.Error("manifest digests do not verify against the canonical text")
	}
	if digest.Verify([]byte(b.Text()+"tampered"), m.Digests) {
		t.Error("manifest digests verify against tampered text")
	}
}

func TestManifestRoundTrip(t *testing.T) {
	cfg := Config{WordTarget: 500, Seed: 32}
	b := generateTestBook(t, cfg)
	m := BuildManifest(b, cfg, "0.0.1")

	path := filepath.Join(t.TempDir(), "book.json")
	if err := WriteManifest(m, path); err != nil {
		t.Fatalf("WriteManifest() error: %v", err)
	}

	got, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest() error: %v", err)
	}

	if got.BookID != m.BookID {
		t.Errorf("BookID = %q, want %q", got.BookID, m.BookID)
	}
	if got.Digests != m.Digests {
		t.Errorf("Digests = %+v, want %+v", got.Digests, m.Digests)
	}
	if len(got.Sections) != len(m.Sections) {
		t.Errorf("Sections = %d, want %d", len(got.Sections), len(m.Sections))
	}
}

func TestParseManifestStrict(t *testing.T) {
	_, err := ParseManifest([]byte(`{"format_version":"1.0","unknown_field":true}`))
	if err == nil {
		t.Error("ParseManifest() accepted unknown field")
	}

	_, err = ParseManifest([]byte(`{"format_version":"9.9"}`))
	if err == nil || !strings.Contains(err.Error(), "manifest version") {
		t.Errorf("ParseManifest() error = %v, want version error", err)
	}
}
