// Package shelf stores finished books in a SQLite database so they can be
// listed, re-read, and verified after the generating process is gone.
package shelf

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/FocuswithJustin/Ouroboros/core/book"
	"github.com/FocuswithJustin/Ouroboros/core/errors"
	"github.com/FocuswithJustin/Ouroboros/internal/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS books (
	id          TEXT PRIMARY KEY,
	created_at  TEXT NOT NULL,
	word_target INTEGER NOT NULL,
	word_count  INTEGER NOT NULL,
	seed        INTEGER NOT NULL,
	sha256      TEXT NOT NULL,
	blake3      TEXT NOT NULL,
	manifest    TEXT NOT NULL,
	text        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sections (
	book_id    TEXT NOT NULL,
	position   INTEGER NOT NULL,
	section_id INTEGER NOT NULL,
	kind       TEXT NOT NULL,
	words      INTEGER NOT NULL,
	sha256     TEXT NOT NULL,
	PRIMARY KEY (book_id, position)
);
`

// Shelf is a handle on one shelf database.
type Shelf struct {
	db *sql.DB
}

// BookInfo is the listing row for a stored book.
type BookInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	WordCount int       `json:"word_count"`
	Sections  int       `json:"sections"`
	SHA256    string    `json:"sha256"`
}

// StoredBook is a fully loaded shelf row.
type StoredBook struct {
	Info     BookInfo
	Seed     int64
	Manifest *book.Manifest
	Text     string
}

// Open opens (creating if needed) a shelf database at path.
func Open(ctx context.Context, path string) (*Shelf, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shelf %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init shelf schema: %w", err)
	}
	return &Shelf{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Shelf) Close() error {
	return s.db.Close()
}

// Put records a finished book with its manifest. The book ID comes from the
// manifest; storing the same ID twice is an error.
func (s *Shelf) Put(ctx context.Context, b *book.Book, m *book.Manifest) error {
	manifestJSON, err := m.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin shelf tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO books (id, created_at, word_target, word_count, seed, sha256, blake3, manifest, text)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.BookID, m.CreatedAt, m.WordTarget, m.WordCount, m.Seed,
		m.Digests.SHA256, m.Digests.BLAKE3, string(manifestJSON), b.Text())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("book %s: %w", m.BookID, errors.ErrAlreadyExists)
		}
		return fmt.Errorf("insert book: %w", err)
	}

	for _, rec := range m.Sections {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO sections (book_id, position, section_id, kind, words, sha256)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			m.BookID, rec.Position, rec.ID, rec.Kind, rec.Words, rec.Digests.SHA256)
		if err != nil {
			return fmt.Errorf("insert section %d: %w", rec.Position, err)
		}
	}

	return tx.Commit()
}

// List returns all stored books, newest first.
func (s *Shelf) List(ctx context.Context) ([]BookInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.id, b.created_at, b.word_count, b.sha256,
		        (SELECT COUNT(*) FROM sections WHERE book_id = b.id)
		 FROM books b ORDER BY b.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var infos []BookInfo
	for rows.Next() {
		var info BookInfo
		var created string
		if err := rows.Scan(&info.ID, &created, &info.WordCount, &info.SHA256, &info.Sections); err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		info.CreatedAt, err = time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, fmt.Errorf("stored created_at for %s: %w", info.ID, err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Get loads one stored book. A unique UUID prefix is accepted in place of
// the full ID; an ambiguous prefix is an error.
func (s *Shelf) Get(ctx context.Context, id string) (*StoredBook, error) {
	full, err := s.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	var sb StoredBook
	var created, manifestJSON string
	err = s.db.QueryRowContext(ctx,
		`SELECT id, created_at, word_count, seed, sha256, manifest, text
		 FROM books WHERE id = ?`, full).
		Scan(&sb.Info.ID, &created, &sb.Info.WordCount, &sb.Seed,
			&sb.Info.SHA256, &manifestJSON, &sb.Text)
	if err != nil {
		return nil, fmt.Errorf("load book %s: %w", full, err)
	}
	sb.Info.CreatedAt, err = time.Parse(time.RFC3339, created)
	if err != nil {
		return nil, fmt.Errorf("stored created_at for %s: %w", full, err)
	}

	sb.Manifest, err = book.ParseManifest([]byte(manifestJSON))
	if err != nil {
		return nil, fmt.Errorf("stored manifest for %s: %w", full, err)
	}
	sb.Info.Sections = len(sb.Manifest.Sections)
	return &sb, nil
}

// Delete removes a stored book and its section rows. The same prefix rules
// as Get apply.
func (s *Shelf) Delete(ctx context.Context, id string) error {
	full, err := s.resolveID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin shelf tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE book_id = ?`, full); err != nil {
		return fmt.Errorf("delete sections: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, full); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return tx.Commit()
}

// resolveID expands a (possibly partial) book ID to the single stored ID it
// matches.
func (s *Shelf) resolveID(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", errors.NewValidation("id", "must not be empty")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM books WHERE id LIKE ? LIMIT 2`, id+"%")
	if err != nil {
		return "", fmt.Errorf("resolve book id: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var full string
		if err := rows.Scan(&full); err != nil {
			return "", fmt.Errorf("scan book id: %w", err)
		}
		matches = append(matches, full)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", errors.NewNotFound("book", id)
	case 1:
		return matches[0], nil
	default:
		return "", errors.NewValidation("id", fmt.Sprintf("prefix %q is ambiguous", id))
	}
}
