package sqlite

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/bookdex/bookdex-server/internal/domain"
	"github.com/bookdex/bookdex-server/internal/errors"
)

// exportEnvelope is the top-level shape of a JSON export.
type exportEnvelope struct {
	ExportedAt time.Time     `json:"exported_at"`
	BookCount  int           `json:"book_count"`
	Books      []domain.Book `json:"books"`
}

// ExportJSON streams the full library, chapters included, as one JSON
// document.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY id ASC`)
	if err != nil {
		return errors.Wrap(err, errors.CodePersistence, "export books")
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return errors.Wrap(err, errors.CodePersistence, "scan book")
		}
		books = append(books, *book)
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, errors.CodePersistence, "iterate books")
	}

	for i := range books {
		books[i].Chapters, err = s.loadChapters(ctx, books[i].ID)
		if err != nil {
			return errors.Wrapf(err, errors.CodePersistence, "load chapters for %s", books[i].ID)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exportEnvelope{
		ExportedAt: time.Now().UTC(),
		BookCount:  len(books),
		Books:      books,
	}); err != nil {
		return errors.Wrap(err, errors.CodePersistence, "encode export")
	}
	return nil
}
