// Package search provides full-text search over the indexed library using
// Bleve. Books are indexed with their metadata and full chapter text, with
// faceted filtering on genre, reading level and language.
package search

import (
	"github.com/bookdex/bookdex-server/internal/domain"
)

// Document is the shape of one book in the Bleve index.
//
// Chapter text is denormalized into a single text field so a phrase query
// reaches into the book body with one index lookup. The text is searchable
// but not stored; hits carry metadata only and the store serves the body.
type Document struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Text     string `json:"text"`
	Subjects string `json:"subjects"`

	Genre        string `json:"genre"`
	ReadingLevel string `json:"reading_level"`
	Language     string `json:"language"`

	ComplexityScore float64 `json:"complexity_score"`
	WordCount       int     `json:"word_count"`

	UpdatedAt int64 `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names so they
// match the index mapping. Bleve would otherwise index the capitalized Go
// field names.
func (d *Document) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":               d.ID,
		"title":            d.Title,
		"complexity_score": d.ComplexityScore,
		"word_count":       d.WordCount,
		"updated_at":       d.UpdatedAt,
	}

	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.Text != "" {
		m["text"] = d.Text
	}
	if d.Subjects != "" {
		m["subjects"] = d.Subjects
	}
	if d.Genre != "" {
		m["genre"] = d.Genre
	}
	if d.ReadingLevel != "" {
		m["reading_level"] = d.ReadingLevel
	}
	if d.Language != "" {
		m["language"] = d.Language
	}

	return m
}

// BookToDocument converts a domain Book to an index document. Chapters must
// be loaded on the book; the concatenated text feeds the body field.
func BookToDocument(book *domain.Book) *Document {
	subjects := ""
	for i, s := range book.Subjects {
		if i > 0 {
			subjects += " "
		}
		subjects += s
	}

	return &Document{
		ID:              book.ID,
		Title:           book.Title,
		Author:          book.AuthorDisplay(),
		Text:            book.FullText(),
		Subjects:        subjects,
		Genre:           book.PrimaryGenre,
		ReadingLevel:    string(book.ReadingLevel),
		Language:        book.DetectedLanguage,
		ComplexityScore: book.ComplexityScore,
		WordCount:       book.WordCount,
		UpdatedAt:       book.UpdatedAt.UnixMilli(),
	}
}
