// Package domain contains the core business entities for the Bookdex library index.
package domain

import (
	"time"
)

// BookStatus tracks where a book is in its indexing lifecycle.
type BookStatus string

// Book lifecycle states.
const (
	StatusPending   BookStatus = "pending"
	StatusProcessed BookStatus = "processed"
	StatusFailed    BookStatus = "failed"
)

// Book represents one indexed e-book. Identity is the content fingerprint,
// not the file path, so a moved or renamed copy resolves to the same Book.
type Book struct {
	ID          string    `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ExtractedAt time.Time `json:"extracted_at"`

	// Source metadata.
	Title       string   `json:"title"`
	Authors     []string `json:"authors"` // ordered as declared in the book
	Language    string   `json:"language,omitempty"`
	Publisher   string   `json:"publisher,omitempty"`
	PublishDate string   `json:"publish_date,omitempty"`
	ISBN        string   `json:"isbn,omitempty"`
	Identifier  string   `json:"identifier,omitempty"`
	Description string   `json:"description,omitempty"`
	Subjects    []string `json:"subjects,omitempty"`
	Path        string   `json:"path"`
	FileSize    int64    `json:"file_size"`

	// Denormalized "current" analysis fields. The full history lives in
	// AnalysisResult records.
	DetectedLanguage string       `json:"detected_language,omitempty"`
	WordCount        int          `json:"word_count"`
	ComplexityScore  float64      `json:"complexity_score"`
	ReadingLevel     ReadingLevel `json:"reading_level"`
	PrimaryGenre     string       `json:"primary_genre,omitempty"`
	PrimaryScore     float64      `json:"primary_score,omitempty"`
	SecondaryGenres  []GenreScore `json:"secondary_genres,omitempty"` // strictly descending by confidence
	TopicVector      []float64    `json:"topic_vector,omitempty"`
	TopicModelID     string       `json:"topic_model_id,omitempty"`
	TopicStale       bool         `json:"topic_stale,omitempty"`
	Unmodeled        bool         `json:"unmodeled,omitempty"`

	Status        BookStatus `json:"status"`
	FailedStage   string     `json:"failed_stage,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`

	Chapters []Chapter `json:"chapters,omitempty"`
}

// Chapter is a plain-text chapter owned by exactly one Book.
// Chapters are cascade-deleted with their Book.
type Chapter struct {
	Index     int    `json:"index"` // unique within the book, original document order
	ChapterID string `json:"chapter_id"`
	Title     string `json:"title,omitempty"`
	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
}

// GenreScore pairs a taxonomy label with a fused confidence.
type GenreScore struct {
	Genre      string  `json:"genre"`
	Confidence float64 `json:"confidence"`
}

// AuthorDisplay joins the ordered author list for presentation and search.
func (b *Book) AuthorDisplay() string {
	switch len(b.Authors) {
	case 0:
		return ""
	case 1:
		return b.Authors[0]
	default:
		out := b.Authors[0]
		for _, a := range b.Authors[1:] {
			out += ", " + a
		}
		return out
	}
}

// FullText concatenates chapter texts in order. Used for search indexing
// and corpus-level topic fitting.
func (b *Book) FullText() string {
	var sb []byte
	for i, ch := range b.Chapters {
		if i > 0 {
			sb = append(sb, '\n', '\n')
		}
		sb = append(sb, ch.Text...)
	}
	return string(sb)
}

// MarkFailed moves the book to the failed state, recording the stage and cause.
func (b *Book) MarkFailed(stage string, cause error) {
	b.Status = StatusFailed
	b.FailedStage = stage
	if cause != nil {
		b.FailureReason = cause.Error()
	}
}
