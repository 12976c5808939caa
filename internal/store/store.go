// Package store defines the persistence interfaces for the library index.
// Implementations live in subpackages; internal/store/sqlite is the one
// the binaries use.
package store

import (
	"context"
	"io"
	"time"

	"github.com/bookdex/bookdex-server/internal/domain"
)

// CorpusDoc is one processed book's text handed to corpus-level fitting.
type CorpusDoc struct {
	BookID   string
	Language string
	Text     string
}

// LibraryStats are the aggregate statistics served by the stats endpoint.
type LibraryStats struct {
	TotalBooks     int     `json:"total_books"`
	ProcessedBooks int     `json:"processed_books"`
	FailedBooks    int     `json:"failed_books"`
	TotalWords     int64   `json:"total_words"`
	TotalChapters  int     `json:"total_chapters"`
	AvgComplexity  float64 `json:"avg_complexity"`

	GenreDistribution    map[string]int `json:"genre_distribution"`
	LevelDistribution    map[string]int `json:"level_distribution"`
	LanguageDistribution map[string]int `json:"language_distribution"`
}

// RunRecord summarizes one completed indexing run.
type RunRecord struct {
	ID          string    `json:"id"`
	LibraryPath string    `json:"library_path"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`

	Total          int     `json:"total"`
	Succeeded      int     `json:"succeeded"`
	Failed         int     `json:"failed"`
	Skipped        int     `json:"skipped"`
	SuccessRate    float64 `json:"success_rate"`
	FilesPerMinute float64 `json:"files_per_minute"`
}

// BookStore persists books and their analysis history.
type BookStore interface {
	// CommitBook writes the book, its chapters and the analysis result in
	// one transaction. An existing book with the same ID has its chapters
	// replaced; analysis results are append-only.
	CommitBook(ctx context.Context, book *domain.Book, result *domain.AnalysisResult) error

	GetBook(ctx context.Context, id string) (*domain.Book, error)
	GetBookByFingerprint(ctx context.Context, fingerprint string) (*domain.Book, error)
	ListBooks(ctx context.Context, params PaginationParams) (*PaginatedResult[domain.Book], error)
	SearchBooks(ctx context.Context, query string, limit int) ([]domain.Book, error)
	DeleteBook(ctx context.Context, id string) error

	// GetCorpus returns the full text of every processed book, for topic
	// model fitting.
	GetCorpus(ctx context.Context) ([]CorpusDoc, error)

	// UpdateTopics records a book's inferred topic vector under the given
	// model version and clears its staleness flag.
	UpdateTopics(ctx context.Context, bookID string, vector []float64, modelID string, unmodeled bool) error

	// MarkTopicsStale flags every book whose vector was inferred under a
	// different model than the given one.
	MarkTopicsStale(ctx context.Context, activeModelID string) error

	Stats(ctx context.Context) (*LibraryStats, error)
	ExportJSON(ctx context.Context, w io.Writer) error
}

// TopicModelStore persists fitted topic model artifacts.
type TopicModelStore interface {
	SaveTopicModel(ctx context.Context, model *domain.TopicModel) error
	GetTopicModel(ctx context.Context, id string) (*domain.TopicModel, error)
	LatestTopicModel(ctx context.Context) (*domain.TopicModel, error)
}

// RunStore records indexing run checkpoints.
type RunStore interface {
	RecordRun(ctx context.Context, run *RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
}

// Store is the full persistence surface used by the service and indexer.
type Store interface {
	BookStore
	TopicModelStore
	RunStore

	// Backup snapshots the database into dir and returns the snapshot
	// path. Callers must quiesce writes first.
	Backup(ctx context.Context, dir string) (string, error)

	Close() error
}

// SearchIndexer maintains the full-text index alongside the store. The
// sqlite store calls it after each successful commit unless bulk mode is
// active.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, bookID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexBook is a no-op.
func (NoopSearchIndexer) IndexBook(context.Context, *domain.Book) error { return nil }

// DeleteBook is a no-op.
func (NoopSearchIndexer) DeleteBook(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer { return NoopSearchIndexer{} }
