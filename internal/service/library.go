// Package service provides the business logic layer between the API and
// the store, search index and indexing orchestrator.
package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/bookdex/bookdex-server/internal/domain"
	"github.com/bookdex/bookdex-server/internal/errors"
	"github.com/bookdex/bookdex-server/internal/indexer"
	"github.com/bookdex/bookdex-server/internal/search"
	"github.com/bookdex/bookdex-server/internal/store"
)

// LibraryService serves query operations over the indexed library and
// triggers reindexing runs.
type LibraryService struct {
	store   store.Store
	search  *search.Index
	indexer *indexer.Indexer
	logger  *slog.Logger

	mu         sync.Mutex
	reindexing bool
}

// NewLibraryService creates a library service. The search index may be nil;
// Search then falls back to the store's substring search.
func NewLibraryService(st store.Store, idx *search.Index, ix *indexer.Indexer, logger *slog.Logger) *LibraryService {
	return &LibraryService{
		store:   st,
		search:  idx,
		indexer: ix,
		logger:  logger,
	}
}

// GetBook retrieves a single book with chapters.
func (s *LibraryService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	return s.store.GetBook(ctx, id)
}

// ListBooks returns a paginated book listing without chapters.
func (s *LibraryService) ListBooks(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[domain.Book], error) {
	params.Validate()
	return s.store.ListBooks(ctx, params)
}

// Search runs a ranked full-text query with facets. Without a search
// index it degrades to the store's substring search.
func (s *LibraryService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}

	if s.search != nil {
		return s.search.Search(ctx, params)
	}

	books, err := s.store.SearchBooks(ctx, params.Query, params.Limit)
	if err != nil {
		return nil, err
	}
	result := &search.Result{
		Query: params.Query,
		Total: uint64(len(books)),
		Hits:  make([]search.Hit, 0, len(books)),
	}
	for _, book := range books {
		result.Hits = append(result.Hits, search.Hit{
			ID:              book.ID,
			Title:           book.Title,
			Author:          book.AuthorDisplay(),
			Genre:           book.PrimaryGenre,
			ReadingLevel:    string(book.ReadingLevel),
			Language:        book.DetectedLanguage,
			ComplexityScore: book.ComplexityScore,
			WordCount:       book.WordCount,
		})
	}
	return result, nil
}

// Stats returns aggregate library statistics.
func (s *LibraryService) Stats(ctx context.Context) (*store.LibraryStats, error) {
	return s.store.Stats(ctx)
}

// Export streams the full library as JSON.
func (s *LibraryService) Export(ctx context.Context, w io.Writer) error {
	return s.store.ExportJSON(ctx, w)
}

// ListRuns returns recent indexing run checkpoints.
func (s *LibraryService) ListRuns(ctx context.Context, limit int) ([]store.RunRecord, error) {
	return s.store.ListRuns(ctx, limit)
}

// Reindex runs the indexing orchestrator over libraryPath. Only one run
// may be active at a time; a concurrent call returns a conflict error.
func (s *LibraryService) Reindex(ctx context.Context, libraryPath string, opts indexer.Options) (*indexer.RunResult, error) {
	s.mu.Lock()
	if s.reindexing {
		s.mu.Unlock()
		return nil, errors.Conflict("an indexing run is already in progress")
	}
	s.reindexing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.reindexing = false
		s.mu.Unlock()
	}()

	result, err := s.indexer.Run(ctx, libraryPath, opts)
	if err != nil {
		return nil, err
	}

	// The run commits in bulk mode; bring the search index back in sync.
	if s.search != nil {
		if rebuildErr := search.NewIndexer(s.search).RebuildFromStore(ctx, s.store); rebuildErr != nil {
			s.logger.Warn("search index rebuild failed", "error", rebuildErr)
		}
	}

	return result, nil
}

// Reindexing reports whether a run is currently active.
func (s *LibraryService) Reindexing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reindexing
}
