package search

import (
	"context"
	"fmt"

	"github.com/bookdex/bookdex-server/internal/domain"
	"github.com/bookdex/bookdex-server/internal/store"
)

// Indexer adapts the search index to the store.SearchIndexer interface so
// the sqlite store keeps the index current after each commit.
type Indexer struct {
	index *Index
}

var _ store.SearchIndexer = (*Indexer)(nil)

// NewIndexer creates a store-facing indexer over the given index.
func NewIndexer(index *Index) *Indexer {
	return &Indexer{index: index}
}

// IndexBook indexes one book.
func (i *Indexer) IndexBook(_ context.Context, book *domain.Book) error {
	return i.index.IndexDocument(BookToDocument(book))
}

// DeleteBook removes one book from the index.
func (i *Indexer) DeleteBook(_ context.Context, bookID string) error {
	return i.index.DeleteDocument(bookID)
}

// RebuildFromStore drops the index and repopulates it from every book in
// the store. Used after bulk indexing runs and on mapping version bumps.
func (i *Indexer) RebuildFromStore(ctx context.Context, books store.BookStore) error {
	if err := i.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	params := store.PaginationParams{Limit: 200}
	var docs []*Document
	for {
		page, err := books.ListBooks(ctx, params)
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}
		for idx := range page.Items {
			book := &page.Items[idx]
			// ListBooks omits chapters; load them so body text is indexed.
			full, err := books.GetBook(ctx, book.ID)
			if err != nil {
				return fmt.Errorf("load book %s: %w", book.ID, err)
			}
			docs = append(docs, BookToDocument(full))
		}
		if !page.HasMore {
			break
		}
		params.Cursor = page.NextCursor
	}

	return i.index.IndexDocuments(docs)
}
