package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookdex/bookdex-server/internal/domain"
	"github.com/bookdex/bookdex-server/internal/normalize"
	"github.com/bookdex/bookdex-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Paginated listing of indexed books, without chapter text",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "One book with chapters and analysis fields",
		Tags:        []string{"Books"},
	}, s.handleGetBook)
}

// === DTOs ===

// ListBooksInput contains pagination parameters.
type ListBooksInput struct {
	Limit  int    `query:"limit" validate:"omitempty,gte=1,lte=500" doc:"Items per page (default 50)"`
	Cursor string `query:"cursor" doc:"Opaque cursor from a previous page"`
}

// ListBooksOutput wraps the paginated listing for Huma.
type ListBooksOutput struct {
	Body store.PaginatedResult[domain.Book]
}

// GetBookInput identifies one book.
type GetBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookDetail is a book plus derived presentation fields.
type BookDetail struct {
	domain.Book
	LanguageName string `json:"language_name,omitempty" doc:"Display name of the book's language"`
}

// GetBookOutput wraps a single book for Huma.
type GetBookOutput struct {
	Body BookDetail
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	page, err := s.library.ListBooks(ctx, store.PaginationParams{
		Limit:  input.Limit,
		Cursor: input.Cursor,
	})
	if err != nil {
		s.logger.Error("failed to list books", "error", err)
		return nil, err
	}
	if page.Items == nil {
		page.Items = []domain.Book{}
	}
	return &ListBooksOutput{Body: *page}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*GetBookOutput, error) {
	book, err := s.library.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	detail := BookDetail{Book: *book}
	if name := normalize.Language(book.DetectedLanguage); name != "" {
		detail.LanguageName = name
	} else {
		detail.LanguageName = normalize.Language(book.Language)
	}
	return &GetBookOutput{Body: detail}, nil
}
