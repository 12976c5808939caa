package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookdex/bookdex-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search library",
		Description: "Ranked full-text search across titles, authors and book text",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching the library.
type SearchInput struct {
	Query         string  `query:"q" validate:"required,min=1,max=200" doc:"Search query"`
	Genres        string  `query:"genres" validate:"omitempty,max=200" doc:"Comma-separated genre labels to filter by"`
	Levels        string  `query:"levels" validate:"omitempty,max=200" doc:"Comma-separated reading levels to filter by"`
	Languages     string  `query:"languages" validate:"omitempty,max=50" doc:"Comma-separated language codes to filter by"`
	MinComplexity float64 `query:"min_complexity" validate:"omitempty,gte=0" doc:"Minimum complexity score"`
	MaxComplexity float64 `query:"max_complexity" validate:"omitempty,gte=0" doc:"Maximum complexity score"`
	Limit         int     `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max results (default 20)"`
	Offset        int     `query:"offset" validate:"omitempty,gte=0" doc:"Pagination offset"`
	Sort          string  `query:"sort" validate:"omitempty,oneof=relevance title author recent complexity" doc:"Sort order"`
	Facets        bool    `query:"facets" doc:"Include facet counts"`
}

// SearchOutput wraps the search result for Huma.
type SearchOutput struct {
	Body search.Result
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	params := search.DefaultParams()
	params.Query = input.Query
	params.Genres = splitList(input.Genres)
	params.ReadingLevels = splitList(input.Levels)
	params.Languages = splitList(input.Languages)
	params.MinComplexity = input.MinComplexity
	params.MaxComplexity = input.MaxComplexity
	params.IncludeFacets = input.Facets
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	params.Offset = input.Offset
	if input.Sort != "" {
		params.SortBy = input.Sort
	}

	result, err := s.library.Search(ctx, params)
	if err != nil {
		s.logger.Error("search failed", "error", err, "query", input.Query)
		return nil, err
	}
	if result.Hits == nil {
		result.Hits = []search.Hit{}
	}
	return &SearchOutput{Body: *result}, nil
}

// splitList parses a comma-separated filter value.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
