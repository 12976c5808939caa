package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookdex/bookdex-server/internal/store"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Library statistics",
		Description: "Aggregate counts and distributions over the indexed library",
		Tags:        []string{"Stats"},
	}, s.handleGetStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "listRuns",
		Method:      http.MethodGet,
		Path:        "/api/v1/runs",
		Summary:     "List indexing runs",
		Description: "Recent indexing run checkpoints, newest first",
		Tags:        []string{"Stats"},
	}, s.handleListRuns)

	huma.Register(s.api, huma.Operation{
		OperationID: "exportLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/export",
		Summary:     "Export library",
		Description: "Full JSON export of every book including chapters",
		Tags:        []string{"Stats"},
	}, s.handleExport)
}

// === DTOs ===

// StatsOutput wraps library statistics for Huma.
type StatsOutput struct {
	Body store.LibraryStats
}

// ListRunsInput bounds the run listing.
type ListRunsInput struct {
	Limit int `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max runs (default 20)"`
}

// ListRunsOutput wraps run checkpoints for Huma.
type ListRunsOutput struct {
	Body struct {
		Runs []store.RunRecord `json:"runs"`
	}
}

// === Handlers ===

func (s *Server) handleGetStats(ctx context.Context, _ *struct{}) (*StatsOutput, error) {
	stats, err := s.library.Stats(ctx)
	if err != nil {
		s.logger.Error("failed to compute stats", "error", err)
		return nil, err
	}
	return &StatsOutput{Body: *stats}, nil
}

func (s *Server) handleListRuns(ctx context.Context, input *ListRunsInput) (*ListRunsOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	runs, err := s.library.ListRuns(ctx, input.Limit)
	if err != nil {
		s.logger.Error("failed to list runs", "error", err)
		return nil, err
	}
	if runs == nil {
		runs = []store.RunRecord{}
	}
	out := &ListRunsOutput{}
	out.Body.Runs = runs
	return out, nil
}

func (s *Server) handleExport(ctx context.Context, _ *struct{}) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(hctx huma.Context) {
			hctx.SetHeader("Content-Type", "application/json")
			if err := s.library.Export(ctx, hctx.BodyWriter()); err != nil {
				s.logger.Error("export failed", "error", err)
			}
		},
	}, nil
}
