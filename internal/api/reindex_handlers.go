package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookdex/bookdex-server/internal/errors"
	"github.com/bookdex/bookdex-server/internal/indexer"
)

func (s *Server) registerReindexRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "reindex",
		Method:      http.MethodPost,
		Path:        "/api/v1/reindex",
		Summary:     "Reindex library",
		Description: "Runs a full indexing pass over the library. Only one run may be active at a time.",
		Tags:        []string{"Indexing"},
	}, s.handleReindex)
}

// === DTOs ===

// ReindexInput triggers a run.
type ReindexInput struct {
	Body struct {
		Path  string `json:"path" validate:"required" doc:"Library directory to index"`
		Force bool   `json:"force,omitempty" doc:"Reprocess books already in the store"`
	}
}

// ReindexResponse summarizes a completed run.
type ReindexResponse struct {
	RunID          string  `json:"run_id" doc:"Run checkpoint ID"`
	Total          int     `json:"total" doc:"Files discovered"`
	Succeeded      int     `json:"succeeded" doc:"Books indexed"`
	Failed         int     `json:"failed" doc:"Books that failed a pipeline stage"`
	Skipped        int     `json:"skipped" doc:"Books skipped by fingerprint"`
	SuccessRate    float64 `json:"success_rate" doc:"Succeeded over attempted"`
	FilesPerMinute float64 `json:"files_per_minute" doc:"Processing rate"`
	TopicModelID   string  `json:"topic_model_id,omitempty" doc:"Active topic model after the run"`
}

// ReindexOutput wraps the run summary for Huma.
type ReindexOutput struct {
	Body ReindexResponse
}

// === Handlers ===

func (s *Server) handleReindex(ctx context.Context, input *ReindexInput) (*ReindexOutput, error) {
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	result, err := s.library.Reindex(ctx, input.Body.Path, indexer.Options{
		Force: input.Body.Force,
	})
	if err != nil {
		if !errors.Is(err, errors.ErrConflict) {
			s.logger.Error("reindex failed", "error", err, "path", input.Body.Path)
		}
		return nil, err
	}

	return &ReindexOutput{Body: ReindexResponse{
		RunID:          result.RunID,
		Total:          result.Total,
		Succeeded:      result.Succeeded,
		Failed:         result.Failed,
		Skipped:        result.Skipped,
		SuccessRate:    result.SuccessRate,
		FilesPerMinute: result.FilesPerMinute,
		TopicModelID:   result.TopicModelID,
	}}, nil
}
