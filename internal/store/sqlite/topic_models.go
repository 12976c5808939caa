package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/bookdex/bookdex-server/internal/domain"
	"github.com/bookdex/bookdex-server/internal/errors"
)

// SaveTopicModel stores the full model artifact. Artifacts are immutable;
// saving an existing ID is an error.
func (s *Store) SaveTopicModel(ctx context.Context, model *domain.TopicModel) error {
	artifact, err := json.Marshal(model)
	if err != nil {
		return errors.Wrap(err, errors.CodePersistence, "marshal topic model")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO topic_models (id, fitted_at, k, language, doc_count, artifact)
		VALUES (?, ?, ?, ?, ?, ?)`,
		model.ID, formatTime(model.FittedAt), model.K, model.Language,
		model.DocCount, string(artifact))
	if err != nil {
		return errors.Wrapf(err, errors.CodePersistence, "save topic model %s", model.ID)
	}
	return nil
}

// GetTopicModel loads a model artifact by ID.
func (s *Store) GetTopicModel(ctx context.Context, id string) (*domain.TopicModel, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT artifact FROM topic_models WHERE id = ?`, id)
	return scanTopicModel(row, id)
}

// LatestTopicModel returns the most recently fitted model, or NotFound when
// no model has been fitted yet.
func (s *Store) LatestTopicModel(ctx context.Context) (*domain.TopicModel, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT artifact FROM topic_models ORDER BY fitted_at DESC LIMIT 1`)
	return scanTopicModel(row, "")
}

func scanTopicModel(row *sql.Row, id string) (*domain.TopicModel, error) {
	var artifact string
	if err := row.Scan(&artifact); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if id == "" {
				return nil, errors.NotFound("no topic model fitted yet")
			}
			return nil, errors.NotFoundf("topic model %s not found", id)
		}
		return nil, errors.Wrap(err, errors.CodePersistence, "load topic model")
	}

	var model domain.TopicModel
	if err := json.Unmarshal([]byte(artifact), &model); err != nil {
		return nil, errors.Wrap(fmt.Errorf("unmarshal artifact: %w", err),
			errors.CodePersistence, "load topic model")
	}
	return &model, nil
}
