package sqlite

import (
	"context"

	"github.com/bookdex/bookdex-server/internal/errors"
	"github.com/bookdex/bookdex-server/internal/store"
)

// RecordRun stores a completed indexing run checkpoint.
func (s *Store) RecordRun(ctx context.Context, run *store.RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_checkpoints (
			id, library_path, started_at, finished_at,
			total, succeeded, failed, skipped, success_rate, files_per_minute
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.LibraryPath, formatTime(run.StartedAt), formatTime(run.FinishedAt),
		run.Total, run.Succeeded, run.Failed, run.Skipped,
		run.SuccessRate, run.FilesPerMinute)
	if err != nil {
		return errors.Wrapf(err, errors.CodePersistence, "record run %s", run.ID)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, library_path, started_at, finished_at,
			total, succeeded, failed, skipped, success_rate, files_per_minute
		FROM run_checkpoints
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePersistence, "list runs")
	}
	defer rows.Close()

	var runs []store.RunRecord
	for rows.Next() {
		var run store.RunRecord
		var startedAt, finishedAt string
		err := rows.Scan(&run.ID, &run.LibraryPath, &startedAt, &finishedAt,
			&run.Total, &run.Succeeded, &run.Failed, &run.Skipped,
			&run.SuccessRate, &run.FilesPerMinute)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodePersistence, "scan run")
		}
		if run.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, errors.Wrap(err, errors.CodePersistence, "parse run timestamp")
		}
		if run.FinishedAt, err = parseTime(finishedAt); err != nil {
			return nil, errors.Wrap(err, errors.CodePersistence, "parse run timestamp")
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
