package sqlite

import (
	"context"
	"database/sql"

	"github.com/bookdex/bookdex-server/internal/domain"
	"github.com/bookdex/bookdex-server/internal/errors"
	"github.com/bookdex/bookdex-server/internal/store"
)

// Stats aggregates library-wide statistics in a handful of queries.
func (s *Store) Stats(ctx context.Context) (*store.LibraryStats, error) {
	stats := &store.LibraryStats{
		GenreDistribution:    make(map[string]int),
		LevelDistribution:    make(map[string]int),
		LanguageDistribution: make(map[string]int),
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(word_count), 0)
		FROM books`,
		string(domain.StatusProcessed), string(domain.StatusFailed)).
		Scan(&stats.TotalBooks, &stats.ProcessedBooks, &stats.FailedBooks, &stats.TotalWords)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePersistence, "aggregate book counts")
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chapters`).Scan(&stats.TotalChapters)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePersistence, "count chapters")
	}

	// Averages and distributions only consider processed books.
	var avg sql.NullFloat64
	err = s.db.QueryRowContext(ctx, `
		SELECT AVG(complexity_score) FROM books WHERE status = ?`,
		string(domain.StatusProcessed)).Scan(&avg)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePersistence, "average complexity")
	}
	if avg.Valid {
		stats.AvgComplexity = avg.Float64
	}

	if err := s.countBy(ctx, `
		SELECT primary_genre, COUNT(*) FROM books
		WHERE status = ? AND primary_genre IS NOT NULL
		GROUP BY primary_genre`, stats.GenreDistribution); err != nil {
		return nil, err
	}
	if err := s.countBy(ctx, `
		SELECT reading_level, COUNT(*) FROM books
		WHERE status = ?
		GROUP BY reading_level`, stats.LevelDistribution); err != nil {
		return nil, err
	}
	if err := s.countBy(ctx, `
		SELECT COALESCE(detected_language, 'unknown'), COUNT(*) FROM books
		WHERE status = ?
		GROUP BY detected_language`, stats.LanguageDistribution); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *Store) countBy(ctx context.Context, query string, dest map[string]int) error {
	rows, err := s.db.QueryContext(ctx, query, string(domain.StatusProcessed))
	if err != nil {
		return errors.Wrap(err, errors.CodePersistence, "aggregate distribution")
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return errors.Wrap(err, errors.CodePersistence, "scan distribution row")
		}
		dest[key] = count
	}
	return rows.Err()
}
