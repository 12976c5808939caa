package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bookdex/bookdex-server/internal/domain"
	"github.com/bookdex/bookdex-server/internal/errors"
	"github.com/bookdex/bookdex-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, fingerprint, created_at, updated_at, extracted_at,
	title, authors, language, publisher, publish_date, isbn, identifier,
	description, subjects, path, file_size,
	detected_language, word_count, complexity_score, reading_level,
	primary_genre, primary_score, secondary_genres,
	topic_vector, topic_model_id, topic_stale, unmodeled,
	status, failed_stage, failure_reason`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		createdAt   string
		updatedAt   string
		extractedAt string

		authors      string
		language     sql.NullString
		publisher    sql.NullString
		publishDate  sql.NullString
		isbn         sql.NullString
		identifier   sql.NullString
		desc         sql.NullString
		subjects     string
		detectedLang sql.NullString

		primaryGenre    sql.NullString
		secondaryGenres string
		topicVector     sql.NullString
		topicModelID    sql.NullString
		topicStale      int
		unmodeled       int

		failedStage   sql.NullString
		failureReason sql.NullString
	)

	err := scanner.Scan(
		&b.ID,
		&b.Fingerprint,
		&createdAt,
		&updatedAt,
		&extractedAt,
		&b.Title,
		&authors,
		&language,
		&publisher,
		&publishDate,
		&isbn,
		&identifier,
		&desc,
		&subjects,
		&b.Path,
		&b.FileSize,
		&detectedLang,
		&b.WordCount,
		&b.ComplexityScore,
		&b.ReadingLevel,
		&primaryGenre,
		&b.PrimaryScore,
		&secondaryGenres,
		&topicVector,
		&topicModelID,
		&topicStale,
		&unmodeled,
		&b.Status,
		&failedStage,
		&failureReason,
	)
	if err != nil {
		return nil, err
	}

	// Parse timestamps.
	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	b.ExtractedAt, err = parseTime(extractedAt)
	if err != nil {
		return nil, err
	}

	// Optional string fields.
	if language.Valid {
		b.Language = language.String
	}
	if publisher.Valid {
		b.Publisher = publisher.String
	}
	if publishDate.Valid {
		b.PublishDate = publishDate.String
	}
	if isbn.Valid {
		b.ISBN = isbn.String
	}
	if identifier.Valid {
		b.Identifier = identifier.String
	}
	if desc.Valid {
		b.Description = desc.String
	}
	if detectedLang.Valid {
		b.DetectedLanguage = detectedLang.String
	}
	if primaryGenre.Valid {
		b.PrimaryGenre = primaryGenre.String
	}
	if topicModelID.Valid {
		b.TopicModelID = topicModelID.String
	}
	if failedStage.Valid {
		b.FailedStage = failedStage.String
	}
	if failureReason.Valid {
		b.FailureReason = failureReason.String
	}

	b.TopicStale = topicStale != 0
	b.Unmodeled = unmodeled != 0

	// JSON columns.
	if err := json.Unmarshal([]byte(authors), &b.Authors); err != nil {
		return nil, fmt.Errorf("unmarshal authors: %w", err)
	}
	if err := json.Unmarshal([]byte(subjects), &b.Subjects); err != nil {
		return nil, fmt.Errorf("unmarshal subjects: %w", err)
	}
	if err := json.Unmarshal([]byte(secondaryGenres), &b.SecondaryGenres); err != nil {
		return nil, fmt.Errorf("unmarshal secondary_genres: %w", err)
	}
	if topicVector.Valid && topicVector.String != "" {
		if err := json.Unmarshal([]byte(topicVector.String), &b.TopicVector); err != nil {
			return nil, fmt.Errorf("unmarshal topic_vector: %w", err)
		}
	}

	return &b, nil
}

// loadChapters loads chapters for a book in document order.
func (s *Store) loadChapters(ctx context.Context, bookID string) ([]domain.Chapter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, chapter_id, title, content, word_count
		FROM chapters
		WHERE book_id = ?
		ORDER BY idx ASC`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []domain.Chapter
	for rows.Next() {
		var ch domain.Chapter
		var title sql.NullString
		if err := rows.Scan(&ch.Index, &ch.ChapterID, &title, &ch.Text, &ch.WordCount); err != nil {
			return nil, err
		}
		if title.Valid {
			ch.Title = title.String
		}
		chapters = append(chapters, ch)
	}
	return chapters, rows.Err()
}

// CommitBook writes the book, its chapters and the analysis result in one
// transaction. Reindexed books have their chapters replaced; analysis
// results accumulate. Transient failures are retried with backoff before
// surfacing as a CodePersistence error.
func (s *Store) CommitBook(ctx context.Context, book *domain.Book, result *domain.AnalysisResult) error {
	err := s.withRetry(ctx, "commit book", func() error {
		return s.commitBookTx(ctx, book, result)
	})
	if err != nil {
		return errors.Wrapf(err, errors.CodePersistence, "commit book %s", book.ID)
	}

	if !s.IsBulkMode() {
		if err := s.searchIndexer.IndexBook(ctx, book); err != nil {
			s.logger.Warn("failed to index book for search",
				"book_id", book.ID, "error", err)
		}
	}
	return nil
}

func (s *Store) commitBookTx(ctx context.Context, book *domain.Book, result *domain.AnalysisResult) error {
	authors, err := json.Marshal(book.Authors)
	if err != nil {
		return fmt.Errorf("marshal authors: %w", err)
	}
	subjects, err := json.Marshal(book.Subjects)
	if err != nil {
		return fmt.Errorf("marshal subjects: %w", err)
	}
	secondary, err := json.Marshal(book.SecondaryGenres)
	if err != nil {
		return fmt.Errorf("marshal secondary genres: %w", err)
	}
	var topicVector any
	if book.TopicVector != nil {
		data, err := json.Marshal(book.TopicVector)
		if err != nil {
			return fmt.Errorf("marshal topic vector: %w", err)
		}
		topicVector = string(data)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO books (
			id, fingerprint, created_at, updated_at, extracted_at,
			title, authors, language, publisher, publish_date, isbn, identifier,
			description, subjects, path, file_size,
			detected_language, word_count, complexity_score, reading_level,
			primary_genre, primary_score, secondary_genres,
			topic_vector, topic_model_id, topic_stale, unmodeled,
			status, failed_stage, failure_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			updated_at = excluded.updated_at,
			extracted_at = excluded.extracted_at,
			title = excluded.title,
			authors = excluded.authors,
			language = excluded.language,
			publisher = excluded.publisher,
			publish_date = excluded.publish_date,
			isbn = excluded.isbn,
			identifier = excluded.identifier,
			description = excluded.description,
			subjects = excluded.subjects,
			path = excluded.path,
			file_size = excluded.file_size,
			detected_language = excluded.detected_language,
			word_count = excluded.word_count,
			complexity_score = excluded.complexity_score,
			reading_level = excluded.reading_level,
			primary_genre = excluded.primary_genre,
			primary_score = excluded.primary_score,
			secondary_genres = excluded.secondary_genres,
			topic_vector = excluded.topic_vector,
			topic_model_id = excluded.topic_model_id,
			topic_stale = excluded.topic_stale,
			unmodeled = excluded.unmodeled,
			status = excluded.status,
			failed_stage = excluded.failed_stage,
			failure_reason = excluded.failure_reason`,
		book.ID, book.Fingerprint, formatTime(book.CreatedAt), formatTime(book.UpdatedAt),
		formatTime(book.ExtractedAt),
		book.Title, string(authors), nullString(book.Language), nullString(book.Publisher),
		nullString(book.PublishDate), nullString(book.ISBN), nullString(book.Identifier),
		nullString(book.Description), string(subjects), book.Path, book.FileSize,
		nullString(book.DetectedLanguage), book.WordCount, book.ComplexityScore,
		string(book.ReadingLevel),
		nullString(book.PrimaryGenre), book.PrimaryScore, string(secondary),
		topicVector, nullString(book.TopicModelID), boolInt(book.TopicStale), boolInt(book.Unmodeled),
		string(book.Status), nullString(book.FailedStage), nullString(book.FailureReason),
	)
	if err != nil {
		return fmt.Errorf("upsert book: %w", err)
	}

	// Replace chapters wholesale on reindex.
	if _, err := tx.ExecContext(ctx, `DELETE FROM chapters WHERE book_id = ?`, book.ID); err != nil {
		return fmt.Errorf("delete old chapters: %w", err)
	}
	for _, ch := range book.Chapters {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chapters (book_id, idx, chapter_id, title, content, word_count)
			VALUES (?, ?, ?, ?, ?, ?)`,
			book.ID, ch.Index, ch.ChapterID, nullString(ch.Title), ch.Text, ch.WordCount)
		if err != nil {
			return fmt.Errorf("insert chapter %d: %w", ch.Index, err)
		}
	}

	if result != nil {
		if err := insertAnalysisResult(ctx, tx, result); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertAnalysisResult(ctx context.Context, tx *sql.Tx, result *domain.AnalysisResult) error {
	genreScores, err := json.Marshal(result.GenreScores)
	if err != nil {
		return fmt.Errorf("marshal genre scores: %w", err)
	}
	complexity, err := json.Marshal(result.Complexity)
	if err != nil {
		return fmt.Errorf("marshal complexity: %w", err)
	}
	var topicVector any
	if result.TopicVector != nil {
		data, err := json.Marshal(result.TopicVector)
		if err != nil {
			return fmt.Errorf("marshal topic vector: %w", err)
		}
		topicVector = string(data)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO analysis_results (
			id, book_id, created_at, source, genre_scores, complexity,
			topic_vector, topic_model_id, degraded, unmodeled
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID, result.BookID, formatTime(result.CreatedAt), string(result.Source),
		string(genreScores), string(complexity), topicVector,
		nullString(result.TopicModelID), boolInt(result.Degraded), boolInt(result.Unmodeled))
	if err != nil {
		return fmt.Errorf("insert analysis result: %w", err)
	}
	return nil
}

// GetBook returns a book with its chapters loaded.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("book %s not found", id)
		}
		return nil, errors.Wrapf(err, errors.CodePersistence, "get book %s", id)
	}

	book.Chapters, err = s.loadChapters(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodePersistence, "load chapters for %s", id)
	}
	return book, nil
}

// GetBookByFingerprint returns the book with the given content fingerprint,
// without chapters. Used by the skip-existing check.
func (s *Store) GetBookByFingerprint(ctx context.Context, fingerprint string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE fingerprint = ?`, fingerprint)
	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("no book with fingerprint %s", fingerprint)
		}
		return nil, errors.Wrap(err, errors.CodePersistence, "get book by fingerprint")
	}
	return book, nil
}

// ListBooks returns books ordered by ID with cursor pagination, without
// chapters.
func (s *Store) ListBooks(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[domain.Book], error) {
	params.Validate()

	afterID, err := store.DecodeCursor(params.Cursor)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, "decode cursor")
	}

	// Fetch one extra row to detect whether another page exists.
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id > ? ORDER BY id ASC LIMIT ?`,
		afterID, params.Limit+1)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePersistence, "list books")
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodePersistence, "scan book")
		}
		books = append(books, *book)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodePersistence, "iterate books")
	}

	result := &store.PaginatedResult[domain.Book]{Items: books}
	if len(books) > params.Limit {
		result.Items = books[:params.Limit]
		result.HasMore = true
		result.NextCursor = store.EncodeCursor(result.Items[len(result.Items)-1].ID)
	}
	return result, nil
}

// SearchBooks does a substring match across title, authors and chapter
// content. The bleve index serves ranked search; this is the fallback
// surface that works without it.
func (s *Store) SearchBooks(ctx context.Context, query string, limit int) ([]domain.Book, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + escapeLike(query) + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE id IN (
			SELECT id FROM books
			WHERE title LIKE ? ESCAPE '\' OR authors LIKE ? ESCAPE '\'
			UNION
			SELECT book_id FROM chapters WHERE content LIKE ? ESCAPE '\'
		)
		ORDER BY title ASC
		LIMIT ?`, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePersistence, "search books")
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodePersistence, "scan book")
		}
		books = append(books, *book)
	}
	return books, rows.Err()
}

// DeleteBook removes a book; chapters and analysis results cascade.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, errors.CodePersistence, "delete book %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.CodePersistence, "delete book rows affected")
	}
	if n == 0 {
		return errors.NotFoundf("book %s not found", id)
	}

	if !s.IsBulkMode() {
		if err := s.searchIndexer.DeleteBook(ctx, id); err != nil {
			s.logger.Warn("failed to remove book from search index",
				"book_id", id, "error", err)
		}
	}
	return nil
}

// GetCorpus returns the concatenated chapter text of every processed book.
func (s *Store) GetCorpus(ctx context.Context) ([]store.CorpusDoc, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, COALESCE(b.detected_language, ''), GROUP_CONCAT(c.content, char(10) || char(10))
		FROM books b
		JOIN chapters c ON c.book_id = b.id
		WHERE b.status = ?
		GROUP BY b.id
		ORDER BY b.id ASC`, string(domain.StatusProcessed))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePersistence, "load corpus")
	}
	defer rows.Close()

	var docs []store.CorpusDoc
	for rows.Next() {
		var doc store.CorpusDoc
		if err := rows.Scan(&doc.BookID, &doc.Language, &doc.Text); err != nil {
			return nil, errors.Wrap(err, errors.CodePersistence, "scan corpus doc")
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// UpdateTopics records a book's topic vector under the given model version
// and clears its staleness flag.
func (s *Store) UpdateTopics(ctx context.Context, bookID string, vector []float64, modelID string, unmodeled bool) error {
	data, err := json.Marshal(vector)
	if err != nil {
		return errors.Wrap(err, errors.CodePersistence, "marshal topic vector")
	}

	err = s.withRetry(ctx, "update topics", func() error {
		res, err := s.db.ExecContext(ctx, `
			UPDATE books
			SET topic_vector = ?, topic_model_id = ?, topic_stale = 0, unmodeled = ?, updated_at = ?
			WHERE id = ?`,
			string(data), nullString(modelID), boolInt(unmodeled), formatTime(time.Now()), bookID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
	if errors.Is(err, sql.ErrNoRows) {
		return errors.NotFoundf("book %s not found", bookID)
	}
	if err != nil {
		return errors.Wrapf(err, errors.CodePersistence, "update topics for %s", bookID)
	}
	return nil
}

// MarkTopicsStale flags every book whose vector was inferred under a
// different model version than the active one.
func (s *Store) MarkTopicsStale(ctx context.Context, activeModelID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE books SET topic_stale = 1
		WHERE topic_model_id IS NOT NULL AND topic_model_id != ?`, activeModelID)
	if err != nil {
		return errors.Wrap(err, errors.CodePersistence, "mark topics stale")
	}
	return nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
