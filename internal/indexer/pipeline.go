package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/bookdex/bookdex-server/internal/analysis"
	"github.com/bookdex/bookdex-server/internal/domain"
	"github.com/bookdex/bookdex-server/internal/errors"
	"github.com/bookdex/bookdex-server/internal/extract"
	"github.com/bookdex/bookdex-server/internal/genre"
	"github.com/bookdex/bookdex-server/internal/id"
	"github.com/bookdex/bookdex-server/internal/normalize"
	"github.com/bookdex/bookdex-server/internal/store"
)

// pipeline runs one book end-to-end: read, extract, analyze, classify,
// persist. Topic inference happens in a separate corpus-level pass.
type pipeline struct {
	source     ChapterSource
	store      store.Store
	classifier *genre.Classifier
	language   string // "auto" or a fixed language code
	logger     *slog.Logger
}

// bookOutcome is what one pipeline invocation produced.
type bookOutcome struct {
	Skipped bool
	Stage   Stage
	BookID  string
}

// process runs the pipeline for one file. A returned error carries the
// stage it failed in via the outcome. Failed books are still committed so
// the store records the failure.
func (p *pipeline) process(ctx context.Context, file WalkResult, skipExisting bool) (bookOutcome, error) {
	outcome := bookOutcome{Stage: StageDiscover}

	fingerprint, err := fingerprintFile(file.Path)
	if err != nil {
		return outcome, errors.Wrapf(err, errors.CodeContainerRead, "fingerprint %s", file.Path)
	}

	existing, err := p.store.GetBookByFingerprint(ctx, fingerprint)
	switch {
	case err == nil && skipExisting:
		outcome.Skipped = true
		outcome.BookID = existing.ID
		return outcome, nil
	case err != nil && !errors.Is(err, errors.ErrNotFound):
		return outcome, err
	}

	now := time.Now().UTC()
	book := &domain.Book{
		ID:          id.MustGenerate("bk"),
		Fingerprint: fingerprint,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExtractedAt: now,
		Path:        file.Path,
		FileSize:    file.Size,
		Status:      domain.StatusPending,
	}
	if existing != nil {
		// Same content seen before; replace in place.
		book.ID = existing.ID
		book.CreatedAt = existing.CreatedAt
	}
	outcome.BookID = book.ID

	metrics, classification, err := p.runStages(ctx, file, book)
	if err != nil {
		outcome.Stage = Stage(book.FailedStage)
		// The per-book deadline may already have expired; the failure
		// record must still commit.
		if commitErr := p.store.CommitBook(context.WithoutCancel(ctx), book, nil); commitErr != nil {
			p.logger.Error("failed to record failed book",
				"path", file.Path, "error", commitErr)
		}
		return outcome, err
	}

	outcome.Stage = StagePersist
	result := &domain.AnalysisResult{
		ID:          id.MustGenerate("ar"),
		BookID:      book.ID,
		CreatedAt:   time.Now().UTC(),
		Source:      classification.Source,
		GenreScores: classification.All,
		Complexity:  metrics,
		Degraded:    classification.Degraded,
		Unmodeled:   true, // topic inference happens in the corpus pass
	}
	if err := p.store.CommitBook(ctx, book, result); err != nil {
		book.MarkFailed(string(StagePersist), err)
		return outcome, err
	}

	return outcome, nil
}

// runStages fills the book in place and returns the computed analysis.
// On failure the book carries the failed stage and cause.
func (p *pipeline) runStages(ctx context.Context, file WalkResult, book *domain.Book) (domain.ComplexityMetrics, *genre.Result, error) {
	var metrics domain.ComplexityMetrics

	if err := stageDeadline(ctx); err != nil {
		book.MarkFailed(string(StageRead), err)
		return metrics, nil, err
	}

	parsed, err := p.source.ReadBook(file.Path)
	if err != nil {
		book.MarkFailed(string(StageRead), err)
		return metrics, nil, err
	}

	book.Title = normalize.Clean(parsed.Metadata.Title)
	book.Authors = parsed.Metadata.Authors
	book.Language = parsed.Metadata.Language
	if code := normalize.LanguageCode(parsed.Metadata.Language); code != "" {
		book.Language = code
	}
	book.Publisher = parsed.Metadata.Publisher
	book.PublishDate = parsed.Metadata.PublishDate
	book.ISBN = parsed.Metadata.ISBN
	book.Identifier = parsed.Metadata.Identifier
	book.Description = parsed.Metadata.Description
	book.Subjects = parsed.Metadata.Subjects

	if err := stageDeadline(ctx); err != nil {
		book.MarkFailed(string(StageExtract), err)
		return metrics, nil, err
	}

	doc, err := extract.Extract(parsed.Chapters)
	if err != nil {
		book.MarkFailed(string(StageExtract), err)
		return metrics, nil, err
	}
	book.Chapters = doc.Chapters
	book.WordCount = doc.WordCount

	if err := stageDeadline(ctx); err != nil {
		book.MarkFailed(string(StageAnalyze), err)
		return metrics, nil, err
	}

	text := doc.FullText()
	language := p.language
	if language == "" || language == "auto" {
		language = analysis.DetectLanguage(text)
	}
	book.DetectedLanguage = language

	metrics = analysis.New(language).Analyze(text)
	book.ComplexityScore = metrics.ComplexityScore
	book.ReadingLevel = metrics.ReadingLevel

	if err := stageDeadline(ctx); err != nil {
		book.MarkFailed(string(StageClassify), err)
		return metrics, nil, err
	}

	classification := p.classifier.Classify(book.Title, text, book.Subjects, language)
	book.PrimaryGenre = classification.Primary.Genre
	book.PrimaryScore = classification.Primary.Confidence
	book.SecondaryGenres = classification.Secondary

	book.Status = domain.StatusProcessed
	return metrics, &classification, nil
}

// stageDeadline maps an expired per-book context to the timeout taxonomy.
func stageDeadline(ctx context.Context) error {
	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errors.Timeout("book processing timed out")
		}
		return ctx.Err()
	default:
		return nil
	}
}

// fingerprintFile computes the SHA-256 of the file content. Identity
// follows content, so renamed or moved copies resolve to the same book.
func fingerprintFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
