package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bookdex/bookdex-server/internal/config"
	"github.com/bookdex/bookdex-server/internal/errors"
	"github.com/bookdex/bookdex-server/internal/genre"
	"github.com/bookdex/bookdex-server/internal/id"
	"github.com/bookdex/bookdex-server/internal/store"
	"github.com/bookdex/bookdex-server/internal/topics"
)

// Indexer orchestrates full library indexing runs.
type Indexer struct {
	cfg        config.IndexingConfig
	store      store.Store
	classifier *genre.Classifier
	modeler    *topics.Modeler
	backupDir  string
	modelDir   string
	logger     *slog.Logger

	source ChapterSource
	walker *Walker
}

// New creates an indexer.
func New(
	cfg config.IndexingConfig,
	st store.Store,
	classifier *genre.Classifier,
	modeler *topics.Modeler,
	backupDir, modelDir string,
	logger *slog.Logger,
) *Indexer {
	return &Indexer{
		cfg:        cfg,
		store:      st,
		classifier: classifier,
		modeler:    modeler,
		backupDir:  backupDir,
		modelDir:   modelDir,
		logger:     logger,
		source:     epubSource{},
		walker:     NewWalker(logger),
	}
}

// Options configures a single run.
type Options struct {
	// Force reprocesses books whose fingerprint is already in the store.
	Force bool

	// OnProgress receives progress snapshots. May be nil.
	OnProgress func(*Progress)
}

// RunResult summarizes a completed run.
type RunResult struct {
	RunID       string
	LibraryPath string
	StartedAt   time.Time
	FinishedAt  time.Time

	Total     int
	Succeeded int
	Failed    int
	Skipped   int

	SuccessRate    float64
	FilesPerMinute float64

	TopicModelID string
	Errors       []IndexError
}

// Run indexes every e-book under libraryPath. Per-book failures are
// recorded and never abort the run; the error return covers run-level
// failures only (inaccessible path, store breakdown, cancellation before
// any work).
func (ix *Indexer) Run(ctx context.Context, libraryPath string, opts Options) (*RunResult, error) {
	if _, err := os.Stat(libraryPath); err != nil {
		return nil, errors.Wrapf(err, errors.CodeValidation, "library path not accessible: %s", libraryPath)
	}

	stats := NewStats()
	tracker := NewProgressTracker(opts.OnProgress)
	result := &RunResult{
		RunID:       id.MustGenerate("run"),
		LibraryPath: libraryPath,
		StartedAt:   time.Now().UTC(),
	}

	ix.logger.Info("indexing run started",
		"run_id", result.RunID,
		"library", libraryPath,
		"workers", ix.cfg.Workers,
		"skip_existing", ix.cfg.SkipExisting && !opts.Force)

	// Suppress per-commit search indexing for the duration of the run.
	if bulk, ok := ix.store.(interface{ SetBulkMode(bool) }); ok {
		bulk.SetBulkMode(true)
		defer bulk.SetBulkMode(false)
	}

	files := ix.discover(ctx, libraryPath, tracker)
	stats.AddDiscovered(len(files))
	result.Total = len(files)

	ix.indexBooks(ctx, files, opts, stats, tracker)

	// Corpus-level topic pass runs even after cancellation stopped
	// dispatching, so committed books get vectors.
	tracker.SetPhase(PhaseTopics)
	modelID, err := ix.runTopicPass(ctx)
	if err != nil {
		ix.logger.Warn("topic modeling pass incomplete", "error", err)
	}
	result.TopicModelID = modelID

	tracker.SetPhase(PhaseBackup)
	if _, err := ix.store.Backup(ctx, ix.backupDir); err != nil {
		ix.logger.Warn("end-of-run backup failed", "error", err)
	}

	result.FinishedAt = time.Now().UTC()
	_, result.Succeeded, result.Failed, result.Skipped = stats.Snapshot()
	result.SuccessRate = stats.SuccessRate()
	result.FilesPerMinute = stats.FilesPerMinute()
	result.Errors = tracker.Get().Errors

	ix.recordRun(ctx, result)
	ix.logSummary(result)
	tracker.SetPhase(PhaseComplete)

	return result, nil
}

// discover walks the library and collects candidate files.
func (ix *Indexer) discover(ctx context.Context, libraryPath string, tracker *ProgressTracker) []WalkResult {
	tracker.SetPhase(PhaseWalking)

	var files []WalkResult
	for wr := range ix.walker.Walk(ctx, libraryPath) {
		if wr.Error != nil {
			tracker.AddError(IndexError{
				Path:  wr.Path,
				Stage: StageDiscover,
				Error: wr.Error.Error(),
				Time:  time.Now(),
			})
			continue
		}
		files = append(files, wr)
		tracker.Increment(wr.Path)
	}

	ix.logger.Info("walk complete", "files", len(files))
	return files
}

// indexBooks runs the per-book pipeline over a bounded worker pool. Books
// are processed in batches of BackupInterval; the batch boundary is the
// quiesce point where the store is snapshotted.
func (ix *Indexer) indexBooks(ctx context.Context, files []WalkResult, opts Options, stats *Stats, tracker *ProgressTracker) {
	tracker.SetPhase(PhaseIndexing)
	tracker.SetTotal(len(files))

	pipe := &pipeline{
		source:     ix.source,
		store:      ix.store,
		classifier: ix.classifier,
		language:   ix.cfg.Language,
		logger:     ix.logger,
	}
	skipExisting := ix.cfg.SkipExisting && !opts.Force

	batchSize := ix.cfg.BackupInterval
	if batchSize <= 0 {
		batchSize = len(files)
	}

	// The checkpoint interval counts committed books, not discovered
	// files; with skip-existing a batch can contribute far fewer commits
	// than its size, so commits accumulate across batch boundaries.
	succeededSinceBackup := 0

	for start := 0; start < len(files); start += batchSize {
		if ctx.Err() != nil {
			return
		}

		end := start + batchSize
		if end > len(files) {
			end = len(files)
		}

		g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
		g.SetLimit(ix.cfg.Workers)

		_, succeededBefore, _, _ := stats.Snapshot()
		for _, file := range files[start:end] {
			// Stop dispatching on cancellation; in-flight books finish.
			if ctx.Err() != nil {
				break
			}

			file := file
			g.Go(func() error {
				bookCtx := gctx
				var cancel context.CancelFunc
				if ix.cfg.BookTimeout > 0 {
					bookCtx, cancel = context.WithTimeout(gctx, ix.cfg.BookTimeout)
					defer cancel()
				}

				outcome, err := pipe.process(bookCtx, file, skipExisting)
				switch {
				case err != nil:
					stats.AddFailed()
					tracker.AddError(IndexError{
						Path:  file.Path,
						Stage: outcome.Stage,
						Error: err.Error(),
						Time:  time.Now(),
					})
					ix.logger.Warn("book failed",
						"path", file.RelPath,
						"stage", outcome.Stage,
						"error", err)
				case outcome.Skipped:
					stats.AddSkipped()
					ix.logger.Debug("book skipped", "path", file.RelPath, "book_id", outcome.BookID)
				default:
					stats.AddSucceeded()
					ix.logger.Debug("book indexed", "path", file.RelPath, "book_id", outcome.BookID)
				}
				tracker.Increment(file.Path)
				return nil
			})
		}
		_ = g.Wait()

		// Pool barrier reached; safe to snapshot.
		_, succeededAfter, _, _ := stats.Snapshot()
		succeededSinceBackup += succeededAfter - succeededBefore
		if succeededSinceBackup >= ix.cfg.BackupInterval && ix.cfg.BackupInterval > 0 && end < len(files) {
			if _, err := ix.store.Backup(ctx, ix.backupDir); err != nil {
				ix.logger.Warn("checkpoint backup failed", "error", err)
			}
			succeededSinceBackup = 0
		}
	}
}

// runTopicPass fits (or refits) the corpus topic model and records a
// vector for every processed book. Returns the active model ID.
func (ix *Indexer) runTopicPass(ctx context.Context) (string, error) {
	corpus, err := ix.store.GetCorpus(ctx)
	if err != nil {
		return "", err
	}
	if len(corpus) == 0 {
		return "", nil
	}

	docs := make([]string, len(corpus))
	for i, doc := range corpus {
		docs[i] = doc.Text
	}
	language := ix.corpusLanguage(corpus)

	model, err := ix.modeler.Fit(docs, language)
	if err != nil {
		// Too few documents to fit; fall back to the last fitted model.
		if !errors.Is(err, errors.ErrModelUnavailable) {
			return "", err
		}
		model, err = ix.store.LatestTopicModel(ctx)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				ix.logger.Info("no topic model available, books stay unmodeled",
					"corpus_size", len(corpus))
				return "", nil
			}
			return "", err
		}
		ix.logger.Info("reusing existing topic model", "model_id", model.ID)
	} else {
		if err := ix.store.SaveTopicModel(ctx, model); err != nil {
			return "", err
		}
		if ix.modelDir != "" {
			if _, err := topics.SaveModel(model, ix.modelDir); err != nil {
				ix.logger.Warn("failed to write model artifact", "error", err)
			}
		}
		ix.logger.Info("fitted topic model",
			"model_id", model.ID, "k", model.K, "docs", model.DocCount)
	}

	for _, doc := range corpus {
		vector := ix.modeler.Infer(model, doc.Text)
		if err := ix.store.UpdateTopics(ctx, doc.BookID, vector, model.ID, false); err != nil {
			ix.logger.Warn("failed to record topic vector",
				"book_id", doc.BookID, "error", err)
		}
	}

	// Books inferred under older models keep their vectors but are
	// flagged stale until reindexed.
	if err := ix.store.MarkTopicsStale(ctx, model.ID); err != nil {
		ix.logger.Warn("failed to flag stale topic vectors", "error", err)
	}

	return model.ID, nil
}

// corpusLanguage picks the language the topic model is fitted in: the
// configured language when fixed, otherwise the majority detected
// language of the corpus.
func (ix *Indexer) corpusLanguage(corpus []store.CorpusDoc) string {
	if ix.cfg.Language != "" && ix.cfg.Language != "auto" {
		return ix.cfg.Language
	}

	counts := make(map[string]int)
	for _, doc := range corpus {
		counts[doc.Language]++
	}
	best := "en"
	bestCount := 0
	for lang, count := range counts {
		if lang != "" && count > bestCount {
			best, bestCount = lang, count
		}
	}
	return best
}

func (ix *Indexer) recordRun(ctx context.Context, result *RunResult) {
	run := &store.RunRecord{
		ID:             result.RunID,
		LibraryPath:    result.LibraryPath,
		StartedAt:      result.StartedAt,
		FinishedAt:     result.FinishedAt,
		Total:          result.Total,
		Succeeded:      result.Succeeded,
		Failed:         result.Failed,
		Skipped:        result.Skipped,
		SuccessRate:    result.SuccessRate,
		FilesPerMinute: result.FilesPerMinute,
	}
	if err := ix.store.RecordRun(ctx, run); err != nil {
		ix.logger.Warn("failed to record run checkpoint", "error", err)
	}
}

func (ix *Indexer) logSummary(result *RunResult) {
	ix.logger.Info("indexing run complete",
		"run_id", result.RunID,
		"duration", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond),
		"total", result.Total,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"success_rate", fmt.Sprintf("%.1f%%", result.SuccessRate*100),
		"files_per_minute", fmt.Sprintf("%.1f", result.FilesPerMinute))

	for _, e := range result.Errors {
		ix.logger.Warn("failed book",
			"path", e.Path,
			"stage", e.Stage,
			"error", e.Error)
	}
}
