package watcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/bookdex/bookdex-server/internal/errors"
	"github.com/bookdex/bookdex-server/internal/indexer"
)

// Reindexer triggers an indexing run over the library.
type Reindexer interface {
	Reindex(ctx context.Context, libraryPath string, opts indexer.Options) (*indexer.RunResult, error)
}

// Monitor couples a Watcher to the indexing pipeline. Settled e-book
// events are coalesced over a quiet period and answered with a single
// incremental run; fingerprint skipping keeps re-runs cheap.
type Monitor struct {
	watcher     *Watcher
	reindexer   Reindexer
	libraryPath string
	quietPeriod time.Duration
	logger      *slog.Logger
}

// NewMonitor creates a monitor over libraryPath. quietPeriod bounds how
// long after the last event a run is triggered; zero means 5 seconds.
func NewMonitor(w *Watcher, r Reindexer, libraryPath string, quietPeriod time.Duration, logger *slog.Logger) *Monitor {
	if quietPeriod == 0 {
		quietPeriod = 5 * time.Second
	}
	return &Monitor{
		watcher:     w,
		reindexer:   r,
		libraryPath: libraryPath,
		quietPeriod: quietPeriod,
		logger:      logger,
	}
}

// Run watches the library until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.watcher.Watch(m.libraryPath); err != nil {
		return err
	}

	go func() {
		_ = m.watcher.Start(ctx)
	}()

	var quiet *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-m.watcher.Events():
			if !ok {
				return nil
			}
			m.logger.Info("library changed",
				"event", event.Type.String(),
				"path", event.Path,
			)
			if quiet == nil {
				quiet = time.NewTimer(m.quietPeriod)
				fire = quiet.C
			} else {
				if !quiet.Stop() {
					<-quiet.C
				}
				quiet.Reset(m.quietPeriod)
			}

		case err, ok := <-m.watcher.Errors():
			if !ok {
				return nil
			}
			m.logger.Warn("watcher error", "error", err)

		case <-fire:
			quiet = nil
			fire = nil
			m.trigger(ctx)
		}
	}
}

// trigger runs one incremental pass over the library.
func (m *Monitor) trigger(ctx context.Context) {
	result, err := m.reindexer.Reindex(ctx, m.libraryPath, indexer.Options{})
	if err != nil {
		if errors.Is(err, errors.ErrConflict) {
			m.logger.Info("skipping watch-triggered run, another run is active")
			return
		}
		m.logger.Error("watch-triggered run failed", "error", err)
		return
	}

	m.logger.Info("watch-triggered run complete",
		"run_id", result.RunID,
		"succeeded", result.Succeeded,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
}
