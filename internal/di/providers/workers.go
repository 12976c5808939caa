package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/bookdex/bookdex-server/internal/config"
	"github.com/bookdex/bookdex-server/internal/logger"
	"github.com/bookdex/bookdex-server/internal/service"
	"github.com/bookdex/bookdex-server/internal/watcher"
)

// LibraryWatcherHandle wraps the library watcher with shutdown capability.
type LibraryWatcherHandle struct {
	watcher *watcher.Watcher
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *LibraryWatcherHandle) Shutdown() error {
	if h.watcher == nil {
		return nil
	}
	h.cancel()
	return h.watcher.Stop()
}

// ProvideLibraryWatcher provides the library watcher. Without a configured
// library path the watcher stays disabled; indexing is then triggered only
// via the API.
func ProvideLibraryWatcher(i do.Injector) (*LibraryWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	library := do.MustInvoke[*service.LibraryService](i)

	if cfg.Indexing.LibraryPath == "" {
		log.Info("No library path configured, file watching disabled")
		return &LibraryWatcherHandle{}, nil
	}

	w, err := watcher.New(log.Logger, watcher.Options{IgnoreHidden: true})
	if err != nil {
		return nil, err
	}

	monitor := watcher.NewMonitor(w, library, cfg.Indexing.LibraryPath, 0, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := monitor.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("library watcher stopped", "error", err)
		}
	}()

	log.Info("Library watcher started", "path", cfg.Indexing.LibraryPath)

	return &LibraryWatcherHandle{
		watcher: w,
		cancel:  cancel,
	}, nil
}
