// Package main provides a one-shot CLI that indexes an e-book library
// without starting the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookdex/bookdex-server/internal/config"
	"github.com/bookdex/bookdex-server/internal/genre"
	"github.com/bookdex/bookdex-server/internal/indexer"
	"github.com/bookdex/bookdex-server/internal/logger"
	"github.com/bookdex/bookdex-server/internal/store/sqlite"
	"github.com/bookdex/bookdex-server/internal/topics"
)

func main() {
	// Registered before config.LoadConfig calls flag.Parse.
	force := flag.Bool("force", false, "Reprocess books already in the store")

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Indexing.LibraryPath == "" {
		fmt.Fprintln(os.Stderr, "No library path: set --library-path or LIBRARY_PATH")
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	if err := os.MkdirAll(cfg.Storage.BasePath, 0o750); err != nil {
		log.Fatal("failed to create data directory", "path", cfg.Storage.BasePath, "error", err)
	}

	st, err := sqlite.Open(cfg.Storage.DBPath, log.Logger)
	if err != nil {
		log.Fatal("failed to open store", "path", cfg.Storage.DBPath, "error", err)
	}
	defer st.Close()

	classifier := genre.NewClassifier(cfg.Genre, log.Logger)
	modeler := topics.New(cfg.Topics, log.Logger)

	ix := indexer.New(
		cfg.Indexing,
		st,
		classifier,
		modeler,
		cfg.Storage.BackupPath,
		cfg.Storage.ModelPath,
		log.Logger,
	)

	// SIGINT stops dispatching new books; in-flight books still commit.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := ix.Run(ctx, cfg.Indexing.LibraryPath, indexer.Options{
		Force: *force,
		OnProgress: func(p *indexer.Progress) {
			if p.Phase == indexer.PhaseIndexing && p.Total > 0 {
				fmt.Printf("\r[%s] %d/%d %s", p.Phase, p.Current, p.Total, p.CurrentItem)
			} else {
				fmt.Printf("\r[%s]", p.Phase)
			}
		},
	})
	fmt.Println()
	if err != nil {
		log.Fatal("indexing run failed", "error", err)
	}

	fmt.Printf("Run %s finished in %s\n", result.RunID, result.FinishedAt.Sub(result.StartedAt).Round(time.Second))
	fmt.Printf("  discovered: %d\n", result.Total)
	fmt.Printf("  indexed:    %d\n", result.Succeeded)
	fmt.Printf("  skipped:    %d\n", result.Skipped)
	fmt.Printf("  failed:     %d\n", result.Failed)
	if result.TopicModelID != "" {
		fmt.Printf("  topic model: %s\n", result.TopicModelID)
	}
	for _, indexErr := range result.Errors {
		fmt.Printf("  FAILED %s (%s): %s\n", indexErr.Path, indexErr.Stage, indexErr.Error)
	}

	if result.Failed > 0 {
		os.Exit(1)
	}
}
