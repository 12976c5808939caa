package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdex/bookdex-server/internal/indexer"
)

type fakeReindexer struct {
	mu    sync.Mutex
	runs  int
	paths []string
}

func (f *fakeReindexer) Reindex(_ context.Context, libraryPath string, _ indexer.Options) (*indexer.RunResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	f.paths = append(f.paths, libraryPath)
	return &indexer.RunResult{RunID: "run-test"}, nil
}

func (f *fakeReindexer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

func TestMonitorCoalescesEventsIntoOneRun(t *testing.T) {
	dir := t.TempDir()

	w, err := New(testLogger(), Options{SettleDelay: 30 * time.Millisecond})
	require.NoError(t, err)

	reindexer := &fakeReindexer{}
	monitor := NewMonitor(w, reindexer, dir, 200*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = monitor.Run(ctx)
	}()

	// Drop several books in quick succession; one run should cover them.
	for _, name := range []string{"one.epub", "two.epub", "three.epub"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("epub"), 0o644))
		time.Sleep(50 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return reindexer.count() >= 1
	}, 5*time.Second, 25*time.Millisecond)

	// The quiet period has passed; no further runs without new events.
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, 1, reindexer.count())

	reindexer.mu.Lock()
	assert.Equal(t, dir, reindexer.paths[0])
	reindexer.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop on cancel")
	}
	_ = w.Stop()
}
