// Package indexer orchestrates library indexing runs: filesystem discovery,
// the per-book extraction and analysis pipeline, a bounded worker pool,
// periodic store backups and the end-of-run topic modeling pass.
package indexer

import (
	"sync"
	"time"
)

// Stage names a step of the per-book pipeline. Failed books record the
// stage they died in.
type Stage string

// Pipeline stages, in execution order.
const (
	StageDiscover Stage = "discover"
	StageRead     Stage = "read"
	StageExtract  Stage = "extract"
	StageAnalyze  Stage = "analyze"
	StageClassify Stage = "classify"
	StageTopics   Stage = "topics"
	StagePersist  Stage = "persist"
)

// Phase is the coarse run phase reported through progress callbacks.
type Phase string

// Run phases.
const (
	PhaseWalking  Phase = "walking"
	PhaseIndexing Phase = "indexing"
	PhaseTopics   Phase = "topics"
	PhaseBackup   Phase = "backup"
	PhaseComplete Phase = "complete"
)

// IndexError records one per-book failure for the end-of-run summary.
type IndexError struct {
	Path  string    `json:"path"`
	Stage Stage     `json:"stage"`
	Error string    `json:"error"`
	Time  time.Time `json:"time"`
}

// Progress is a snapshot of run progress handed to callbacks.
type Progress struct {
	Phase       Phase        `json:"phase"`
	Current     int          `json:"current"`
	Total       int          `json:"total"`
	CurrentItem string       `json:"current_item,omitempty"`
	Errors      []IndexError `json:"errors,omitempty"`
}

// Stats accumulates run counters. Safe for concurrent use by workers.
type Stats struct {
	mu sync.Mutex

	startedAt time.Time

	Total     int
	Succeeded int
	Failed    int
	Skipped   int
}

// NewStats creates a stats accumulator with the clock started.
func NewStats() *Stats {
	return &Stats{startedAt: time.Now()}
}

func (s *Stats) AddDiscovered(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Total += n
}

func (s *Stats) AddSucceeded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Succeeded++
}

func (s *Stats) AddFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failed++
}

func (s *Stats) AddSkipped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Skipped++
}

// Snapshot returns a consistent copy of the counters.
func (s *Stats) Snapshot() (total, succeeded, failed, skipped int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Total, s.Succeeded, s.Failed, s.Skipped
}

// Elapsed returns the time since the run started.
func (s *Stats) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.startedAt)
}

// SuccessRate returns succeeded / attempted. Skipped books do not count
// as attempts.
func (s *Stats) SuccessRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempted := s.Succeeded + s.Failed
	if attempted == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(attempted)
}

// FilesPerMinute returns the processing rate over the whole run.
func (s *Stats) FilesPerMinute() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := time.Since(s.startedAt).Minutes()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.Succeeded+s.Failed+s.Skipped) / elapsed
}
