package store

import (
	"time"

	"github.com/gwlsn/reelshrink/internal/jobs"
)

// Run is one completed batch as recorded in the history.
type Run struct {
	ID         string        `json:"id"`
	InputDir   string        `json:"input_dir"`
	OutputDir  string        `json:"output_dir"`
	Workers    int           `json:"workers"`
	Threads    int           `json:"threads"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Summary    jobs.Summary  `json:"summary"`
	Results    []jobs.Result `json:"results,omitempty"` // input order
}

// Elapsed returns the wall-clock time of the run
func (r *Run) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store defines the persistence interface for run history.
// Implementations must be safe for concurrent use.
type Store interface {
	// SaveRun persists a run and its results. Saving an existing ID
	// replaces it.
	SaveRun(run *Run) error

	// GetRun retrieves a run with its results. Returns nil if not found.
	GetRun(id string) (*Run, error)

	// ListRuns returns up to limit runs, newest first, without results.
	// limit <= 0 returns all runs.
	ListRuns(limit int) ([]*Run, error)

	// Close closes the store and releases resources.
	Close() error
}
