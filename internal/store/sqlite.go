package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gwlsn/reelshrink/internal/jobs"
	_ "modernc.org/sqlite"
)

const schemaVersion = 1

// timeFormat is fixed-width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	input_dir TEXT NOT NULL,
	output_dir TEXT NOT NULL,
	workers INTEGER NOT NULL DEFAULT 0,
	threads INTEGER NOT NULL DEFAULT 0,
	total INTEGER NOT NULL DEFAULT 0,
	succeeded INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	original_size INTEGER NOT NULL DEFAULT 0,
	mp4_size INTEGER NOT NULL DEFAULT 0,
	webm_size INTEGER NOT NULL DEFAULT 0,
	webm_retries INTEGER NOT NULL DEFAULT 0,
	started_at TEXT NOT NULL,
	finished_at TEXT
);

CREATE TABLE IF NOT EXISTS results (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	filename TEXT NOT NULL,
	source TEXT NOT NULL,
	name TEXT NOT NULL,
	status TEXT NOT NULL,
	stage TEXT NOT NULL,
	original_size INTEGER NOT NULL DEFAULT 0,
	mp4_size INTEGER,
	webm_size INTEGER,
	duration REAL,
	webm_attempts INTEGER NOT NULL DEFAULT 0,
	error TEXT,
	PRIMARY KEY (run_id, position)
);

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL,
	applied_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_results_status ON results(status);
`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	mu   sync.RWMutex // Protects concurrent access
	path string
}

// NewSQLiteStore creates a new SQLite-backed store.
// The database file is created if it doesn't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			db.Close()
			return nil, fmt.Errorf("insert schema version: %w", err)
		}
	case err != nil:
		db.Close()
		return nil, fmt.Errorf("check schema version: %w", err)
	case version > schemaVersion:
		db.Close()
		return nil, fmt.Errorf("database schema v%d is newer than supported v%d", version, schemaVersion)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

// SaveRun writes the run row and all results in one transaction.
func (s *SQLiteStore) SaveRun(run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	sum := run.Summary
	_, err = tx.Exec(`
		INSERT INTO runs (
			id, input_dir, output_dir, workers, threads,
			total, succeeded, failed, original_size, mp4_size, webm_size, webm_retries,
			started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			input_dir = excluded.input_dir,
			output_dir = excluded.output_dir,
			workers = excluded.workers,
			threads = excluded.threads,
			total = excluded.total,
			succeeded = excluded.succeeded,
			failed = excluded.failed,
			original_size = excluded.original_size,
			mp4_size = excluded.mp4_size,
			webm_size = excluded.webm_size,
			webm_retries = excluded.webm_retries,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at
	`,
		run.ID, run.InputDir, run.OutputDir, run.Workers, run.Threads,
		sum.Total, sum.Succeeded, sum.Failed, sum.OriginalSize, sum.MP4Size, sum.WebMSize, sum.WebMRetries,
		formatTime(run.StartedAt), formatTimePtr(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	// A re-saved run gets its results rewritten in full.
	if _, err := tx.Exec("DELETE FROM results WHERE run_id = ?", run.ID); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO results (
			run_id, position, filename, source, name, status, stage,
			original_size, mp4_size, webm_size, duration, webm_attempts, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range run.Results {
		_, err := stmt.Exec(
			run.ID, i, r.Filename, r.Source, r.Name, string(r.Status), string(r.Stage),
			r.OriginalSize, nullInt64(r.MP4Size), nullInt64(r.WebMSize), nullFloat64(r.Duration),
			r.WebMAttempts, nullString(r.Error),
		)
		if err != nil {
			return fmt.Errorf("save result %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run and its results by ID.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, input_dir, output_dir, workers, threads,
			total, succeeded, failed, original_size, mp4_size, webm_size, webm_retries,
			started_at, finished_at
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT filename, source, name, status, stage,
			original_size, mp4_size, webm_size, duration, webm_attempts, error
		FROM results WHERE run_id = ? ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		run.Results = append(run.Results, r)
		if !r.OK() {
			run.Summary.Failures = append(run.Summary.Failures, jobs.Failure{Filename: r.Filename, Error: r.Error})
		}
	}

	return run, rows.Err()
}

// ListRuns returns the most recent runs first.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.Query(`
		SELECT id, input_dir, output_dir, workers, threads,
			total, succeeded, failed, original_size, mp4_size, webm_size, webm_retries,
			started_at, finished_at
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Helper functions for scanning rows

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var startedAt string
	var finishedAt sql.NullString

	err := row.Scan(
		&run.ID, &run.InputDir, &run.OutputDir, &run.Workers, &run.Threads,
		&run.Summary.Total, &run.Summary.Succeeded, &run.Summary.Failed,
		&run.Summary.OriginalSize, &run.Summary.MP4Size, &run.Summary.WebMSize, &run.Summary.WebMRetries,
		&startedAt, &finishedAt,
	)
	if err != nil {
		return nil, err
	}

	run.StartedAt = parseTime(startedAt)
	run.FinishedAt = parseTime(finishedAt.String)
	return &run, nil
}

func scanResult(row rowScanner) (jobs.Result, error) {
	var r jobs.Result
	var status, stage string
	var mp4Size, webmSize sql.NullInt64
	var duration sql.NullFloat64
	var errStr sql.NullString

	err := row.Scan(
		&r.Filename, &r.Source, &r.Name, &status, &stage,
		&r.OriginalSize, &mp4Size, &webmSize, &duration, &r.WebMAttempts, &errStr,
	)
	if err != nil {
		return jobs.Result{}, err
	}

	r.Status = jobs.Status(status)
	r.Stage = jobs.Stage(stage)
	r.MP4Size = mp4Size.Int64
	r.WebMSize = webmSize.Int64
	r.Duration = duration.Float64
	r.Error = errStr.String
	return r, nil
}

// Helper functions for SQL values

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullInt64(i int64) interface{} {
	if i == 0 {
		return nil
	}
	return i
}

func nullFloat64(f float64) interface{} {
	if f == 0 {
		return nil
	}
	return f
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeFormat)
}

func formatTimePtr(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(timeFormat, s)
	return t
}
