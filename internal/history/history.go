// Package history is the SQLite data access layer for persisted run
// statistics. Recording is optional; the driver works without a store.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the run-history database.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the history tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS runs (
  id               INTEGER PRIMARY KEY,
  started_at       TIMESTAMP NOT NULL,
  finished_at      TIMESTAMP,
  roots_discovered INTEGER NOT NULL DEFAULT 0,
  roots_processed  INTEGER NOT NULL DEFAULT 0,
  roots_skipped    INTEGER NOT NULL DEFAULT 0,
  findings         INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_roots (
  id        INTEGER PRIMARY KEY,
  run_id    INTEGER NOT NULL REFERENCES runs(id),
  path      TEXT NOT NULL,
  name      TEXT NOT NULL,
  files     INTEGER NOT NULL DEFAULT 0,
  findings  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_run_roots_run ON run_roots(run_id);
`

// Run is one recorded survey run.
type Run struct {
	ID              int64
	StartedAt       time.Time
	FinishedAt      *time.Time
	RootsDiscovered int
	RootsProcessed  int
	RootsSkipped    int
	Findings        int
}

// RootRecord is the per-root slice of a run.
type RootRecord struct {
	Path     string
	Name     string
	Files    int
	Findings int
}

// BeginRun inserts a new run row and returns its ID.
func (s *Store) BeginRun(startedAt time.Time, discovered int) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO runs (started_at, roots_discovered) VALUES (?, ?)`,
		startedAt, discovered,
	)
	if err != nil {
		return 0, fmt.Errorf("begin run: %w", err)
	}
	return res.LastInsertId()
}

// RecordRoot appends a per-root record to a run.
func (s *Store) RecordRoot(runID int64, rec RootRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO run_roots (run_id, path, name, files, findings) VALUES (?, ?, ?, ?, ?)`,
		runID, rec.Path, rec.Name, rec.Files, rec.Findings,
	)
	if err != nil {
		return fmt.Errorf("record root: %w", err)
	}
	return nil
}

// FinishRun stamps a run with its final counters.
func (s *Store) FinishRun(runID int64, finishedAt time.Time, processed, skipped, findings int) error {
	_, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, roots_processed = ?, roots_skipped = ?, findings = ? WHERE id = ?`,
		finishedAt, processed, skipped, findings, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, started_at, finished_at, roots_discovered, roots_processed, roots_skipped, findings
		 FROM runs ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt,
			&r.RootsDiscovered, &r.RootsProcessed, &r.RootsSkipped, &r.Findings); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RootsForRun returns the per-root records of one run in insertion order.
func (s *Store) RootsForRun(runID int64) ([]RootRecord, error) {
	rows, err := s.db.Query(
		`SELECT path, name, files, findings FROM run_roots WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list run roots: %w", err)
	}
	defer rows.Close()

	var recs []RootRecord
	for rows.Next() {
		var rec RootRecord
		if err := rows.Scan(&rec.Path, &rec.Name, &rec.Files, &rec.Findings); err != nil {
			return nil, fmt.Errorf("scan run root: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
