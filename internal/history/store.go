// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists export runs in a SQLite ledger. Recording is
// opt-in: with no history directory configured, nothing here runs and an
// export leaves only the PNGs behind.
// Implements: prd003-history (R1-R4);
//
//	docs/ARCHITECTURE § History.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/spritebake/internal/export"
	"github.com/pdiddy/spritebake/pkg/types"
)

const dbFile = "spritebake.db"

// Store manages the run ledger SQLite database.
type Store struct {
	db      *sql.DB
	maxRuns int
}

// Run is one recorded batch export.
type Run struct {
	ID        int64     `json:"id"`
	Directory string    `json:"directory"`
	Tool      string    `json:"tool"`
	Attempted int       `json:"attempted"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Aborted   bool      `json:"aborted"`
	StartedAt time.Time `json:"started_at"`
}

// FileRecord is one file's outcome within a recorded run.
type FileRecord struct {
	RunID  int64              `json:"run_id"`
	Source string             `json:"source"`
	Dest   string             `json:"dest"`
	Status types.ExportStatus `json:"status"`
	Detail string             `json:"detail,omitempty"`
}

// NewStore opens or creates the ledger database at cfg.Dir/spritebake.db,
// creating the schema if it does not exist (R1.2).
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("history directory not configured")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxRuns := cfg.MaxRuns
	if maxRuns <= 0 {
		maxRuns = 20
	}

	s := &Store{db: db, maxRuns: maxRuns}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			directory TEXT NOT NULL,
			tool TEXT NOT NULL,
			attempted INTEGER NOT NULL,
			succeeded INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			aborted INTEGER NOT NULL DEFAULT 0,
			started_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			source TEXT NOT NULL,
			dest TEXT NOT NULL,
			status TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_files_run ON files(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun inserts a run and its per-file outcomes in one transaction,
// returning the new run ID.
func (s *Store) RecordRun(ctx context.Context, run Run, outcomes []export.FileOutcome) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	startedAt := run.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (directory, tool, attempted, succeeded, failed, aborted, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.Directory, run.Tool, run.Attempted, run.Succeeded, run.Failed,
		run.Aborted, startedAt.Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	for _, o := range outcomes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO files (run_id, source, dest, status, detail)
			 VALUES (?, ?, ?, ?, ?)`,
			runID, o.Job.Source, o.Job.Dest, string(o.Status), o.Detail); err != nil {
			return 0, fmt.Errorf("inserting file outcome for %s: %w", o.Job.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// Runs lists recorded runs, newest first. A limit of 0 uses the configured
// default.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = s.maxRuns
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, directory, tool, attempted, succeeded, failed, aborted, started_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt string
		if err := rows.Scan(&r.ID, &r.Directory, &r.Tool, &r.Attempted,
			&r.Succeeded, &r.Failed, &r.Aborted, &startedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, startedAt); err == nil {
			r.StartedAt = ts
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Files lists the per-file outcomes for one run, in recorded order.
func (s *Store) Files(ctx context.Context, runID int64) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, source, dest, status, detail
		 FROM files WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying files for run %d: %w", runID, err)
	}
	defer rows.Close()

	var records []FileRecord
	for rows.Next() {
		var f FileRecord
		var status string
		if err := rows.Scan(&f.RunID, &f.Source, &f.Dest, &status, &f.Detail); err != nil {
			return nil, fmt.Errorf("scanning file record: %w", err)
		}
		f.Status = types.ExportStatus(status)
		records = append(records, f)
	}
	return records, rows.Err()
}

// Prune deletes all but the newest keep runs, cascading their file rows.
// Returns the number of runs removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY id DESC LIMIT ?)`,
		keep)
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned runs: %w", err)
	}
	return deleted, nil
}
