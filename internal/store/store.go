// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists curation results and run summaries in SQLite
// and serves queries over past runs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jcordovilla/obsidian-curator-sub000/pkg/types"
)

const dbFile = "curation.db"

const defaultMaxResults = 50

// Store manages the curation results SQLite database.
type Store struct {
	db         *sql.DB
	resultsDir string
	maxResults int
}

// NewStore opens or creates the results database at
// resultsDir/curation.db, creating the schema if it does not exist.
func NewStore(resultsDir string) (*Store, error) {
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results directory: %w", err)
	}

	dbPath := filepath.Join(resultsDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:         db,
		resultsDir: resultsDir,
		maxResults: defaultMaxResults,
	}

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
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			model TEXT,
			analyzed INTEGER NOT NULL DEFAULT 0,
			accepted INTEGER NOT NULL DEFAULT 0,
			rejected INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			note_id TEXT NOT NULL,
			run_id TEXT NOT NULL REFERENCES runs(id),
			accepted INTEGER NOT NULL,
			composite REAL,
			scores TEXT,
			themes TEXT,
			unresolved TEXT,
			rationale TEXT,
			justification TEXT,
			model TEXT,
			attempts INTEGER,
			analyzed_at TEXT,
			UNIQUE(run_id, note_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_note_id ON results(note_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run_id ON results(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='results_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE results_fts USING fts5(rationale, justification, content=results, content_rowid=rowid)`,
			`CREATE TRIGGER results_ai AFTER INSERT ON results BEGIN
				INSERT INTO results_fts(rowid, rationale, justification) VALUES (new.rowid, new.rationale, new.justification);
			END`,
			`CREATE TRIGGER results_ad AFTER DELETE ON results BEGIN
				INSERT INTO results_fts(results_fts, rowid, rationale, justification) VALUES('delete', old.rowid, old.rationale, old.justification);
			END`,
			`CREATE TRIGGER results_au AFTER UPDATE ON results BEGIN
				INSERT INTO results_fts(results_fts, rowid, rationale, justification) VALUES('delete', old.rowid, old.rationale, old.justification);
				INSERT INTO results_fts(rowid, rationale, justification) VALUES (new.rowid, new.rationale, new.justification);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// RunSummary is the stored record of one batch run.
type RunSummary struct {
	ID        string    `json:"id" yaml:"id"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	Model     string    `json:"model,omitempty" yaml:"model,omitempty"`
	Analyzed  int       `json:"analyzed" yaml:"analyzed"`
	Accepted  int       `json:"accepted" yaml:"accepted"`
	Rejected  int       `json:"rejected" yaml:"rejected"`
	Skipped   int       `json:"skipped" yaml:"skipped"`
}

// SaveRun persists a run summary and its curation results in one
// transaction. Results are append-only: a re-analysis shows up as a new
// run, never as an edit of a stored result.
func (s *Store) SaveRun(ctx context.Context, run RunSummary, results []types.CurationResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, model, analyzed, accepted, rejected, skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(time.RFC3339Nano), run.Model,
		run.Analyzed, run.Accepted, run.Rejected, run.Skipped,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (note_id, run_id, accepted, composite, scores, themes,
			unresolved, rationale, justification, model, attempts, analyzed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		scoresJSON, _ := json.Marshal(r.Scores)
		themesJSON, _ := json.Marshal(r.Themes)
		unresolvedJSON, _ := json.Marshal(r.Unresolved)
		_, err := stmt.ExecContext(ctx,
			r.NoteID, run.ID, boolToInt(r.Accepted), r.Composite,
			string(scoresJSON), string(themesJSON), string(unresolvedJSON),
			r.Rationale, r.Justification, r.Model, r.Attempts,
			r.AnalyzedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("inserting result for %s: %w", r.NoteID, err)
		}
	}

	return tx.Commit()
}

// Runs lists stored run summaries, most recent first.
func (s *Store) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, model, analyzed, accepted, rejected, skipped
		 FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			r       RunSummary
			started string
			model   sql.NullString
		)
		if err := rows.Scan(&r.ID, &started, &model, &r.Analyzed, &r.Accepted, &r.Rejected, &r.Skipped); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if model.Valid {
			r.Model = model.String
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// LatestRunID returns the ID of the most recent run, or an error when
// no runs are stored.
func (s *Store) LatestRunID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM runs ORDER BY started_at DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("no runs stored")
	}
	if err != nil {
		return "", fmt.Errorf("looking up latest run: %w", err)
	}
	return id, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
