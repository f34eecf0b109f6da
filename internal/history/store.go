// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite ledger of conversion runs and the outcome
// of every archive in them. The ledger is informational: nothing reads it
// to decide what to convert.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/comicpdf/pkg/types"
)

// DefaultPath is the database location used when none is configured.
const DefaultPath = ".comicpdf/history.db"

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned by Run for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Run summarizes one recorded batch.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	InputDir   string    `json:"input_dir" yaml:"input_dir"`
	OutputDir  string    `json:"output_dir" yaml:"output_dir"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Converted  int       `json:"converted" yaml:"converted"`
	Empty      int       `json:"empty" yaml:"empty"`
	Failed     int       `json:"failed" yaml:"failed"`
}

// Total returns the number of archives in the run.
func (r Run) Total() int {
	return r.Converted + r.Empty + r.Failed
}

// Open opens or creates the history database at path, creating its parent
// directory and schema as needed.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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
			input_dir TEXT,
			output_dir TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			converted INTEGER NOT NULL,
			empty INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS archives (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			archive TEXT NOT NULL,
			output TEXT,
			kind TEXT NOT NULL,
			status TEXT NOT NULL,
			stage TEXT NOT NULL,
			pages INTEGER NOT NULL,
			error TEXT,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_archives_run_id ON archives(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_archives_archive ON archives(archive)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a batch result and all of its archive outcomes in one
// transaction.
func (s *Store) Record(ctx context.Context, result types.BatchResult) error {
	if result.RunID == "" {
		return errors.New("recording run: empty run ID")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, input_dir, output_dir, started_at, finished_at, converted, empty, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, result.InputDir, result.OutputDir,
		formatTime(result.StartedAt), formatTime(result.FinishedAt),
		result.Converted(), result.Empty(), result.Failed(),
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", result.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO archives (run_id, seq, archive, output, kind, status, stage, pages, error, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing archive insert: %w", err)
	}
	defer stmt.Close()

	for i, a := range result.Archives {
		if _, err := stmt.ExecContext(ctx,
			result.RunID, i, a.Archive, a.Output, string(a.Kind), string(a.Status),
			string(a.Stage), a.Pages, a.Error, a.Duration.Milliseconds(),
		); err != nil {
			return fmt.Errorf("inserting archive %s: %w", a.Archive, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run %s: %w", result.RunID, err)
	}
	return nil
}

// Runs returns the most recent runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, input_dir, output_dir, started_at, finished_at, converted, empty, failed
		FROM runs ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Run returns the run with the given ID.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, input_dir, output_dir, started_at, finished_at, converted, empty, failed
		 FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// Archives returns the archive outcomes of a run in the order they were
// converted.
func (s *Store) Archives(ctx context.Context, runID string) ([]types.ArchiveResult, error) {
	return s.queryArchives(ctx,
		`SELECT archive, output, kind, status, stage, pages, error, duration_ms
		 FROM archives WHERE run_id = ? ORDER BY seq`, runID)
}

// ArchiveHistory returns every recorded outcome for one archive path,
// oldest first.
func (s *Store) ArchiveHistory(ctx context.Context, archivePath string) ([]types.ArchiveResult, error) {
	return s.queryArchives(ctx,
		`SELECT a.archive, a.output, a.kind, a.status, a.stage, a.pages, a.error, a.duration_ms
		 FROM archives a JOIN runs r ON r.id = a.run_id
		 WHERE a.archive = ? ORDER BY r.started_at, a.rowid`, archivePath)
}

func (s *Store) queryArchives(ctx context.Context, query, arg string) ([]types.ArchiveResult, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("querying archives: %w", err)
	}
	defer rows.Close()

	var out []types.ArchiveResult
	for rows.Next() {
		var (
			a                   types.ArchiveResult
			output, errMsg      sql.NullString
			kind, status, stage string
			durationMS          int64
		)
		if err := rows.Scan(&a.Archive, &output, &kind, &status, &stage, &a.Pages, &errMsg, &durationMS); err != nil {
			return nil, fmt.Errorf("scanning archive row: %w", err)
		}
		a.Output = output.String
		a.Kind = types.ArchiveKind(kind)
		a.Status = types.ConversionStatus(status)
		a.Stage = types.Stage(stage)
		a.Error = errMsg.String
		a.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		r             Run
		input, output sql.NullString
		started       string
		finished      sql.NullString
	)
	if err := row.Scan(&r.ID, &input, &output, &started, &finished, &r.Converted, &r.Empty, &r.Failed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scanning run row: %w", err)
	}
	r.InputDir = input.String
	r.OutputDir = output.String
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished.String)
	return r, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
