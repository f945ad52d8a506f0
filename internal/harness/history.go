package harness

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"platewise/internal/core/barcode"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // database/sql driver "sqlite"
)

// Run is one recorded harness execution
type Run struct {
	ID        string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Total     int       `json:"total"`
	Matched   int       `json:"matched"`
	Outcomes  []Outcome `json:"outcomes"`
}

// History stores runs in a local SQLite file
type History struct {
	db  *sql.DB
	now func() time.Time
}

// OpenHistory opens or creates the database at path
func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("harness: open history: %w", err)
	}
	// one writer; keeps :memory: databases on a single connection
	db.SetMaxOpenConns(1)
	h := &History{db: db, now: time.Now}
	if err := h.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return h, nil
}

// Close releases the database
func (h *History) Close() error { return h.db.Close() }

func (h *History) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		run_id     TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		total      INTEGER NOT NULL,
		matched    INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS outcomes (
		run_id   TEXT NOT NULL,
		position INTEGER NOT NULL,
		name     TEXT NOT NULL,
		success  INTEGER NOT NULL,
		code     TEXT NOT NULL,
		format   TEXT NOT NULL,
		expected TEXT NOT NULL,
		matched  INTEGER NOT NULL,
		attempts INTEGER NOT NULL,
		total_ms INTEGER NOT NULL,
		err      TEXT NOT NULL,
		PRIMARY KEY (run_id, position),
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	if _, err := h.db.Exec(schema); err != nil {
		return fmt.Errorf("harness: create schema: %w", err)
	}
	return nil
}

// Record stores outs as a new run
func (h *History) Record(ctx context.Context, outs []Outcome) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		StartedAt: h.now().UTC().Truncate(time.Millisecond),
		Total:     len(outs),
		Matched:   len(outs) - Mismatches(outs),
		Outcomes:  outs,
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("harness: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, total, matched) VALUES (?, ?, ?, ?)`,
		run.ID, run.StartedAt.UnixMilli(), run.Total, run.Matched,
	); err != nil {
		return Run{}, fmt.Errorf("harness: insert run: %w", err)
	}

	const insertOutcome = `
	INSERT INTO outcomes (run_id, position, name, success, code, format, expected, matched, attempts, total_ms, err)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, o := range outs {
		if _, err := tx.ExecContext(ctx, insertOutcome,
			run.ID, i, o.Name, o.Success, o.Code, string(o.Format), o.Expected, o.Match, o.Attempts, o.TotalMs, o.Err,
		); err != nil {
			return Run{}, fmt.Errorf("harness: insert outcome: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("harness: commit: %w", err)
	}
	return run, nil
}

// Recent lists up to limit runs, newest first, with their outcomes
func (h *History) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT run_id, started_at, total, matched FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("harness: list runs: %w", err)
	}
	var runs []Run
	for rows.Next() {
		var r Run
		var ms int64
		if err := rows.Scan(&r.ID, &ms, &r.Total, &r.Matched); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("harness: scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(ms).UTC()
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	for i := range runs {
		outs, err := h.outcomes(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Outcomes = outs
	}
	return runs, nil
}

func (h *History) outcomes(ctx context.Context, runID string) ([]Outcome, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT name, success, code, format, expected, matched, attempts, total_ms, err
	FROM outcomes WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("harness: list outcomes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		var format string
		if err := rows.Scan(&o.Name, &o.Success, &o.Code, &format, &o.Expected, &o.Match, &o.Attempts, &o.TotalMs, &o.Err); err != nil {
			return nil, fmt.Errorf("harness: scan outcome: %w", err)
		}
		o.Format = barcode.Format(format)
		out = append(out, o)
	}
	return out, rows.Err()
}
