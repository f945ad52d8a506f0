// Package repo persists sealed scan reports: postgres keeps the reports, clickhouse the attempt rows
package repo

import (
	"context"
	"encoding/json"
	"time"

	"platewise/internal/core/diag"
	"platewise/internal/modkit/repokit"
	perr "platewise/internal/platform/errors"
	"platewise/internal/platform/store"
	"platewise/internal/services/scan/domain"
)

// Repo is the report store used by the service layer
type Repo interface {
	InsertReport(ctx context.Context, rep diag.ScanReport) error
	Recent(ctx context.Context, limit int) ([]domain.StoredReport, error)
}

type (
	// PG is the Postgres implementation of the report store
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// Schema creates scan_reports when missing
const Schema = `
	CREATE TABLE IF NOT EXISTS scan_reports (
		request_id  text        PRIMARY KEY,
		started_at  timestamptz NOT NULL,
		finished_at timestamptz,
		success     boolean     NOT NULL,
		code        text        NOT NULL DEFAULT '',
		attempts    integer     NOT NULL,
		total_ms    bigint      NOT NULL,
		report      jsonb       NOT NULL,
		created_at  timestamptz NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS scan_reports_created_at_idx ON scan_reports (created_at DESC);
`

// Migrate applies Schema
func Migrate(ctx context.Context, q repokit.Queryer) error {
	_, err := q.Exec(ctx, Schema)
	return err
}

// InsertReport stores rep once; a replayed request id is ignored
func (r *queries) InsertReport(ctx context.Context, rep diag.ScanReport) error {
	raw, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	var success bool
	var code string
	var total int64
	if rep.Final != nil {
		success, code, total = rep.Final.Success, rep.Final.Code, rep.Final.TotalMs
	}
	var finished *time.Time
	if !rep.FinishedAt.IsZero() {
		finished = &rep.FinishedAt
	}

	const sql = `
		INSERT INTO scan_reports (
			request_id, started_at, finished_at, success, code, attempts, total_ms, report
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb)
		ON CONFLICT (request_id) DO NOTHING
	`
	_, err = r.q.Exec(ctx, sql, rep.RequestID, rep.StartedAt, finished, success, code, len(rep.Attempts), total, string(raw))
	return perr.FromPG(err, "insert scan report")
}

// Recent lists the newest reports first
func (r *queries) Recent(ctx context.Context, limit int) ([]domain.StoredReport, error) {
	const sql = `
		SELECT request_id, success, code, attempts, total_ms, created_at, report
		  FROM scan_reports
		 ORDER BY created_at DESC, request_id
		 LIMIT $1
	`
	out, err := store.Many(ctx, r.q, scanStored, sql, limit)
	if err != nil {
		return nil, perr.FromPG(err, "list scan reports")
	}
	return out, nil
}

func scanStored(row store.Row) (domain.StoredReport, error) {
	var s domain.StoredReport
	var raw []byte
	if err := row.Scan(&s.RequestID, &s.Success, &s.Code, &s.Attempts, &s.TotalMs, &s.CreatedAt, &raw); err != nil {
		return domain.StoredReport{}, err
	}
	if err := json.Unmarshal(raw, &s.Report); err != nil {
		return domain.StoredReport{}, err
	}
	return s, nil
}
