package repo

import (
	"context"

	"platewise/internal/core/diag"
	"platewise/internal/modkit/repokit"
)

// AttemptsTable is the clickhouse table attempts are appended to. Expected layout:
//
//	request_id String, started_at DateTime64(3), idx UInt16, crop String, scale Float64,
//	effective_scale Float64, rotation Int16, inverted UInt8, outcome LowCardinality(String),
//	code String, error String, elapsed_ms UInt32, width UInt32, height UInt32, success UInt8
const AttemptsTable = "scan_attempts"

// AttemptSink receives the attempts of a sealed report
type AttemptSink interface {
	InsertAttempts(ctx context.Context, rep diag.ScanReport) error
}

// CH writes attempts in one batch per report
type CH struct{ c repokit.Columnar }

// NewCH wraps the clickhouse seam
func NewCH(c repokit.Columnar) *CH { return &CH{c: c} }

// InsertAttempts implements AttemptSink; an empty report writes nothing
func (s *CH) InsertAttempts(ctx context.Context, rep diag.ScanReport) error {
	if len(rep.Attempts) == 0 {
		return nil
	}
	success := uint8(0)
	if rep.Final != nil && rep.Final.Success {
		success = 1
	}
	return s.c.Insert(ctx, AttemptsTable, AttemptRows(rep, success))
}

// AttemptRows flattens rep into rows in AttemptsTable column order
func AttemptRows(rep diag.ScanReport, success uint8) [][]any {
	rows := make([][]any, 0, len(rep.Attempts))
	for _, a := range rep.Attempts {
		inv := uint8(0)
		if a.Inverted {
			inv = 1
		}
		rows = append(rows, []any{
			rep.RequestID,
			rep.StartedAt,
			uint16(a.Index),
			a.CropRegion,
			a.Scale,
			a.EffectiveScale,
			int16(a.Rotation),
			inv,
			a.Outcome,
			a.Code,
			a.Error,
			uint32(max(a.ElapsedMs, 0)),
			uint32(max(a.ImageDimensions.W, 0)),
			uint32(max(a.ImageDimensions.H, 0)),
			success,
		})
	}
	return rows
}
