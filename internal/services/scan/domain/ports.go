package domain

import (
	"context"

	"platewise/internal/core/diag"
)

// ServicePort is the scan use case surface
type ServicePort interface {
	Decode(ctx context.Context, in DecodeInput, rm RequestMeta) (DecodeOutput, error)
	Last(ctx context.Context) (diag.ScanReport, error)
	History(ctx context.Context) []diag.ScanReport
	Recent(ctx context.Context, limit int) ([]StoredReport, error)
}
