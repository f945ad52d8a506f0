// Package domain holds the scan API contracts
package domain

import (
	"time"

	"platewise/internal/core/barcode"
	"platewise/internal/core/diag"
)

// DecodeInput is the POST /scan/decode body; image_base64 may carry a data URL prefix
type DecodeInput struct {
	ImageBase64      string         `json:"image_base64" validate:"required"`
	DevicePixelRatio float64        `json:"device_pixel_ratio,omitempty" validate:"omitempty,gt=0,lte=8"`
	Constraints      map[string]any `json:"constraints,omitempty"`
	Expected         string         `json:"expected,omitempty" validate:"omitempty,gtin"`
	Debug            bool           `json:"debug,omitempty"`
}

// RequestMeta is what the transport knows about the caller
type RequestMeta struct {
	RequestID string
	UserAgent string
	Debug     bool
}

// DecodeOutput is the decode result plus the expected-code verdict when one was sent
type DecodeOutput struct {
	RequestID string `json:"request_id"`
	barcode.Result
	Expected string `json:"expected,omitempty"`
	Match    *bool  `json:"match,omitempty"`
}

// StoredReport is a persisted scan report row
type StoredReport struct {
	RequestID string          `json:"request_id"`
	Success   bool            `json:"success"`
	Code      string          `json:"code,omitempty"`
	Attempts  int             `json:"attempts"`
	TotalMs   int64           `json:"total_ms"`
	CreatedAt time.Time       `json:"created_at"`
	Report    diag.ScanReport `json:"report"`
}
