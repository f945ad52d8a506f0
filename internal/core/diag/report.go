package diag

import "time"

// Size is a raster size in pixels
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Environment describes where the session ran
type Environment struct {
	Runtime          string  `json:"runtime"`
	OS               string  `json:"os"`
	Arch             string  `json:"arch"`
	Oracle           string  `json:"oracle,omitempty"`
	UserAgent        string  `json:"user_agent,omitempty"`
	DevicePixelRatio float64 `json:"device_pixel_ratio,omitempty"`
}

// DecodeAttempt is one grid cell; immutable once logged
type DecodeAttempt struct {
	Index            int     `json:"index"`
	CropRegion       string  `json:"crop_region"`
	Scale            float64 `json:"scale"`
	EffectiveScale   float64 `json:"effective_scale"`
	Rotation         int     `json:"rotation"`
	Inverted         bool    `json:"inverted"`
	Outcome          string  `json:"outcome"`
	Format           string  `json:"format,omitempty"`
	Code             string  `json:"code,omitempty"`
	Error            string  `json:"error,omitempty"`
	ElapsedMs        int64   `json:"elapsed_ms"`
	ImageDimensions  Size    `json:"image_dimensions"`
	DevicePixelRatio float64 `json:"device_pixel_ratio,omitempty"`
}

// Final is the sealed outcome of a session
type Final struct {
	Success      bool   `json:"success"`
	Code         string `json:"code,omitempty"`
	NormalizedAs string `json:"normalized_as,omitempty"`
	CheckDigitOK *bool  `json:"check_digit_ok,omitempty"`
	WillScore    bool   `json:"will_score"`
	WillFallback bool   `json:"will_fallback"`
	Aborted      bool   `json:"aborted,omitempty"`
	TotalMs      int64  `json:"total_ms"`
}

// ScanReport is one full decode session
type ScanReport struct {
	RequestID      string          `json:"request_id"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at"`
	Debug          DebugConfig     `json:"debug"`
	Environment    Environment     `json:"environment"`
	Constraints    map[string]any  `json:"constraints,omitempty"`
	CaptureSize    *Size           `json:"capture_size,omitempty"`
	NormalizedSize *Size           `json:"normalized_size,omitempty"`
	ROIStrategy    string          `json:"roi_strategy"`
	Attempts       []DecodeAttempt `json:"attempts"`
	Final          *Final          `json:"final,omitempty"`
}

// SessionMeta seeds a report; Debug forces recording for this session only
type SessionMeta struct {
	RequestID      string
	Environment    Environment
	Constraints    map[string]any
	CaptureSize    *Size
	NormalizedSize *Size
	ROIStrategy    string
	Debug          bool
}

// clone copies the slices, maps and pointers callers could mutate
func (r ScanReport) clone() ScanReport {
	out := r
	out.Attempts = append([]DecodeAttempt(nil), r.Attempts...)
	if r.Constraints != nil {
		out.Constraints = make(map[string]any, len(r.Constraints))
		for k, v := range r.Constraints {
			out.Constraints[k] = v
		}
	}
	if r.CaptureSize != nil {
		s := *r.CaptureSize
		out.CaptureSize = &s
	}
	if r.NormalizedSize != nil {
		s := *r.NormalizedSize
		out.NormalizedSize = &s
	}
	if r.Final != nil {
		f := *r.Final
		if f.CheckDigitOK != nil {
			ok := *f.CheckDigitOK
			f.CheckDigitOK = &ok
		}
		out.Final = &f
	}
	return out
}
