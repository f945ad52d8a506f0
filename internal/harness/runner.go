package harness

import (
	"context"
	"image"
	"runtime"

	"platewise/internal/core/barcode"
	"platewise/internal/core/diag"
	"platewise/internal/platform/logger"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Outcome is the verdict for one fixture
type Outcome struct {
	Name     string         `json:"name"`
	Success  bool           `json:"success"`
	Code     string         `json:"code,omitempty"`
	Format   barcode.Format `json:"format,omitempty"`
	Expected string         `json:"expected,omitempty"`
	Match    bool           `json:"match"`
	Attempts int            `json:"attempts"`
	TotalMs  int64          `json:"total_ms"`
	Err      string         `json:"error,omitempty"`
}

// Runner decodes fixtures one after another
type Runner struct {
	dec  *barcode.Decoder
	log  *logger.Logger
	open func(string) (image.Image, error)
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithLogger sets the runner logger
func WithLogger(l *logger.Logger) RunnerOption { return func(r *Runner) { r.log = l } }

// NewRunner builds a Runner over dec
func NewRunner(dec *barcode.Decoder, opts ...RunnerOption) *Runner {
	r := &Runner{
		dec:  dec,
		log:  logger.Named("harness"),
		open: func(p string) (image.Image, error) { return imaging.Open(p, imaging.AutoOrientation(true)) },
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run decodes every fixture; unreadable images become outcomes with Err set
func (r *Runner) Run(ctx context.Context, fixtures []Fixture) []Outcome {
	out := make([]Outcome, 0, len(fixtures))
	for _, f := range fixtures {
		if ctx.Err() != nil {
			out = append(out, Outcome{Name: f.Name, Expected: f.Expected, Err: ctx.Err().Error()})
			continue
		}
		out = append(out, r.one(ctx, f))
	}
	return out
}

func (r *Runner) one(ctx context.Context, f Fixture) Outcome {
	o := Outcome{Name: f.Name, Expected: f.Expected}
	img, err := r.open(f.Path)
	if err != nil {
		o.Err = err.Error()
		r.log.Warn().Err(err).Str("fixture", f.Name).Msg("fixture unreadable")
		return o
	}

	res := r.dec.Decode(ctx, img, diag.SessionMeta{
		RequestID:   uuid.NewString(),
		Environment: diag.Environment{Runtime: "harness", OS: runtime.GOOS, Arch: runtime.GOARCH},
	})
	o.Success, o.Code, o.Format = res.Success, res.Code, res.Format
	o.Attempts, o.TotalMs = res.Attempts, res.TotalMs
	o.Match = matches(f, res)
	if res.Aborted && !res.Success {
		// an aborted search never matches, even for fixtures that must not decode
		o.Match = false
		o.Err = "decode aborted"
		if err := ctx.Err(); err != nil {
			o.Err += ": " + err.Error()
		}
	}

	r.log.Info().
		Str("fixture", f.Name).
		Bool("success", res.Success).
		Str("code", res.Code).
		Bool("match", o.Match).
		Int("attempts", res.Attempts).
		Int64("total_ms", res.TotalMs).
		Msg("fixture decoded")
	return o
}

// matches compares normalized codes so a 13 digit label with a leading zero equals its UPC-A read
func matches(f Fixture, res barcode.Result) bool {
	if f.Expected == "" {
		return !res.Success
	}
	if !res.Success {
		return false
	}
	want := barcode.NormalizeUPCCode(f.Expected)
	if want.Code != res.Code {
		return false
	}
	return f.Format == "" || barcode.Format(f.Format) == res.Format
}

// Mismatches counts outcomes that did not match their fixture
func Mismatches(outs []Outcome) int {
	n := 0
	for _, o := range outs {
		if !o.Match {
			n++
		}
	}
	return n
}
