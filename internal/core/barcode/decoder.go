package barcode

import (
	"context"
	"image"
	"time"

	"platewise/internal/core/diag"
)

// DefaultBudget is the wall clock ceiling for one decode session
const DefaultBudget = 1200 * time.Millisecond

// ROIStrategy names the crop ordering recorded in reports
const ROIStrategy = "center-band-first"

// OracleRequest is one rendered candidate; Pass is the candidate index
type OracleRequest struct {
	ImageBase64 string
	Pass        int
}

// OracleResponse is what a recognizer saw; Found false means nothing was read
type OracleResponse struct {
	Barcode string
	Found   bool
}

// Oracle recognizes barcodes in a single raster
type Oracle interface {
	Decode(ctx context.Context, req OracleRequest) (OracleResponse, error)
}

// OracleFunc adapts a function to Oracle
type OracleFunc func(context.Context, OracleRequest) (OracleResponse, error)

// Decode implements Oracle
func (f OracleFunc) Decode(ctx context.Context, req OracleRequest) (OracleResponse, error) {
	return f(ctx, req)
}

// Result is the outcome of a decode session; a miss is Success false, never an error
type Result struct {
	Success         bool             `json:"success"`
	Code            string           `json:"code,omitempty"`
	Format          Format           `json:"format,omitempty"`
	NormalizedAs    string           `json:"normalized_as,omitempty"`
	CheckDigitOK    bool             `json:"check_digit_ok"`
	Attempts        int              `json:"attempts"`
	TotalMs         int64            `json:"total_ms"`
	Aborted         bool             `json:"aborted,omitempty"`
	BudgetExhausted bool             `json:"budget_exhausted,omitempty"`
	Report          *diag.ScanReport `json:"report,omitempty"`
}

// Decoder drives the oracle across the candidate grid; safe for concurrent sessions
type Decoder struct {
	oracle  Oracle
	rec     *diag.Recorder
	budget  time.Duration
	minEdge int
	grid    []Candidate
	now     func() time.Time
	scale   func(image.Image, Candidate, int) (*Scaled, error)
}

// Option configures a Decoder
type Option func(*Decoder)

// WithBudget overrides DefaultBudget; zero or negative disables the ceiling
func WithBudget(d time.Duration) Option { return func(dec *Decoder) { dec.budget = d } }

// WithMinEdge overrides DefaultMinEdge
func WithMinEdge(px int) Option { return func(dec *Decoder) { dec.minEdge = px } }

// WithGrid replaces the default grid axes
func WithGrid(o GridOptions) Option { return func(dec *Decoder) { dec.grid = Grid(o) } }

// WithRecorder attaches a diagnostics recorder
func WithRecorder(r *diag.Recorder) Option { return func(dec *Decoder) { dec.rec = r } }

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option { return func(dec *Decoder) { dec.now = now } }

// NewDecoder builds a Decoder around oracle
func NewDecoder(oracle Oracle, opts ...Option) *Decoder {
	d := &Decoder{
		oracle:  oracle,
		budget:  DefaultBudget,
		minEdge: DefaultMinEdge,
		grid:    Grid(GridOptions{}),
		now:     time.Now,
		scale:   Scale,
	}
	for _, o := range opts {
		o(d)
	}
	if d.rec == nil {
		d.rec = diag.NewRecorder(diag.DebugConfig{})
	}
	return d
}

// Recorder returns the diagnostics recorder sessions report to
func (d *Decoder) Recorder() *diag.Recorder { return d.rec }

// Decode walks the grid until an attempt validates, the budget runs out or ctx is done
func (d *Decoder) Decode(ctx context.Context, src image.Image, meta diag.SessionMeta) Result {
	start := d.now()
	if meta.ROIStrategy == "" {
		meta.ROIStrategy = ROIStrategy
	}
	if meta.CaptureSize == nil && src != nil {
		b := src.Bounds()
		meta.CaptureSize = &diag.Size{W: b.Dx(), H: b.Dy()}
	}
	sess := d.rec.Start(meta)

	var (
		res   Result
		cache scaleCache
	)
	for _, c := range d.grid {
		if ctx.Err() != nil {
			res.Aborted = true
			break
		}

		a, n := d.attempt(ctx, src, c, meta.Environment.DevicePixelRatio, &cache)
		res.Attempts++
		sess.LogAttempt(a)

		if Outcome(a.Outcome) == OutcomeOK {
			res.Success = true
			res.Code = n.Code
			res.Format = n.Format
			res.NormalizedAs = n.NormalizedAs
			res.CheckDigitOK = n.CheckDigitOK
			break
		}
		if ctx.Err() != nil {
			res.Aborted = true
			break
		}
		if d.budget > 0 && d.now().Sub(start) > d.budget {
			res.BudgetExhausted = res.Attempts < len(d.grid)
			break
		}
	}
	res.TotalMs = d.now().Sub(start).Milliseconds()

	final := diag.Final{
		Success:      res.Success,
		Code:         res.Code,
		NormalizedAs: res.NormalizedAs,
		WillScore:    res.Success,
		WillFallback: !res.Success,
		Aborted:      res.Aborted,
		TotalMs:      res.TotalMs,
	}
	if res.Success {
		ok := res.CheckDigitOK
		final.CheckDigitOK = &ok
	}
	if rep, ok := sess.Finalize(final); ok {
		res.Report = rep
	}
	return res
}

// scaleKey identifies a resampled crop; candidates sharing it differ only in rotation and inversion
type scaleKey struct {
	crop string
	rect image.Rectangle
	eff  float64
}

// scaleCache holds the last resampled crop of a session. The grid nests crops then scales outermost,
// so candidates sharing a key are adjacent and one slot covers every reuse.
type scaleCache struct {
	key    scaleKey
	scaled *Scaled
}

// scaled returns the resampled crop for c, resampling only when its key changes
func (d *Decoder) scaled(src image.Image, c Candidate, cache *scaleCache) (*Scaled, error) {
	rect, eff, err := Plan(src, c, d.minEdge)
	if err != nil {
		return nil, err
	}
	k := scaleKey{crop: c.Crop.Name, rect: rect, eff: eff}
	if cache.scaled != nil && cache.key == k {
		return cache.scaled, nil
	}
	s, err := d.scale(src, c, d.minEdge)
	if err != nil {
		return nil, err
	}
	cache.key, cache.scaled = k, s
	return s, nil
}

// attempt renders c and asks the oracle; every failure becomes an outcome
func (d *Decoder) attempt(ctx context.Context, src image.Image, c Candidate, dpr float64, cache *scaleCache) (diag.DecodeAttempt, Normalized) {
	t0 := d.now()
	a := diag.DecodeAttempt{
		Index:            c.Index,
		CropRegion:       c.Crop.Name,
		Scale:            c.Scale,
		Rotation:         c.Rotation,
		Inverted:         c.Inverted,
		DevicePixelRatio: dpr,
	}
	done := func(o Outcome) {
		a.Outcome = string(o)
		a.ElapsedMs = d.now().Sub(t0).Milliseconds()
	}

	sc, err := d.scaled(src, c, cache)
	if err != nil {
		a.Error = err.Error()
		done(OutcomeError)
		return a, Normalized{}
	}
	ras, err := sc.Finish(c)
	if err != nil {
		a.Error = err.Error()
		done(OutcomeError)
		return a, Normalized{}
	}
	a.EffectiveScale = ras.EffectiveScale
	a.ImageDimensions = diag.Size{W: ras.Width, H: ras.Height}

	resp, err := d.oracle.Decode(ctx, OracleRequest{ImageBase64: ras.Base64, Pass: c.Index})
	if err != nil {
		a.Error = err.Error()
		done(OutcomeError)
		return a, Normalized{}
	}
	if !resp.Found {
		done(OutcomeNotFound)
		return a, Normalized{}
	}

	out, n := Classify(resp.Barcode)
	a.Code = n.Code
	if n.Format != FormatUnknown {
		a.Format = string(n.Format)
	}
	done(out)
	return a, n
}
