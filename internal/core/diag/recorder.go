package diag

import (
	"sync"
	"time"

	"platewise/internal/platform/logger"

	"github.com/rs/zerolog"
)

// DefaultHistory is how many sealed reports a Recorder keeps
const DefaultHistory = 3

// LogPrefix marks every diagnostics line
const LogPrefix = "[HS_DIAG]"

// Recorder keeps the newest sealed reports; safe for concurrent sessions
type Recorder struct {
	cfg      DebugConfig
	capacity int
	log      *logger.Logger
	now      func() time.Time
	clip     func(string) error

	mu      sync.Mutex
	history []ScanReport
}

// Option configures a Recorder
type Option func(*Recorder)

// WithCapacity overrides DefaultHistory; values below 1 are ignored
func WithCapacity(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.capacity = n
		}
	}
}

// WithLogger sets the logger attempts are emitted on
func WithLogger(l *logger.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.log = l
		}
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithClipboard overrides the system clipboard writer
func WithClipboard(write func(string) error) Option {
	return func(r *Recorder) { r.clip = write }
}

// NewRecorder builds a Recorder for cfg
func NewRecorder(cfg DebugConfig, opts ...Option) *Recorder {
	r := &Recorder{
		cfg:      cfg,
		capacity: DefaultHistory,
		now:      time.Now,
		clip:     systemClipboard,
	}
	for _, o := range opts {
		o(r)
	}
	if r.log == nil {
		r.log = logger.Named("diag")
	}
	return r
}

// Debug returns the resolved process level config
func (r *Recorder) Debug() DebugConfig { return r.cfg }

// Start opens a session; it records only when debugging is on for the process or meta.Debug is set
func (r *Recorder) Start(meta SessionMeta) *Session {
	cfg := r.cfg
	if !cfg.Enabled && meta.Debug {
		cfg = DebugConfig{Enabled: true, Source: "request"}
	}
	s := &Session{rec: r, enabled: cfg.Enabled}
	if !s.enabled {
		return s
	}
	s.report = ScanReport{
		RequestID:      meta.RequestID,
		StartedAt:      r.now().UTC(),
		Debug:          cfg,
		Environment:    meta.Environment,
		Constraints:    meta.Constraints,
		CaptureSize:    meta.CaptureSize,
		NormalizedSize: meta.NormalizedSize,
		ROIStrategy:    meta.ROIStrategy,
		Attempts:       []DecodeAttempt{},
	}
	s.log = r.log.With().Str("request_id", meta.RequestID).Logger()
	s.log.Debug().
		Str("roi_strategy", meta.ROIStrategy).
		Str("debug_source", cfg.Source).
		Msg(LogPrefix + " start")
	return s
}

func (r *Recorder) push(rep ScanReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append([]ScanReport{rep}, r.history...)
	if len(r.history) > r.capacity {
		r.history = r.history[:r.capacity]
	}
}

// Last returns a copy of the newest sealed report
func (r *Recorder) Last() (*ScanReport, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return nil, false
	}
	rep := r.history[0].clone()
	return &rep, true
}

// History returns copies of the sealed reports, newest first
func (r *Recorder) History() []ScanReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ScanReport, len(r.history))
	for i, rep := range r.history {
		out[i] = rep.clone()
	}
	return out
}

// Session is the handle for one decode run; an inert session records nothing
type Session struct {
	rec     *Recorder
	enabled bool
	log     zerolog.Logger

	mu     sync.Mutex
	sealed bool
	report ScanReport
}

// Enabled reports whether the session records attempts
func (s *Session) Enabled() bool { return s != nil && s.enabled }

// LogAttempt appends a; no-op when inert or sealed
func (s *Session) LogAttempt(a DecodeAttempt) {
	if !s.Enabled() {
		return
	}
	s.mu.Lock()
	if s.sealed {
		s.mu.Unlock()
		return
	}
	s.report.Attempts = append(s.report.Attempts, a)
	s.mu.Unlock()

	ev := s.log.Debug().
		Int("index", a.Index).
		Str("crop", a.CropRegion).
		Float64("scale", a.Scale).
		Int("rotation", a.Rotation).
		Bool("inverted", a.Inverted).
		Str("outcome", a.Outcome).
		Int64("elapsed_ms", a.ElapsedMs)
	if a.Code != "" {
		ev = ev.Str("code", a.Code).Str("format", a.Format)
	}
	if a.Error != "" {
		ev = ev.Str("error", a.Error)
	}
	ev.Msg(LogPrefix + " attempt")
}

// Finalize seals the report once and pushes it onto the recorder history
func (s *Session) Finalize(final Final) (*ScanReport, bool) {
	if !s.Enabled() {
		return nil, false
	}
	s.mu.Lock()
	if s.sealed {
		s.mu.Unlock()
		return nil, false
	}
	s.sealed = true
	f := final
	s.report.Final = &f
	s.report.FinishedAt = s.rec.now().UTC()
	rep := s.report.clone()
	s.mu.Unlock()

	s.rec.push(rep)
	s.log.Debug().
		Bool("success", final.Success).
		Str("code", final.Code).
		Int("attempts", len(rep.Attempts)).
		Int64("total_ms", final.TotalMs).
		Bool("will_fallback", final.WillFallback).
		Msg(LogPrefix + " final")

	out := rep.clone()
	return &out, true
}
