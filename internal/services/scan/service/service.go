// Package service runs decode sessions for the scan API and persists sealed reports
package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"runtime"
	"strings"
	"time"

	"platewise/internal/core/barcode"
	"platewise/internal/core/diag"
	"platewise/internal/modkit/repokit"
	perr "platewise/internal/platform/errors"
	"platewise/internal/platform/logger"
	"platewise/internal/services/scan/domain"
	"platewise/internal/services/scan/repo"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Service is the public service port
type Service interface{ domain.ServicePort }

const (
	defaultRecent  = 20
	maxRecent      = 100
	persistTimeout = 3 * time.Second
)

// Options control persistence; nil stores are skipped
type Options struct {
	DB       repokit.TxRunner
	Binder   repokit.Binder[repo.Repo]
	Attempts repo.AttemptSink
	Oracle   string
	Log      *logger.Logger
}

// Svc implements the service port
type Svc struct {
	dec      *barcode.Decoder
	repo     repo.Repo
	attempts repo.AttemptSink
	oracle   string
	log      *logger.Logger

	decodeImage func([]byte) (image.Image, error)
}

// New constructs the service around dec
func New(dec *barcode.Decoder, opt Options) *Svc {
	if dec == nil {
		panic("scan.Service requires a non nil Decoder")
	}
	s := &Svc{
		dec:      dec,
		attempts: opt.Attempts,
		oracle:   opt.Oracle,
		log:      opt.Log,
		decodeImage: func(b []byte) (image.Image, error) {
			return imaging.Decode(bytes.NewReader(b), imaging.AutoOrientation(true))
		},
	}
	if opt.DB != nil && opt.Binder != nil {
		s.repo = repokit.MustBind(opt.Binder, opt.DB)
	}
	if s.log == nil {
		s.log = logger.Named("scan")
	}
	return s
}

// Decode decodes the uploaded frame; a miss is a successful response with success false
func (s *Svc) Decode(ctx context.Context, in domain.DecodeInput, rm domain.RequestMeta) (domain.DecodeOutput, error) {
	raw, err := decodeBase64(in.ImageBase64)
	if err != nil {
		return domain.DecodeOutput{}, perr.WithField(perr.Wrap(err, perr.ErrorCodeInvalidArgument, "image_base64 is not valid base64"), "image_base64")
	}
	img, err := s.decodeImage(raw)
	if err != nil {
		return domain.DecodeOutput{}, perr.WithField(perr.Wrap(err, perr.ErrorCodeInvalidArgument, "image_base64 is not a supported image"), "image_base64")
	}

	rid := rm.RequestID
	if rid == "" {
		rid = uuid.NewString()
	}
	res := s.dec.Decode(ctx, img, diag.SessionMeta{
		RequestID: rid,
		Environment: diag.Environment{
			Runtime:          "server",
			OS:               runtime.GOOS,
			Arch:             runtime.GOARCH,
			Oracle:           s.oracle,
			UserAgent:        rm.UserAgent,
			DevicePixelRatio: in.DevicePixelRatio,
		},
		Constraints: in.Constraints,
		Debug:       rm.Debug,
	})
	if res.Report != nil {
		s.persist(ctx, *res.Report)
	}

	out := domain.DecodeOutput{RequestID: rid, Result: res, Expected: in.Expected}
	if in.Expected != "" {
		m := res.Success && barcode.NormalizeUPCCode(in.Expected).Code == res.Code
		out.Match = &m
	}
	s.log.Info().
		Str("request_id", rid).
		Bool("success", res.Success).
		Str("format", string(res.Format)).
		Int("attempts", res.Attempts).
		Int64("total_ms", res.TotalMs).
		Bool("aborted", res.Aborted).
		Msg("scan decoded")
	return out, nil
}

// persist writes the sealed report; failures are logged and never reach the caller
func (s *Svc) persist(ctx context.Context, rep diag.ScanReport) {
	if s.repo == nil && s.attempts == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if s.repo != nil {
		if err := s.repo.InsertReport(ctx, rep); err != nil {
			s.log.Warn().Err(err).Str("request_id", rep.RequestID).Bool("retryable", perr.Retryable(err)).Msg("scan report not stored")
		}
	}
	if s.attempts != nil {
		if err := s.attempts.InsertAttempts(ctx, rep); err != nil {
			s.log.Warn().Err(err).Str("request_id", rep.RequestID).Bool("retryable", perr.Retryable(err)).Msg("scan attempts not stored")
		}
	}
}

// Last returns the newest in-memory report
func (s *Svc) Last(context.Context) (diag.ScanReport, error) {
	rep, ok := s.dec.Recorder().Last()
	if !ok {
		return diag.ScanReport{}, perr.NotFoundf("no scan report recorded; enable scan_debug")
	}
	return *rep, nil
}

// History returns the in-memory reports, newest first
func (s *Svc) History(context.Context) []diag.ScanReport {
	return s.dec.Recorder().History()
}

// Recent lists persisted reports; limit defaults to 20 and is capped at 100
func (s *Svc) Recent(ctx context.Context, limit int) ([]domain.StoredReport, error) {
	if s.repo == nil {
		return nil, perr.Unavailablef("scan report store is disabled")
	}
	switch {
	case limit <= 0:
		limit = defaultRecent
	case limit > maxRecent:
		limit = maxRecent
	}
	return s.repo.Recent(ctx, limit)
}

// decodeBase64 accepts plain or data URL payloads, padded or not
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[i+1:]
		}
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
