package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"strings"
	"sync"
	"testing"

	"platewise/internal/core/barcode"
	"platewise/internal/core/diag"
	"platewise/internal/modkit/repokit"
	perr "platewise/internal/platform/errors"
	"platewise/internal/platform/logger"
	"platewise/internal/platform/store"
	"platewise/internal/services/scan/domain"
	"platewise/internal/services/scan/repo"
)

type nopTx struct{}

func (nopTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (nopTx) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (nopTx) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (t nopTx) Tx(ctx context.Context, fn func(store.RowQuerier) error) error {
	return fn(t)
}

type fakeRepo struct {
	mu      sync.Mutex
	reports []diag.ScanReport
	limit   int
	err     error
}

func (f *fakeRepo) InsertReport(_ context.Context, rep diag.ScanReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reports = append(f.reports, rep)
	return nil
}

func (f *fakeRepo) Recent(_ context.Context, limit int) ([]domain.StoredReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limit = limit
	out := make([]domain.StoredReport, 0, len(f.reports))
	for _, r := range f.reports {
		out = append(out, domain.StoredReport{RequestID: r.RequestID, Report: r})
	}
	return out, nil
}

type fakeSink struct {
	calls int
	err   error
}

func (f *fakeSink) InsertAttempts(context.Context, diag.ScanReport) error {
	f.calls++
	return f.err
}

func frame(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 200, 100))); err != nil {
		t.Fatalf("png: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// readsOn reports code on pass n and nothing before
func readsOn(n int, code string) barcode.Oracle {
	return barcode.OracleFunc(func(_ context.Context, r barcode.OracleRequest) (barcode.OracleResponse, error) {
		if r.Pass == n {
			return barcode.OracleResponse{Barcode: code, Found: true}, nil
		}
		return barcode.OracleResponse{}, nil
	})
}

func newSvc(o barcode.Oracle, r *fakeRepo, sink *fakeSink) *Svc {
	dec := barcode.NewDecoder(o,
		barcode.WithMinEdge(0),
		barcode.WithBudget(0),
		barcode.WithRecorder(diag.NewRecorder(diag.DebugConfig{}, diag.WithLogger(logger.Nop()))),
	)
	opt := Options{Oracle: "test", Log: logger.Nop()}
	if r != nil {
		opt.DB = nopTx{}
		opt.Binder = repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return r })
	}
	if sink != nil {
		opt.Attempts = sink
	}
	return New(dec, opt)
}

func TestDecode_DebugRequestPersists(t *testing.T) {
	r, sink := &fakeRepo{}, &fakeSink{}
	s := newSvc(readsOn(2, "0036000291452"), r, sink)

	out, err := s.Decode(context.Background(),
		domain.DecodeInput{ImageBase64: frame(t), Expected: "036000291452", DevicePixelRatio: 2},
		domain.RequestMeta{RequestID: "req-1", UserAgent: "ua/1", Debug: true},
	)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !out.Success || out.Code != "036000291452" || out.Format != barcode.FormatUPCA || out.Attempts != 3 {
		t.Fatalf("out = %+v", out)
	}
	if out.Match == nil || !*out.Match || out.RequestID != "req-1" {
		t.Fatalf("match = %v request_id = %q", out.Match, out.RequestID)
	}
	if out.Report == nil || len(out.Report.Attempts) != 3 {
		t.Fatalf("report = %+v", out.Report)
	}
	env := out.Report.Environment
	if env.Oracle != "test" || env.UserAgent != "ua/1" || env.DevicePixelRatio != 2 || env.Runtime != "server" {
		t.Fatalf("environment = %+v", env)
	}
	if len(r.reports) != 1 || r.reports[0].RequestID != "req-1" || sink.calls != 1 {
		t.Fatalf("persisted reports=%d sink=%d", len(r.reports), sink.calls)
	}

	last, err := s.Last(context.Background())
	if err != nil || last.RequestID != "req-1" {
		t.Fatalf("Last = %+v %v", last, err)
	}
	if h := s.History(context.Background()); len(h) != 1 {
		t.Fatalf("history = %d", len(h))
	}
}

func TestDecode_NoDebugNoReport(t *testing.T) {
	r, sink := &fakeRepo{}, &fakeSink{}
	s := newSvc(readsOn(0, "96385074"), r, sink)

	out, err := s.Decode(context.Background(), domain.DecodeInput{ImageBase64: frame(t)}, domain.RequestMeta{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !out.Success || out.Report != nil || out.Match != nil || out.RequestID == "" {
		t.Fatalf("out = %+v", out)
	}
	if len(r.reports) != 0 || sink.calls != 0 {
		t.Fatalf("nothing should persist without debug")
	}
	if _, err := s.Last(context.Background()); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("Last err = %v", err)
	}
}

func TestDecode_MissIsNotAnError(t *testing.T) {
	dec := barcode.NewDecoder(readsOn(-1, ""), barcode.WithMinEdge(0), barcode.WithBudget(0),
		barcode.WithGrid(barcode.GridOptions{Scales: []float64{1}, Rotations: []int{0}}))
	s := New(dec, Options{Log: logger.Nop()})

	out, err := s.Decode(context.Background(), domain.DecodeInput{ImageBase64: frame(t), Expected: "96385074"}, domain.RequestMeta{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Success || out.Attempts != 8 || out.Match == nil || *out.Match {
		t.Fatalf("out = %+v", out)
	}
}

func TestDecode_PersistFailuresAreSwallowed(t *testing.T) {
	r, sink := &fakeRepo{err: errors.New("pg down")}, &fakeSink{err: errors.New("ch down")}
	s := newSvc(readsOn(0, "4006381333931"), r, sink)

	out, err := s.Decode(context.Background(), domain.DecodeInput{ImageBase64: frame(t)}, domain.RequestMeta{Debug: true})
	if err != nil || !out.Success {
		t.Fatalf("Decode = %+v %v", out, err)
	}
	if sink.calls != 1 {
		t.Fatalf("sink calls = %d", sink.calls)
	}
}

func TestDecode_BadImage(t *testing.T) {
	s := newSvc(readsOn(0, "1"), nil, nil)
	for name, payload := range map[string]string{
		"not base64": "%%%",
		"not image":  base64.StdEncoding.EncodeToString([]byte("plain text")),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Decode(context.Background(), domain.DecodeInput{ImageBase64: payload}, domain.RequestMeta{})
			e, ok := perr.As(err)
			if !ok || e.Code() != perr.ErrorCodeInvalidArgument || e.Field() != "image_base64" {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestDecodeBase64(t *testing.T) {
	want := []byte("platewise!")
	std := base64.StdEncoding.EncodeToString(want)
	for name, in := range map[string]string{
		"std":      std,
		"raw":      strings.TrimRight(std, "="),
		"data url": "data:image/png;base64," + std,
		"spaced":   "  " + std + "\n",
	} {
		t.Run(name, func(t *testing.T) {
			got, err := decodeBase64(in)
			if err != nil || string(got) != string(want) {
				t.Fatalf("decodeBase64 = %q %v", got, err)
			}
		})
	}
}

func TestRecent(t *testing.T) {
	if _, err := newSvc(readsOn(0, "1"), nil, nil).Recent(context.Background(), 5); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("disabled store err = %v", err)
	}

	r := &fakeRepo{}
	s := newSvc(readsOn(0, "1"), r, nil)
	for _, tc := range []struct{ in, want int }{{0, 20}, {-3, 20}, {7, 7}, {500, 100}} {
		if _, err := s.Recent(context.Background(), tc.in); err != nil {
			t.Fatalf("Recent(%d): %v", tc.in, err)
		}
		if r.limit != tc.want {
			t.Fatalf("Recent(%d) limit = %d, want %d", tc.in, r.limit, tc.want)
		}
	}
}
