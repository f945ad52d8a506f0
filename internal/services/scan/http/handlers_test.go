package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"platewise/internal/core/barcode"
	"platewise/internal/core/diag"
	"platewise/internal/modkit/httpkit"
	perr "platewise/internal/platform/errors"
	phttp "platewise/internal/platform/net/http"
	"platewise/internal/services/scan/domain"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type fakeSvc struct {
	gotIn    domain.DecodeInput
	gotMeta  domain.RequestMeta
	gotLimit int
	last     *diag.ScanReport
}

func (f *fakeSvc) Decode(_ context.Context, in domain.DecodeInput, rm domain.RequestMeta) (domain.DecodeOutput, error) {
	f.gotIn, f.gotMeta = in, rm
	return domain.DecodeOutput{RequestID: rm.RequestID, Result: barcode.Result{Success: true, Code: "96385074", Format: barcode.FormatEAN8, Attempts: 1}}, nil
}

func (f *fakeSvc) Last(context.Context) (diag.ScanReport, error) {
	if f.last == nil {
		return diag.ScanReport{}, perr.NotFoundf("no scan report recorded")
	}
	return *f.last, nil
}

func (f *fakeSvc) History(context.Context) []diag.ScanReport {
	if f.last == nil {
		return []diag.ScanReport{}
	}
	return []diag.ScanReport{*f.last}
}

func (f *fakeSvc) Recent(_ context.Context, limit int) ([]domain.StoredReport, error) {
	f.gotLimit = limit
	return []domain.StoredReport{{RequestID: "r1"}}, nil
}

func serve(t *testing.T, s *fakeSvc, method, target, body string) (*httptest.ResponseRecorder, httpkit.Envelope) {
	t.Helper()
	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	phttp.AdaptChi(mux).Route("/scan", func(r httpkit.Router) { Register(r, s) })

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("User-Agent", "scanner/2.0")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var env httpkit.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("envelope: %v body=%s", err, rec.Body.String())
	}
	return rec, env
}

func TestDecode(t *testing.T) {
	s := &fakeSvc{}
	rec, env := serve(t, s, stdhttp.MethodPost, "/scan/decode?scan_debug=1", `{"image_base64":"aGk=","device_pixel_ratio":3}`)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("code = %d body=%s", rec.Code, rec.Body.String())
	}
	if !s.gotMeta.Debug || s.gotMeta.UserAgent != "scanner/2.0" || s.gotMeta.RequestID == "" {
		t.Fatalf("meta = %+v", s.gotMeta)
	}
	if s.gotIn.DevicePixelRatio != 3 || env.RequestID != s.gotMeta.RequestID {
		t.Fatalf("in = %+v env = %+v", s.gotIn, env)
	}
	data, _ := env.Data.(map[string]any)
	if data["code"] != "96385074" || data["format"] != "EAN-8" || data["request_id"] != s.gotMeta.RequestID {
		t.Fatalf("data = %v", data)
	}

	_, _ = serve(t, s, stdhttp.MethodPost, "/scan/decode", `{"image_base64":"aGk=","debug":true}`)
	if !s.gotMeta.Debug {
		t.Fatalf("body debug flag ignored")
	}
	_, _ = serve(t, s, stdhttp.MethodPost, "/scan/decode?scan_debug=0", `{"image_base64":"aGk="}`)
	if s.gotMeta.Debug {
		t.Fatalf("debug should be off")
	}
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "missing image", body: `{}`, field: "image_base64"},
		{name: "bad expected", body: `{"image_base64":"aGk=","expected":"12345"}`, field: "expected"},
		{name: "bad dpr", body: `{"image_base64":"aGk=","device_pixel_ratio":40}`, field: "device_pixel_ratio"},
		{name: "unknown field", body: `{"image_base64":"aGk=","colour":"red"}`},
		{name: "not json", body: `image=1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := serve(t, &fakeSvc{}, stdhttp.MethodPost, "/scan/decode", tt.body)
			if rec.Code != stdhttp.StatusBadRequest {
				t.Fatalf("code = %d body=%s", rec.Code, rec.Body.String())
			}
			if tt.field != "" && env.Field != tt.field {
				t.Fatalf("field = %q, want %q", env.Field, tt.field)
			}
		})
	}
}

func TestReports(t *testing.T) {
	s := &fakeSvc{}
	rec, _ := serve(t, s, stdhttp.MethodGet, "/scan/reports/last", "")
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("last without report = %d", rec.Code)
	}

	s.last = &diag.ScanReport{RequestID: "abc"}
	rec, env := serve(t, s, stdhttp.MethodGet, "/scan/reports/last", "")
	if rec.Code != stdhttp.StatusOK || env.Data.(map[string]any)["request_id"] != "abc" {
		t.Fatalf("last = %d %v", rec.Code, env.Data)
	}

	rec, env = serve(t, s, stdhttp.MethodGet, "/scan/reports", "")
	items := env.Data.(map[string]any)["items"].([]any)
	if rec.Code != stdhttp.StatusOK || len(items) != 1 {
		t.Fatalf("history = %d %v", rec.Code, env.Data)
	}

	rec, _ = serve(t, s, stdhttp.MethodGet, "/scan/reports/recent?limit=5", "")
	if rec.Code != stdhttp.StatusOK || s.gotLimit != 5 {
		t.Fatalf("recent = %d limit %d", rec.Code, s.gotLimit)
	}
	rec, env = serve(t, s, stdhttp.MethodGet, "/scan/reports/recent?limit=lots", "")
	if rec.Code != stdhttp.StatusUnprocessableEntity || env.Field != "limit" {
		t.Fatalf("bad limit = %d %+v", rec.Code, env)
	}
}
