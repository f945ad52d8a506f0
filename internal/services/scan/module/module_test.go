package module

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"platewise/internal/core/barcode"
	modkit "platewise/internal/modkit"
	"platewise/internal/modkit/httpkit"
	"platewise/internal/platform/config"
	"platewise/internal/platform/logger"
	phttp "platewise/internal/platform/net/http"
	"platewise/internal/platform/testkit"
	"platewise/internal/services/scan/domain"

	"github.com/go-chi/chi/v5"
)

func TestFromConfig(t *testing.T) {
	o := FromConfig(config.FromMap(nil))
	if o.Budget != barcode.DefaultBudget || o.MinEdge != barcode.DefaultMinEdge || o.History != 3 || !o.Persist || o.Debug.Enabled {
		t.Fatalf("defaults = %+v", o)
	}

	o = FromConfig(config.FromMap(map[string]string{
		"CORE_SCAN_BUDGET":       "800ms",
		"CORE_SCAN_MIN_EDGE":     "720",
		"CORE_SCAN_HISTORY":      "5",
		"CORE_SCAN_PERSIST":      "false",
		"NEXT_PUBLIC_SCAN_DEBUG": "1",
	}))
	if o.Budget != 800*time.Millisecond || o.MinEdge != 720 || o.History != 5 || o.Persist {
		t.Fatalf("overrides = %+v", o)
	}
	if !o.Debug.Enabled || o.Debug.Source != "env:NEXT_PUBLIC_SCAN_DEBUG" {
		t.Fatalf("debug = %+v", o.Debug)
	}
}

func TestNew_BadOracleConfigPanics(t *testing.T) {
	testkit.MustPanic(t, func() {
		New(modkit.Deps{Log: logger.Nop(), Cfg: config.FromMap(map[string]string{"CORE_ORACLE_MODE": "http"})})
	})
}

func TestModule_DecodeRoundTrip(t *testing.T) {
	orc := barcode.OracleFunc(func(_ context.Context, r barcode.OracleRequest) (barcode.OracleResponse, error) {
		if r.Pass == 1 {
			return barcode.OracleResponse{Barcode: "4006381333931", Found: true}, nil
		}
		return barcode.OracleResponse{}, nil
	})
	m := New(modkit.Deps{
		Log: logger.Nop(),
		Cfg: config.FromMap(map[string]string{"CORE_SCAN_MIN_EDGE": "0", "CORE_SCAN_BUDGET": "0s"}),
	}, modkit.WithPorts(Ports{Oracle: orc}))
	if m.Name() != "scan" {
		t.Fatalf("name = %q", m.Name())
	}
	if _, ok := m.Ports().(domain.ServicePort); !ok {
		t.Fatalf("ports = %T", m.Ports())
	}

	mux := chi.NewRouter()
	httpkit.MountAPIV1(phttp.AdaptChi(mux), httpkit.CommonStack(), m.MountRoutes)

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 160, 90))); err != nil {
		t.Fatalf("png: %v", err)
	}
	body := `{"image_base64":"` + base64.StdEncoding.EncodeToString(buf.Bytes()) + `","expected":"4006381333931"}`

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/scan/decode?scan_debug=1", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("decode = %d body=%s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data domain.DecodeOutput `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	out := env.Data
	if !out.Success || out.Code != "4006381333931" || out.Attempts != 2 || out.Match == nil || !*out.Match {
		t.Fatalf("out = %+v", out)
	}
	if out.Report == nil || out.Report.Debug.Source != "request" || len(out.Report.Attempts) != 2 {
		t.Fatalf("report = %+v", out.Report)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/scan/reports/last", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("last = %d", rec.Code)
	}
	testkit.MustContain(t, rec.Body.String(), out.RequestID)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/scan/reports/recent", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("recent without pg = %d", rec.Code)
	}
}
