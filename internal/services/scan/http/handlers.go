// Package http provides http transport for scan
package http

import (
	stdhttp "net/http"
	"strconv"
	"strings"

	"platewise/internal/core/diag"
	"platewise/internal/modkit/httpkit"
	perr "platewise/internal/platform/errors"
	pnet "platewise/internal/platform/net"
	"platewise/internal/platform/net/http/bind"
	"platewise/internal/services/scan/domain"
	svc "platewise/internal/services/scan/service"
)

// MaxUploadBytes bounds the decode body; frames arrive base64 encoded
const MaxUploadBytes = 12 << 20

// Register mounts the router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.DecodeInput](r, "/decode", h.decode, bind.JSONOptions{MaxBytes: MaxUploadBytes, DisallowUnknown: true})
	httpkit.Get(r, "/reports/last", h.last)
	httpkit.Get(r, "/reports/recent", h.recent)
	httpkit.Get(r, "/reports", h.history)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /scan/decode Scan decode
// @Summary Decode a barcode from a captured frame
// @Tags scan
// @Accept json
// @Produce json
// @Param scan_debug query string false "1 records a scan report for this request"
// @Param payload body domain.DecodeInput true "Frame"
// @Success 200 {object} domain.DecodeOutput "ok"
// @Failure 400 {object} httpkit.Envelope "validation"
// @Failure 422 {object} httpkit.Envelope "image could not be decoded"
// @Router /scan/decode [post]
func (h *handlers) decode(r *stdhttp.Request, in domain.DecodeInput) (any, error) {
	dbg := diag.ResolveDebug(diag.QuerySource(r.URL.Query()), diag.FlagSource(in.Debug))
	return h.svc.Decode(r.Context(), in, domain.RequestMeta{
		RequestID: pnet.RequestID(r.Context()),
		UserAgent: r.UserAgent(),
		Debug:     dbg.Enabled,
	})
}

// swagger:route GET /scan/reports/last Scan last
// @Summary Newest in-memory scan report
// @Tags scan
// @Produce json
// @Success 200 {object} diag.ScanReport "ok"
// @Failure 404 {object} httpkit.Envelope "none recorded"
// @Router /scan/reports/last [get]
func (h *handlers) last(r *stdhttp.Request) (any, error) {
	return h.svc.Last(r.Context())
}

// swagger:route GET /scan/reports Scan history
// @Summary In-memory scan report history, newest first
// @Tags scan
// @Produce json
// @Success 200 {array} diag.ScanReport "ok"
// @Router /scan/reports [get]
func (h *handlers) history(r *stdhttp.Request) (any, error) {
	reps := h.svc.History(r.Context())
	return httpkit.List(reps, len(reps), len(reps)), nil
}

// swagger:route GET /scan/reports/recent Scan recent
// @Summary Persisted scan reports
// @Tags scan
// @Produce json
// @Param limit query int false "1..100, default 20"
// @Success 200 {array} domain.StoredReport "ok"
// @Failure 422 {object} httpkit.Envelope "bad limit"
// @Failure 503 {object} httpkit.Envelope "store disabled"
// @Router /scan/reports/recent [get]
func (h *handlers) recent(r *stdhttp.Request) (any, error) {
	limit := 0
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, perr.WithField(perr.InvalidArgf("limit must be a non-negative integer"), "limit")
		}
		limit = n
	}
	items, err := h.svc.Recent(r.Context(), limit)
	if err != nil {
		return nil, err
	}
	return httpkit.List(items, len(items), limit), nil
}
