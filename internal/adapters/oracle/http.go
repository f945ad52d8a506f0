// Package oracle provides barcode recognizers for the decode session: a remote HTTP service and an in-process gozxing reader
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"platewise/internal/core/barcode"
	perr "platewise/internal/platform/errors"
	"platewise/internal/platform/logger"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

const (
	defaultTimeout  = 5 * time.Second
	defaultUA       = "platewise-scan"
	maxResponseBody = 64 << 10
)

// HTTPOptions configures the remote oracle
type HTTPOptions struct {
	URL       string
	Token     string
	UserAgent string
	Timeout   time.Duration
	// Retries is the number of extra tries for transport errors and 5xx; zero means one try
	Retries      int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// HTTP posts each candidate to a recognizer service
type HTTP struct {
	client *retryablehttp.Client
	opts   HTTPOptions
	log    logger.Logger
}

// NewHTTP builds the remote oracle; URL is required
func NewHTTP(o HTTPOptions) (*HTTP, error) {
	if strings.TrimSpace(o.URL) == "" {
		return nil, perr.InvalidArgf("oracle url is required")
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.RetryWaitMin <= 0 {
		o.RetryWaitMin = 50 * time.Millisecond
	}
	if o.RetryWaitMax <= 0 {
		o.RetryWaitMax = 400 * time.Millisecond
	}

	h := &HTTP{opts: o, log: *logger.Named("oracle")}
	c := retryablehttp.NewClient()
	c.HTTPClient.Timeout = o.Timeout
	c.RetryMax = o.Retries
	c.RetryWaitMin = o.RetryWaitMin
	c.RetryWaitMax = o.RetryWaitMax
	c.Logger = leveled{l: &h.log}
	// hand the final response back so the status is reported instead of a generic giving-up error
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	h.client = c
	return h, nil
}

type decodeBody struct {
	Image string `json:"image"`
	Pass  int    `json:"pass"`
}

// Decode implements barcode.Oracle
func (h *HTTP) Decode(ctx context.Context, in barcode.OracleRequest) (barcode.OracleResponse, error) {
	raw, err := json.Marshal(decodeBody{Image: in.ImageBase64, Pass: in.Pass})
	if err != nil {
		return barcode.OracleResponse{}, perr.Wrap(err, perr.ErrorCodeUnknown, "oracle encode request")
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, h.opts.URL, bytes.NewReader(raw))
	if err != nil {
		return barcode.OracleResponse{}, perr.Wrap(err, perr.ErrorCodeUnknown, "oracle new request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", h.opts.UserAgent)
	if h.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.opts.Token)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return barcode.OracleResponse{}, perr.Wrap(ctx.Err(), perr.ErrorCodeTimeout, "oracle canceled")
		}
		return barcode.OracleResponse{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "oracle request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return barcode.OracleResponse{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "oracle read body")
	}
	h.log.Debug().
		Int("pass", in.Pass).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("oracle response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		code := perr.ErrorCodeUnavailable
		if resp.StatusCode == http.StatusTooManyRequests {
			code = perr.ErrorCodeTooManyRequests
		}
		return barcode.OracleResponse{}, perr.Newf(code, "oracle status %d", resp.StatusCode)
	}
	return parseResponse(body)
}

// parseResponse reads {"barcode": "..."}; the code may arrive as a string, a number or null
func parseResponse(body []byte) (barcode.OracleResponse, error) {
	if !gjson.ValidBytes(body) {
		return barcode.OracleResponse{}, perr.JSONErrf("oracle returned invalid JSON")
	}
	r := gjson.GetBytes(body, "barcode")
	switch r.Type {
	case gjson.String:
		code := strings.TrimSpace(r.Str)
		return barcode.OracleResponse{Barcode: code, Found: code != ""}, nil
	case gjson.Number:
		return barcode.OracleResponse{Barcode: r.Raw, Found: true}, nil
	}
	return barcode.OracleResponse{}, nil
}

// leveled routes retryablehttp logs to zerolog at debug
type leveled struct{ l *logger.Logger }

func (z leveled) Error(msg string, kv ...any) { z.l.Warn().Fields(kv).Msg(msg) }
func (z leveled) Info(msg string, kv ...any)  { z.l.Debug().Fields(kv).Msg(msg) }
func (z leveled) Debug(msg string, kv ...any) { z.l.Debug().Fields(kv).Msg(msg) }
func (z leveled) Warn(msg string, kv ...any)  { z.l.Debug().Fields(kv).Msg(msg) }
