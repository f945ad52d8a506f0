package middleware

import (
	"net/http"
	"runtime/debug"

	perr "platewise/internal/platform/errors"
	"platewise/internal/platform/logger"
	phttp "platewise/internal/platform/net/http"
	pnet "platewise/internal/platform/net"
)

// RecoverJSON turns panics into the standard JSON 500 envelope and logs the stack
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			reqID := pnet.RequestID(r.Context())
			logger.C(r.Context()).Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if reqID != "" {
				w.Header().Set("X-Request-ID", reqID)
			}
			err := perr.PanicErrf("panic recovered")
			phttp.JSON(w, http.StatusInternalServerError, phttp.Envelope{
				StatusCode: http.StatusInternalServerError,
				Status:     http.StatusText(http.StatusInternalServerError),
				Code:       perr.CodeOf(err),
				Error:      err.Error(),
				RequestID:  reqID,
			})
		}()
		next.ServeHTTP(w, r)
	})
}
