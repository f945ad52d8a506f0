package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"platewise/internal/platform/net/middleware"
)

// CommonStack is the baseline middleware for versioned API routes
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RequestLogger,
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: 1500 * time.Millisecond}),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: []string{"*"}}),
		middleware.Compress(flate.BestSpeed),
		middleware.Timeout(30 * time.Second),
	}
}
