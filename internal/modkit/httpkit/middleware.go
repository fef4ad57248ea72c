package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"pvcreek/internal/platform/net/middleware"
)

// StackOptions tunes the shared middleware stack
type StackOptions struct {
	CORSOrigins []string
	SlowRequest time.Duration
}

// CommonStack returns the middleware every route gets
// there is no request timeout here; streaming routes may run for minutes
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// correlation
		middleware.RequestID,
		middleware.RequestLogger,
		middleware.RealIP,

		// the access log sits outside recovery so a panic is still logged as a 500
		middleware.AccessLog(o.SlowRequest),
		middleware.RecoverJSON,

		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}),
		middleware.Heartbeat("/ping"),
		middleware.StripSlashes,
	}
}

// JSONStack is for bounded request/response routes
// timeout <= 0 disables the deadline
func JSONStack(timeout time.Duration) []func(http.Handler) http.Handler {
	mw := []func(http.Handler) http.Handler{
		middleware.NoCache,
		middleware.Compress(flate.BestSpeed, "application/json"),
	}
	if timeout > 0 {
		mw = append(mw, middleware.Timeout(timeout))
	}
	return mw
}

// StreamStack is for long lived NDJSON routes; maxStreams <= 0 is unlimited
func StreamStack(maxStreams int) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.NoCache,
		middleware.Throttle(maxStreams),
	}
}
