// Package middleware adapts chi and go-chi/cors middleware and adds the access log and JSON recovery
package middleware

import (
	"net/http"
	"time"

	pstrings "pvcreek/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// MW is one middleware layer
type MW = func(http.Handler) http.Handler

var (
	// RequestID reads X-Request-Id or mints one, and stores it on the context
	RequestID MW = chimw.RequestID
	// RealIP trusts X-Forwarded-For and X-Real-IP
	RealIP       MW = chimw.RealIP
	NoCache      MW = chimw.NoCache
	StripSlashes MW = chimw.StripSlashes
)

// Heartbeat answers GET path with 200 before routing
func Heartbeat(path string) MW { return chimw.Heartbeat(path) }

// Timeout cancels the request context after d; keep it off streaming routes
func Timeout(d time.Duration) MW { return chimw.Timeout(d) }

// Compress encodes responses of the listed content types
func Compress(level int, types ...string) MW { return chimw.NewCompressor(level, types...).Handler }

// Throttle caps in flight requests, answering 429 beyond limit; limit <= 0 is unlimited
func Throttle(limit int) MW {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return chimw.Throttle(limit)
}

// CORSOptions is the part of go-chi/cors the API sets; empty lists take read only defaults
type CORSOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	MaxAge         int
}

func CORS(o CORSOptions) MW {
	return chicors.Handler(chicors.Options{
		AllowedOrigins: pstrings.IfEmpty(o.AllowedOrigins, []string{"*"}),
		AllowedMethods: pstrings.IfEmpty(o.AllowedMethods, []string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		AllowedHeaders: pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Content-Type", "X-Request-ID"}),
		ExposedHeaders: pstrings.IfEmpty(o.ExposedHeaders, []string{"X-Request-ID"}),
		MaxAge:         o.MaxAge,
	})
}
