package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"pvcreek/internal/platform/logger"
	pnet "pvcreek/internal/platform/net"
)

// meter records what the handler wrote; Flush and Unwrap keep NDJSON streaming through it
type meter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (m *meter) WriteHeader(code int) {
	if m.status == 0 {
		m.status = code
	}
	m.ResponseWriter.WriteHeader(code)
}

func (m *meter) Write(b []byte) (int, error) {
	if m.status == 0 {
		m.status = http.StatusOK
	}
	n, err := m.ResponseWriter.Write(b)
	m.bytes += int64(n)
	return n, err
}

func (m *meter) Flush() { _ = http.NewResponseController(m.ResponseWriter).Flush() }

func (m *meter) Unwrap() http.ResponseWriter { return m.ResponseWriter }

// AccessLog logs one line per request on the request logger
// 5xx log at error and requests at or over slow at warn; slow <= 0 never warns
func AccessLog(slow time.Duration) MW {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := &meter{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(m, r)
			elapsed := time.Since(start)
			if m.status == 0 {
				m.status = http.StatusOK
			}

			log := logger.C(r.Context())
			var ev *zerolog.Event
			switch {
			case m.status >= http.StatusInternalServerError:
				ev = log.Error()
			case slow > 0 && elapsed >= slow:
				ev = log.Warn().Bool("slow", true)
			default:
				ev = log.Info()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", m.status).
				Int64("bytes", m.bytes).
				Dur("elapsed", elapsed).
				Msg("http: request")
		})
	}
}

// RequestLogger tags the request logger and the response with the request id; mount after RequestID
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := pnet.RequestID(r.Context()); id != "" {
			w.Header().Set("X-Request-ID", id)
			r = r.WithContext(logger.WithRequest(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
