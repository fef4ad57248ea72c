package middleware

import (
	"net/http"
	"runtime/debug"

	perr "pvcreek/internal/platform/errors"
	"pvcreek/internal/platform/logger"
	phttp "pvcreek/internal/platform/net/http"
)

// RecoverJSON turns a handler panic into a 500 panic envelope and logs the stack
// http.ErrAbortHandler is re-raised so net/http can drop the connection
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			switch v {
			case nil:
				return
			case http.ErrAbortHandler:
				panic(v)
			}
			logger.C(r.Context()).Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("http: panic recovered")
			phttp.RespondError(w, r, perr.New(perr.ErrorCodePanic, "panic recovered"))
		}()
		next.ServeHTTP(w, r)
	})
}
