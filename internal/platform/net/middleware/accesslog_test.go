package middleware_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pvcreek/internal/platform/logger"
	"pvcreek/internal/platform/net/middleware"
	"pvcreek/internal/platform/testkit"
)

func TestAccessLog_PassThroughStatusAndBody(t *testing.T) {
	mw := middleware.AccessLog(0)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, "ok")
	})

	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201 got %d", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Fatalf("expected body ok got %q", rr.Body.String())
	}
}

func TestAccessLog_SlowMarkDoesNotAffectResponse(t *testing.T) {
	logBuf.Reset()
	mw := middleware.AccessLog(time.Nanosecond)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Microsecond)
		_, _ = io.WriteString(w, "slow")
	})

	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/slow", nil))

	if rr.Code != http.StatusOK || rr.Body.String() != "slow" {
		t.Fatalf("got %d %q, want 200 slow", rr.Code, rr.Body.String())
	}
	testkit.MustContain(t, logBuf.String(), `"slow":true`)
}

func TestAccessLog_ForwardsFlush(t *testing.T) {
	mw := middleware.AccessLog(0)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "line\n")
		if err := http.NewResponseController(w).Flush(); err != nil {
			t.Errorf("Flush through access log = %v", err)
		}
	})

	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stream", nil))

	if !rr.Flushed {
		t.Fatalf("recorder was not flushed")
	}
}

func TestRequestLogger_TagsContextAndHeader(t *testing.T) {
	logBuf.Reset()

	var seen context.Context
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Context()
		logger.C(r.Context()).Info().Msg("inside")
	})

	h := middleware.RequestID(middleware.RequestLogger(next))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if seen == nil {
		t.Fatalf("handler not reached")
	}
	if got := rr.Header().Get("X-Request-ID"); got != "abc-1" {
		t.Fatalf("X-Request-ID = %q, want abc-1", got)
	}
	testkit.MustContain(t, logBuf.String(), `"request_id":"abc-1"`)
}

func TestAccessLog_ServerErrorsLogAtError(t *testing.T) {
	logBuf.Reset()
	mw := middleware.AccessLog(0)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	mw(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	out := logBuf.String()
	testkit.MustContain(t, out, `"level":"error"`)
	testkit.MustContain(t, out, `"status":502`)
}
