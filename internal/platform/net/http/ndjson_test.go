package http_test

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "pvcreek/internal/platform/errors"
	phttp "pvcreek/internal/platform/net/http"
)

func TestNDJSON_WritesLinesAndFlushes(t *testing.T) {
	rec := httptest.NewRecorder()
	s := phttp.NewNDJSON(rec, 2)

	if s.Started() {
		t.Fatalf("stream started before the first write")
	}
	for i := 0; i < 3; i++ {
		if err := s.Write(map[string]int{"i": i}); err != nil {
			t.Fatalf("Write(%d) = %v", i, err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close = %v", err)
	}

	if rec.Header().Get("Content-Type") != phttp.ContentTypeNDJSON {
		t.Fatalf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
	if !rec.Flushed {
		t.Fatalf("recorder never flushed")
	}
	want := "{\"i\":0}\n{\"i\":1}\n{\"i\":2}\n"
	if rec.Body.String() != want || s.Lines() != 3 {
		t.Fatalf("body = %q (%d lines), want %q", rec.Body.String(), s.Lines(), want)
	}
}

func TestNDJSON_FailBeforeStartIsEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	s := phttp.NewNDJSON(rec, 0)
	s.Fail(httptest.NewRequest("GET", "/", nil), perr.NotFoundf("no such dump"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
}

func TestNDJSON_FailMidStreamAppendsErrorLine(t *testing.T) {
	rec := httptest.NewRecorder()
	s := phttp.NewNDJSON(rec, 0)
	_ = s.Write("first")
	s.Fail(httptest.NewRequest("GET", "/", nil), perr.Newf(perr.ErrorCodeMalformed, "bad row"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 once streaming", rec.Code)
	}
	sc := bufio.NewScanner(strings.NewReader(rec.Body.String()))
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if len(lines) != 2 || lines[0] != `"first"` {
		t.Fatalf("lines = %q", lines)
	}
	var last phttp.StreamError
	if err := json.Unmarshal([]byte(lines[1]), &last); err != nil {
		t.Fatalf("last line %q: %v", lines[1], err)
	}
	if last.Error.Message != "bad row" || last.Error.Code != perr.ErrorCodeMalformed {
		t.Fatalf("last = %+v", last)
	}
	if !strings.Contains(lines[1], `"code":"malformed"`) {
		t.Fatalf("last line %q lacks the code name", lines[1])
	}
}

func TestNDJSON_EmptyStreamStillAnswers(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := phttp.NewNDJSON(rec, 0).Close(); err != nil {
		t.Fatalf("Close = %v", err)
	}
	if rec.Code != 200 || rec.Body.Len() != 0 {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
}
