package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pvcreek/internal/platform/config"
	perr "pvcreek/internal/platform/errors"
	phttp "pvcreek/internal/platform/net/http"
	"pvcreek/internal/services/creek/domain"

	pvhttp "pvcreek/internal/services/api/pageviews/http"
)

const dump = "pageviews-20240801-130000.gz"

type fakeStream struct {
	recs   []domain.Record
	failAt int // 1 based; 0 never fails
	i      int
	closed bool
}

func (s *fakeStream) Next() (domain.Record, error) {
	if s.failAt > 0 && s.i+1 == s.failAt {
		return domain.Record{}, perr.Newf(perr.ErrorCodeMalformed, "line %d is malformed", s.i+1)
	}
	if s.i >= len(s.recs) {
		return domain.Record{}, io.EOF
	}
	s.i++
	return s.recs[s.i-1], nil
}
func (s *fakeStream) Close() error        { s.closed = true; return nil }
func (s *fakeStream) Stats() domain.Stats { return domain.Stats{Emitted: s.i} }
func (s *fakeStream) Name() string        { return dump }

type fakeStreamer struct {
	st      *fakeStream
	openErr error
	got     domain.Request
}

func (f *fakeStreamer) Open(_ context.Context, req domain.Request) (domain.Stream, error) {
	f.got = req
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.st, nil
}

type fakeCache struct {
	cached map[string]bool
}

func (c *fakeCache) IsCached(name string) (bool, error) { return c.cached[name], nil }
func (c *fakeCache) Download(_ context.Context, name string) (string, bool, error) {
	was := c.cached[name]
	c.cached[name] = true
	return "/cache/" + name, !was, nil
}

func records() []domain.Record {
	return []domain.Record{
		{DomainCode: "en", PageTitle: "Main_Page", ViewCount: 10, Language: "en", ProjectDomain: "wikipedia.org"},
		{DomainCode: "de.m", PageTitle: "Berlin", ViewCount: 3, Language: "de", ProjectDomain: "wikipedia.org", IsMobile: true},
	}
}

func newServer(d pvhttp.Deps) *phttp.Server {
	srv := phttp.NewServer(config.New().Prefix("PVCREEK_TEST_"))
	pvhttp.Register(srv.Router(), d)
	return srv
}

func do(srv *phttp.Server, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) phttp.Envelope {
	t.Helper()
	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestStreamWritesOneRecordPerLine(t *testing.T) {
	st := &fakeStream{recs: records()}
	fs := &fakeStreamer{st: st}
	srv := newServer(pvhttp.Deps{Streamer: fs, FlushEvery: 1})

	rec := do(srv, http.MethodGet, "/pageviews/"+dump+"?language=en&min_views=5&mobile=false&limit=10")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != phttp.ContentTypeNDJSON {
		t.Fatalf("Content-Type = %q", ct)
	}

	var got []domain.Record
	sc := bufio.NewScanner(rec.Body)
	for sc.Scan() {
		var r domain.Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		got = append(got, r)
	}
	if len(got) != 2 || got[1].PageTitle != "Berlin" || !got[1].IsMobile {
		t.Fatalf("records = %+v", got)
	}
	if !st.closed {
		t.Fatalf("stream was not closed")
	}

	req := fs.got
	if req.Name != dump || req.Limit != 10 {
		t.Fatalf("request = %+v", req)
	}
	if req.Records.Language.String() != "=en" || !req.Records.Views.Contains(5) || req.Records.Views.Contains(4) {
		t.Fatalf("record criteria = %+v", req.Records)
	}
	if !req.Records.Mobile.IsSet() || req.Records.Mobile.Want() {
		t.Fatalf("mobile = %+v", req.Records.Mobile)
	}
}

func TestStreamRejectsBadInputBeforeStreaming(t *testing.T) {
	srv := newServer(pvhttp.Deps{Streamer: &fakeStreamer{st: &fakeStream{}}})

	cases := []struct {
		name, target, field string
	}{
		{"bad dump name", "/pageviews/latest.gz", "name"},
		{"non integer", "/pageviews/" + dump + "?min_views=lots", "min_views"},
		{"bad bool", "/pageviews/" + dump + "?mobile=maybe", "mobile"},
		{"bad pattern", "/pageviews/" + dump + "?page_title_re=(", "page_title_re"},
		{"negative limit", "/pageviews/" + dump + "?limit=-1", "limit"},
		{"exact and pattern", "/pageviews/" + dump + "?project=a&project_re=b", "project"},
		{"inverted range", "/pageviews/" + dump + "?min_views=9&max_views=1", "min_views"},
	}
	for _, tc := range cases {
		rec := do(srv, http.MethodGet, tc.target)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400 (%s)", tc.name, rec.Code, rec.Body.String())
		}
		env := envelope(t, rec)
		if env.Code != perr.ErrorCodeValidation.String() || env.Field != tc.field {
			t.Fatalf("%s: envelope = %+v, want validation on %q", tc.name, env, tc.field)
		}
	}
}

func TestStreamOpenErrorUsesEnvelope(t *testing.T) {
	fs := &fakeStreamer{openErr: perr.NotFoundf("%s is not on the mirror", dump)}
	srv := newServer(pvhttp.Deps{Streamer: fs})

	rec := do(srv, http.MethodGet, "/pageviews/"+dump)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if env := envelope(t, rec); env.Code != perr.ErrorCodeNotFound.String() {
		t.Fatalf("code = %v", env.Code)
	}
}

func TestStreamFailureAfterFirstLineEndsWithErrorLine(t *testing.T) {
	st := &fakeStream{recs: records(), failAt: 2}
	srv := newServer(pvhttp.Deps{Streamer: &fakeStreamer{st: st}})

	rec := do(srv, http.MethodGet, "/pageviews/"+dump)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	var last phttp.StreamError
	if err := json.Unmarshal([]byte(lines[1]), &last); err != nil {
		t.Fatalf("decode error line: %v", err)
	}
	if last.Error.Code != perr.ErrorCodeMalformed || !strings.Contains(last.Error.Message, "malformed") {
		t.Fatalf("error line = %+v", last)
	}
	if !st.closed {
		t.Fatalf("stream was not closed")
	}
}

func TestStreamEmptyIsOK(t *testing.T) {
	srv := newServer(pvhttp.Deps{Streamer: &fakeStreamer{st: &fakeStream{}}})
	rec := do(srv, http.MethodGet, "/pageviews/"+dump)
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("empty stream = %d %q", rec.Code, rec.Body.String())
	}
}

func TestCacheRoutes(t *testing.T) {
	fc := &fakeCache{cached: map[string]bool{}}
	srv := newServer(pvhttp.Deps{Streamer: &fakeStreamer{}, Cache: fc})

	rec := do(srv, http.MethodGet, "/cache/"+dump)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	data, _ := json.Marshal(envelope(t, rec).Data)
	var c pvhttp.CachedResponse
	_ = json.Unmarshal(data, &c)
	if c.Name != dump || c.Cached {
		t.Fatalf("cached = %+v", c)
	}

	for i, want := range []bool{true, false} {
		rec = do(srv, http.MethodPost, "/cache/"+dump)
		if rec.Code != http.StatusOK {
			t.Fatalf("POST %d status = %d", i, rec.Code)
		}
		data, _ = json.Marshal(envelope(t, rec).Data)
		var d pvhttp.DownloadResponse
		_ = json.Unmarshal(data, &d)
		if d.Downloaded != want || d.Name != dump {
			t.Fatalf("POST %d = %+v, want downloaded=%v", i, d, want)
		}
		if strings.Contains(rec.Body.String(), "/cache/") {
			t.Fatalf("POST %d leaked the local path: %s", i, rec.Body.String())
		}
	}

	if rec := do(srv, http.MethodGet, "/cache/nope"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad name status = %d", rec.Code)
	}
}

func TestCacheRoutesWithoutCacheDir(t *testing.T) {
	srv := newServer(pvhttp.Deps{Streamer: &fakeStreamer{}})
	for _, m := range []string{http.MethodGet, http.MethodPost} {
		rec := do(srv, m, "/cache/"+dump)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s status = %d, want 503", m, rec.Code)
		}
		if env := envelope(t, rec); env.Code != perr.ErrorCodeUnavailable.String() {
			t.Fatalf("%s code = %v", m, env.Code)
		}
	}
}

func TestFilename(t *testing.T) {
	srv := newServer(pvhttp.Deps{Streamer: &fakeStreamer{}, BaseURL: "https://mirror.test/pv"})

	rec := do(srv, http.MethodGet, "/dumps/filename?hour=2024-08-01T13:45:00Z")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d %s", rec.Code, rec.Body.String())
	}
	data, _ := json.Marshal(envelope(t, rec).Data)
	var f pvhttp.FilenameResponse
	_ = json.Unmarshal(data, &f)
	if f.Name != dump || f.URL != "https://mirror.test/pv/2024/2024-08/"+dump || f.Hour != "2024-08-01T13:00:00Z" {
		t.Fatalf("filename = %+v", f)
	}

	if rec := do(srv, http.MethodGet, "/dumps/filename"); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing hour status = %d", rec.Code)
	}
	rec = do(srv, http.MethodGet, "/dumps/filename?hour=yesterday")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad hour status = %d", rec.Code)
	}
	if env := envelope(t, rec); env.Field != "hour" {
		t.Fatalf("bad hour field = %q", env.Field)
	}
}

func TestRegisterRequiresStreamer(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Register without a streamer should panic")
		}
	}()
	newServer(pvhttp.Deps{})
}
