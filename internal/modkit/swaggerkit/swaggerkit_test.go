package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pvcreek/internal/platform/config"
	perr "pvcreek/internal/platform/errors"
	phttp "pvcreek/internal/platform/net/http"
	"pvcreek/internal/platform/testkit"
)

func mounted(o Options) http.Handler {
	srv := phttp.NewServer(config.New())
	Mount(srv.Router(), o)
	return srv.Handler()
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func TestMount_Disabled(t *testing.T) {
	if rec := get(mounted(Options{}), "/api/docs/doc.json"); rec.Code != http.StatusNotFound {
		t.Fatalf("disabled docs = %d, want 404", rec.Code)
	}
}

func TestDocJSON_Shape(t *testing.T) {
	h := mounted(Options{Enabled: true, TitleSuffix: "(dev)"})

	if rec := get(h, "/api/docs"); rec.Code != http.StatusPermanentRedirect {
		t.Fatalf("/api/docs = %d, want 308", rec.Code)
	}

	rec := get(h, "/api/docs/doc.json")
	if rec.Code != 200 {
		t.Fatalf("doc.json = %d", rec.Code)
	}
	var doc map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("doc.json is not JSON: %v", err)
	}
	if doc["openapi"] != "3.0.3" {
		t.Fatalf("openapi = %v", doc["openapi"])
	}
	info := doc["info"].(map[string]any)
	if info["title"] != "pvcreek API (dev)" {
		t.Fatalf("title = %v", info["title"])
	}
	servers := doc["servers"].([]any)
	if servers[0].(map[string]any)["url"] != "/api/v1" {
		t.Fatalf("servers = %v", servers)
	}
	op := doc["paths"].(map[string]any)["/pageviews/{name}"].(map[string]any)["get"].(map[string]any)
	resps := op["responses"].(map[string]any)
	for _, code := range []string{"200", "400", "500"} {
		if _, ok := resps[code]; !ok {
			t.Fatalf("pageviews op lacks %s response", code)
		}
	}
}

func TestDocJSON_MutateAndBadDoc(t *testing.T) {
	mutate := func(doc map[string]any) { doc["x-mutated"] = true }
	rec := get(mounted(Options{Enabled: true, Mutate: mutate}), "/api/docs/doc.json")
	testkit.MustContain(t, rec.Body.String(), `"x-mutated":true`)

	testkit.Swap(t, &docReader, func() string { return "{nope" })
	if rec := get(mounted(Options{Enabled: true}), "/api/docs/doc.json"); rec.Code != 500 {
		t.Fatalf("bad doc = %d, want 500", rec.Code)
	}
}

func TestEnsureServers_DowngradesAndLifts(t *testing.T) {
	doc := map[string]any{"swagger": "2.0"}
	ensureServers(doc, "/x")
	if doc["openapi"] != "3.0.3" || doc["swagger"] != nil {
		t.Fatalf("swagger 2 not lifted: %v", doc)
	}
	doc = map[string]any{"openapi": "3.1.0", "servers": []any{}}
	ensureServers(doc, "/x")
	if doc["openapi"] != "3.0.3" {
		t.Fatalf("3.1 not pinned: %v", doc)
	}
}

func TestAddErrorResponseKeepsDeclared(t *testing.T) {
	declared := map[string]any{"description": "mine"}
	doc := map[string]any{"paths": map[string]any{
		"/a": map[string]any{"get": map[string]any{"responses": map[string]any{"400": declared}}},
		"/b": map[string]any{"post": map[string]any{}},
	}}
	addErrorResponse(doc, perr.ErrorCodeValidation, "bad")

	a := doc["paths"].(map[string]any)["/a"].(map[string]any)["get"].(map[string]any)["responses"].(map[string]any)
	if a["400"].(map[string]any)["description"] != "mine" {
		t.Fatalf("declared 400 was replaced: %v", a["400"])
	}
	b := doc["paths"].(map[string]any)["/b"].(map[string]any)["post"].(map[string]any)["responses"].(map[string]any)
	if b["400"] == nil {
		t.Fatalf("missing 400 not added: %v", b)
	}
}
