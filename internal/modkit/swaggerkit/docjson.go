package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	perr "pvcreek/internal/platform/errors"
	docs "pvcreek/internal/services/api/docs"
)

// docReader returns the generated document; tests swap it
var docReader = func() string { return docs.SwaggerInfo.ReadDoc() }

// defaultErrors are attached to every operation that does not declare them
var defaultErrors = []struct {
	code perr.ErrorCode
	msg  string
}{
	{perr.ErrorCodeValidation, "min_views must be at least 0"},
	{perr.ErrorCodePanic, "panic recovered"},
}

func serveDocJSON(o Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc map[string]any
		if err := json.Unmarshal([]byte(docReader()), &doc); err != nil {
			http.Error(w, "openapi document is not valid JSON", http.StatusInternalServerError)
			return
		}
		shapeDoc(doc, o)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(doc)
	}
}

// shapeDoc rewrites the swag output into what the bundled UI and clients expect
func shapeDoc(doc map[string]any, o Options) {
	ensureServers(doc, o.BaseURL)
	if o.TitleSuffix != "" {
		info := child(doc, "info")
		if t, ok := info["title"].(string); ok {
			info["title"] = t + " " + o.TitleSuffix
		}
	}
	schemas := child(child(doc, "components"), "schemas")
	if _, ok := schemas["ErrorResponse"]; !ok {
		schemas["ErrorResponse"] = errorSchema()
	}
	for _, d := range defaultErrors {
		addErrorResponse(doc, d.code, d.msg)
	}
	if o.Mutate != nil {
		o.Mutate(doc)
	}
}

// ensureServers pins the document to OAS 3.0.3 with a servers entry
// the bundled swagger UI does not render 3.1
func ensureServers(doc map[string]any, url string) {
	delete(doc, "swagger")
	if v, _ := doc["openapi"].(string); v == "" || strings.HasPrefix(v, "3.1") {
		doc["openapi"] = "3.0.3"
	}
	if _, ok := doc["servers"]; !ok {
		doc["servers"] = []any{map[string]any{"url": url}}
	}
}

// child returns m[key] as an object, creating it when absent
func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}

func errorSchema() map[string]any {
	prop := func(typ string) map[string]any { return map[string]any{"type": typ} }
	return map[string]any{
		"type":        "object",
		"description": "Error envelope returned by every JSON route",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer", "format": "int32"},
			"status":      prop("string"),
			"code":        prop("string"),
			"error":       prop("string"),
			"field":       prop("string"),
			"request_id":  prop("string"),
		},
		"required": []any{"status_code", "status"},
	}
}

// addErrorResponse sets the envelope for code's status on every operation lacking one
func addErrorResponse(doc map[string]any, code perr.ErrorCode, msg string) {
	paths, ok := doc["paths"].(map[string]any)
	if !ok {
		return
	}
	status := code.Status()
	key := http.StatusText(status)
	sc := strconv.Itoa(status)
	resp := map[string]any{
		"description": key,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
				"example": map[string]any{
					"status_code": status,
					"status":      key,
					"code":        code.String(),
					"error":       msg,
				},
			},
		},
	}
	for _, item := range paths {
		ops, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, op := range ops {
			if op, ok := op.(map[string]any); ok {
				responses := child(op, "responses")
				if _, set := responses[sc]; !set {
					responses[sc] = resp
				}
			}
		}
	}
}
