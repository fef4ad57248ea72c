// Package swaggerkit mounts the Swagger UI and the OpenAPI document
package swaggerkit

import (
	"net/http"

	phttp "pvcreek/internal/platform/net/http"
	docs "pvcreek/internal/services/api/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Options configures the docs mount
type Options struct {
	Enabled bool
	// BaseURL is the servers entry injected into the document
	BaseURL string
	// TitleSuffix is appended to the document title, e.g. an environment name
	TitleSuffix string
	// Mutate, when set, gets the last word on the served document
	Mutate func(doc map[string]any)
}

// Mount serves the UI under /api/docs/ and the document at /api/docs/doc.json
func Mount(r phttp.Router, o Options) {
	if !o.Enabled {
		return
	}
	if o.BaseURL == "" {
		o.BaseURL = "/api/v1"
	}
	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", serveDocJSON(o))
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName(docs.SwaggerInfo.InstanceName()),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}
