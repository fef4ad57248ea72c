package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler is a plain handler function; routes register these
type Handler = func(http.ResponseWriter, *http.Request)

// Router is the routing surface modules mount against
type Router interface {
	Get(pattern string, h Handler)
	Post(pattern string, h Handler)
	Handle(pattern string, h http.Handler)
	Use(mw ...func(http.Handler) http.Handler)
	// Group scopes middleware without adding a path segment
	Group(fn func(Router))
	Route(pattern string, fn func(Router))
}

// AdaptChi exposes a chi router as Router
func AdaptChi(r chi.Router) Router { return chiRouter{r} }

type chiRouter struct{ chi.Router }

func (c chiRouter) Get(p string, h Handler)  { c.Router.Get(p, h) }
func (c chiRouter) Post(p string, h Handler) { c.Router.Post(p, h) }

func (c chiRouter) Group(fn func(Router)) {
	c.Router.Group(func(sub chi.Router) { fn(chiRouter{sub}) })
}

func (c chiRouter) Route(pattern string, fn func(Router)) {
	c.Router.Route(pattern, func(sub chi.Router) { fn(chiRouter{sub}) })
}

// URLParam returns the path parameter key of r
func URLParam(r *http.Request, key string) string { return chi.URLParam(r, key) }
