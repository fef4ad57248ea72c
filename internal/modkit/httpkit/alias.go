// Package httpkit provides handler and routing helpers that alias the platform http package
// use these from modules so they do not import internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "pvcreek/internal/platform/net/http"
	"pvcreek/internal/platform/net/http/bind"
)

type (
	// Response is the HTTP response type
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is a re-export of the platform router seam
	Router = phttp.Router

	// NDJSON is the streaming line writer
	NDJSON = phttp.NDJSON

	// FieldLevel is handed to custom validation funcs
	FieldLevel = bind.FieldLevel
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// Created returns a 201 response
func Created(data any) Response { return phttp.Created(data) }

// Error returns a response that maps an error to status and envelope
func Error(err error) Response { return phttp.Error(err) }

// Call adapts a handler that takes no body
func Call(fn func(*http.Request) (any, error)) Handler {
	return phttp.Call(fn)
}

// Handle lets you directly adapt a Response-returning function if you prefer
func Handle(fn func(*http.Request) Response) Handler {
	return phttp.Handle(fn)
}

// Stream starts an NDJSON writer over w
func Stream(w http.ResponseWriter, flushEvery int) *NDJSON {
	return phttp.NewNDJSON(w, flushEvery)
}

// Param returns a path parameter of r
func Param(r *http.Request, key string) string { return phttp.URLParam(r, key) }

// Fail writes err as an envelope on a non streaming route
func Fail(w http.ResponseWriter, r *http.Request, err error) { phttp.RespondError(w, r, err) }

// Query binds and validates the query string of r into T
func Query[T any](r *http.Request) (T, error) { return bind.Query[T](r) }

// Validate runs struct validation on v
func Validate(v any) error { return bind.Validate(v) }

// RegisterValidation adds a custom validation tag with its message
func RegisterValidation(tag string, fn func(FieldLevel) bool, msg string) error {
	return bind.RegisterValidation(tag, fn, msg)
}
