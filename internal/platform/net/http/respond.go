// Package http is the chi backed server with its router seam and JSON envelope
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "pvcreek/internal/platform/errors"
	"pvcreek/internal/platform/logger"
	pnet "pvcreek/internal/platform/net"
	"pvcreek/internal/platform/net/http/bind"
)

// Envelope wraps every JSON response body; errors fill Code, Error and Field
type Envelope struct {
	StatusCode int    `json:"status_code"`
	Status     string `json:"status"`
	Code       string `json:"code,omitempty"`
	Error      string `json:"error,omitempty"`
	Field      string `json:"field,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	Data       any    `json:"data,omitempty"`
}

func envelope(r *stdhttp.Request, status int) Envelope {
	return Envelope{
		StatusCode: status,
		Status:     stdhttp.StatusText(status),
		RequestID:  pnet.RequestID(r.Context()),
	}
}

// JSON writes v with status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondOK writes data in a 200 envelope
func RespondOK(w stdhttp.ResponseWriter, r *stdhttp.Request, data any) {
	env := envelope(r, stdhttp.StatusOK)
	env.Data = data
	JSON(w, env.StatusCode, env)
}

// RespondError writes err in an envelope under the status its code maps to
// Server side failures are logged with their op; recovered panics are logged by the middleware
func RespondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	wire := perr.WireFrom(err)
	if wire.Code.Status() >= stdhttp.StatusInternalServerError && wire.Code != perr.ErrorCodePanic {
		ev := logger.C(r.Context()).Error().Err(err).Stringer("code", wire.Code)
		if e, ok := perr.As(err); ok && e.Op() != "" {
			ev = ev.Str("op", e.Op())
		}
		ev.Msg("http: request failed")
	}
	env := envelope(r, wire.Code.Status())
	env.Code, env.Error, env.Field = wire.Code.String(), wire.Message, wire.Field
	JSON(w, env.StatusCode, env)
}

// Response is what return-style handlers produce
// A Body that is an error is written with RespondError
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

func OK(data any) Response      { return Response{Status: stdhttp.StatusOK, Body: data} }
func Created(data any) Response { return Response{Status: stdhttp.StatusCreated, Body: data} }
func Error(err error) Response  { return Response{Body: err} }

// Handle adapts a return-style handler
func Handle(h func(*stdhttp.Request) Response) Handler {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		resp := h(r)
		for k, vs := range resp.Header {
			w.Header()[k] = append(w.Header()[k], vs...)
		}
		if err, ok := resp.Body.(error); ok {
			RespondError(w, r, err)
			return
		}
		status := resp.Status
		if status == 0 {
			status = stdhttp.StatusOK
		}
		if status == stdhttp.StatusNoContent {
			w.WriteHeader(status)
			return
		}
		env := envelope(r, status)
		env.Data = resp.Body
		JSON(w, status, env)
	}
}

// Call adapts fn: an error becomes an error envelope, a Response is written as is, anything else is 200 data
func Call(fn func(*stdhttp.Request) (any, error)) Handler {
	return Handle(func(r *stdhttp.Request) Response { return result(fn(r)) })
}

// QueryHandler binds and validates the query string into T before calling fn
func QueryHandler[T any](fn func(*stdhttp.Request, T) (any, error)) Handler {
	return Handle(func(r *stdhttp.Request) Response {
		in, err := bind.Query[T](r)
		if err != nil {
			return Error(err)
		}
		return result(fn(r, in))
	})
}

func result(out any, err error) Response {
	if err != nil {
		return Error(err)
	}
	if resp, ok := out.(Response); ok {
		return resp
	}
	return OK(out)
}

// GetJSON routes GET path to fn through Call
func GetJSON(r Router, path string, fn func(*stdhttp.Request) (any, error)) { r.Get(path, Call(fn)) }

// PostJSON routes POST path to fn through Call
func PostJSON(r Router, path string, fn func(*stdhttp.Request) (any, error)) { r.Post(path, Call(fn)) }

// GetQuery routes GET path to fn through QueryHandler
func GetQuery[T any](r Router, path string, fn func(*stdhttp.Request, T) (any, error)) {
	r.Get(path, QueryHandler(fn))
}
