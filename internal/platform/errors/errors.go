// Package errors carries a classified error type shared by the pipeline, the CLIs and the API
//
// Import it as perr
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies a failure; the wire form is its name
type ErrorCode uint16

// Codes are append only
const (
	ErrorCodeUnknown ErrorCode = iota
	// ErrorCodePanic is a panic recovered by middleware
	ErrorCodePanic
	// ErrorCodeUnavailable is a transient failure; a retry may succeed
	ErrorCodeUnavailable
	// ErrorCodeTooManyRequests is mirror side rate limiting
	ErrorCodeTooManyRequests
	// ErrorCodeInvalidArgument is a well formed but unusable input (file name, hour, pattern)
	ErrorCodeInvalidArgument
	// ErrorCodeValidation is a request that fails binding or validation
	ErrorCodeValidation
	ErrorCodeNotFound
	// ErrorCodeUpstream is an unexpected mirror response
	ErrorCodeUpstream
	// ErrorCodeMalformed is dump content outside the pageviews format
	ErrorCodeMalformed
	// ErrorCodeDB is a sink database failure
	ErrorCodeDB

	numCodes
)

var codeInfo = [numCodes]struct {
	name   string
	status int
}{
	ErrorCodeUnknown:         {"unknown", http.StatusInternalServerError},
	ErrorCodePanic:           {"panic", http.StatusInternalServerError},
	ErrorCodeUnavailable:     {"unavailable", http.StatusServiceUnavailable},
	ErrorCodeTooManyRequests: {"too_many_requests", http.StatusTooManyRequests},
	ErrorCodeInvalidArgument: {"invalid_argument", http.StatusUnprocessableEntity},
	ErrorCodeValidation:      {"validation", http.StatusBadRequest},
	ErrorCodeNotFound:        {"not_found", http.StatusNotFound},
	ErrorCodeUpstream:        {"upstream", http.StatusBadGateway},
	ErrorCodeMalformed:       {"malformed", http.StatusBadGateway},
	ErrorCodeDB:              {"db", http.StatusInternalServerError},
}

func (c ErrorCode) known() ErrorCode {
	if c >= numCodes {
		return ErrorCodeUnknown
	}
	return c
}

func (c ErrorCode) String() string { return codeInfo[c.known()].name }

// Status is the HTTP status the API answers with for c
func (c ErrorCode) Status() int { return codeInfo[c.known()].status }

func (c ErrorCode) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText decodes a code name; unrecognised names become ErrorCodeUnknown
func (c *ErrorCode) UnmarshalText(b []byte) error {
	*c = ErrorCodeUnknown
	for i := range codeInfo {
		if codeInfo[i].name == string(b) {
			*c = ErrorCode(i)
			break
		}
	}
	return nil
}

// Coder lets error types outside this package carry a classification
type Coder interface {
	Code() ErrorCode
}

// Error is a classified error
// field names the offending input, op the failing operation; both are optional
type Error struct {
	code  ErrorCode
	msg   string
	cause error
	field string
	op    string
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.cause != nil:
		return e.msg + ": " + e.cause.Error()
	default:
		return e.msg
	}
}

func (e *Error) Unwrap() error   { return e.cause }
func (e *Error) Code() ErrorCode { return e.code }
func (e *Error) Field() string   { return e.field }
func (e *Error) Op() string      { return e.op }

// Wire is the JSON body of an error
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// WireFrom renders any error for the wire; nil gives the zero Wire
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	w := Wire{Code: CodeOf(err), Message: err.Error()}
	if e, ok := As(err); ok {
		w.Field = e.field
	}
	return w
}

// As finds the outermost *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrs.As(err, &e)
	return e, ok
}

// CodeOf classifies err by the first Coder in its chain (an *Error is one), else Unknown
func CodeOf(err error) ErrorCode {
	var c Coder
	if stderrs.As(err, &c) {
		return c.Code()
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err classifies as code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// HTTPStatus maps err to a response status
func HTTPStatus(err error) int { return CodeOf(err).Status() }

// Retryable reports whether repeating the operation may succeed
func Retryable(err error) bool {
	c := CodeOf(err)
	return c == ErrorCodeUnavailable || c == ErrorCodeTooManyRequests
}

func with(err error, set func(*Error)) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	cp := *e
	set(&cp)
	return &cp
}

// WithField returns a copy of err's *Error naming field; other errors pass through
func WithField(err error, field string) error {
	return with(err, func(e *Error) { e.field = field })
}

// WithOp returns a copy of err's *Error tagged with op; other errors pass through
func WithOp(err error, op string) error {
	return with(err, func(e *Error) { e.op = op })
}

func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrapf classifies cause under a new message; the cause stays reachable through Unwrap
func Wrapf(cause error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), cause: cause}
}

func NotFoundf(format string, a ...any) error    { return Newf(ErrorCodeNotFound, format, a...) }
func InvalidArgf(format string, a ...any) error  { return Newf(ErrorCodeInvalidArgument, format, a...) }
func Validationf(format string, a ...any) error  { return Newf(ErrorCodeValidation, format, a...) }
func Unavailablef(format string, a ...any) error { return Newf(ErrorCodeUnavailable, format, a...) }
