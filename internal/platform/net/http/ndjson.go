package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "pvcreek/internal/platform/errors"
	pnet "pvcreek/internal/platform/net"
)

// ContentTypeNDJSON is the media type of newline delimited JSON
const ContentTypeNDJSON = "application/x-ndjson"

// NDJSON writes one JSON value per line and flushes every FlushEvery lines
// Nothing reaches the client before the first Write, so an early failure can
// still be answered with a regular envelope via RespondError
type NDJSON struct {
	w       stdhttp.ResponseWriter
	rc      *stdhttp.ResponseController
	enc     *json.Encoder
	every   int
	pending int
	lines   int
	started bool
}

// NewNDJSON wraps w; flushEvery <= 0 flushes after every line
func NewNDJSON(w stdhttp.ResponseWriter, flushEvery int) *NDJSON {
	if flushEvery <= 0 {
		flushEvery = 1
	}
	return &NDJSON{w: w, rc: stdhttp.NewResponseController(w), enc: json.NewEncoder(w), every: flushEvery}
}

// Started reports whether the status line has been written
func (s *NDJSON) Started() bool { return s.started }

// Lines is the number of values written so far
func (s *NDJSON) Lines() int { return s.lines }

func (s *NDJSON) start() {
	if s.started {
		return
	}
	s.started = true
	s.w.Header().Set("Content-Type", ContentTypeNDJSON)
	s.w.Header().Set("X-Content-Type-Options", "nosniff")
	s.w.WriteHeader(stdhttp.StatusOK)
}

// Write encodes v as one line
func (s *NDJSON) Write(v any) error {
	s.start()
	if err := s.enc.Encode(v); err != nil {
		return err
	}
	s.lines++
	s.pending++
	if s.pending >= s.every {
		return s.Flush()
	}
	return nil
}

// Flush pushes buffered lines to the client
// A writer that cannot flush is not an error
func (s *NDJSON) Flush() error {
	s.pending = 0
	if err := s.rc.Flush(); err != nil && err != stdhttp.ErrNotSupported {
		return err
	}
	return nil
}

// StreamError is the last line of a stream that failed after it started
type StreamError struct {
	Error     perr.Wire `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

// Fail ends the stream with err; before the first line it writes a normal error envelope
func (s *NDJSON) Fail(r *stdhttp.Request, err error) {
	if !s.started {
		RespondError(s.w, r, err)
		return
	}
	_ = s.enc.Encode(StreamError{Error: perr.WireFrom(err), RequestID: pnet.RequestID(r.Context())})
	_ = s.Flush()
}

// Close flushes whatever is left; a stream with no lines still answers 200
func (s *NDJSON) Close() error {
	s.start()
	return s.Flush()
}
