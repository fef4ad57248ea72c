// Package filter selects raw lines before decoding and records after it
//
// Both surfaces AND every set criterion together and leave the stream
// untouched when nothing is set. Patterns use regexp2 syntax and are compiled
// when the filter is built, so a bad expression fails before iteration starts.
// Every pattern runs under a match timeout; a match that times out ends the
// stream with a MatchError instead of silently dropping the item.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"pvcreek/internal/core/pageviews"
	"pvcreek/internal/core/stream"
	perr "pvcreek/internal/platform/errors"
)

// DefaultMatchTimeout bounds one pattern evaluation against one field or line
const DefaultMatchTimeout = 250 * time.Millisecond

// PatternError reports a criterion whose expression does not compile
type PatternError struct {
	Field string
	Expr  string
	Err   error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("filter %s: bad pattern %q: %v", e.Field, e.Expr, e.Err)
}

// Unwrap returns the compiler error
func (e *PatternError) Unwrap() error { return e.Err }

// Code classifies the error for transports
func (e *PatternError) Code() perr.ErrorCode { return perr.ErrorCodeInvalidArgument }

// MatchError reports a pattern that could not be evaluated, usually because
// it ran past the match timeout
type MatchError struct {
	Field string
	Expr  string
	Err   error
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("filter %s: pattern %q: %v", e.Field, e.Expr, e.Err)
}

// Unwrap returns the engine error
func (e *MatchError) Unwrap() error { return e.Err }

// Code classifies the error for transports; the caller supplied the pattern
func (e *MatchError) Code() perr.ErrorCode { return perr.ErrorCodeInvalidArgument }

type settings struct {
	timeout time.Duration
}

// Option tunes how filters are compiled
type Option func(*settings)

// WithMatchTimeout sets the per-evaluation pattern timeout; d <= 0 keeps the default
func WithMatchTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{timeout: DefaultMatchTimeout}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// pattern is one compiled user expression
type pattern struct {
	field string
	expr  string
	re    *regexp2.Regexp
}

func compilePattern(field, expr string, cfg settings) (*pattern, error) {
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return nil, &PatternError{Field: field, Expr: expr, Err: err}
	}
	re.MatchTimeout = cfg.timeout
	return &pattern{field: field, expr: expr, re: re}, nil
}

func (p *pattern) fail(err error) error {
	return &MatchError{Field: p.field, Expr: p.expr, Err: err}
}

// search reports a match anywhere in s
func (p *pattern) search(s string) (bool, error) {
	ok, err := p.re.MatchString(s)
	if err != nil {
		return false, p.fail(err)
	}
	return ok, nil
}

// prefix reports a match starting at the first rune of s; the leftmost match
// starts at 0 whenever any match does
func (p *pattern) prefix(s string) (bool, error) {
	m, err := p.re.FindStringMatch(s)
	if err != nil {
		return false, p.fail(err)
	}
	return m != nil && m.Index == 0, nil
}

// LineFilter is a compiled LineCriteria
type LineFilter struct {
	checks []func(string) (bool, error)
}

// NewLineFilter compiles c
func NewLineFilter(c LineCriteria, opts ...Option) (*LineFilter, error) {
	cfg := newSettings(opts)
	f := &LineFilter{}
	if p := c.Prefix; p != "" {
		f.checks = append(f.checks, func(s string) (bool, error) { return strings.HasPrefix(s, p), nil })
	}
	if sub := c.Contains; sub != "" {
		f.checks = append(f.checks, func(s string) (bool, error) { return strings.Contains(s, sub), nil })
	}
	if c.Regex != "" {
		p, err := compilePattern("line", c.Regex, cfg)
		if err != nil {
			return nil, err
		}
		f.checks = append(f.checks, p.search)
	}
	if custom := c.Custom; custom != nil {
		f.checks = append(f.checks, func(s string) (bool, error) { return custom(s), nil })
	}
	return f, nil
}

// Keep reports whether line passes every check
func (f *LineFilter) Keep(line string) (bool, error) {
	return all(f.checks, line)
}

// Empty reports whether the filter has no checks
func (f *LineFilter) Empty() bool { return len(f.checks) == 0 }

// Apply wraps src; an empty filter returns src itself
func (f *LineFilter) Apply(src stream.Source[string]) stream.Source[string] {
	if f.Empty() {
		return src
	}
	return stream.Where(src, f.Keep)
}

// RecordFilter is a compiled RecordCriteria
type RecordFilter struct {
	checks []func(pageviews.Record) (bool, error)
}

type stringField struct {
	name string
	pick func(RecordCriteria) StringMatch
	get  func(pageviews.Record) string
}

// string fields share one evaluation path
var stringFields = []stringField{
	{"domain_code", func(c RecordCriteria) StringMatch { return c.DomainCode }, func(r pageviews.Record) string { return r.DomainCode }},
	{"page_title", func(c RecordCriteria) StringMatch { return c.PageTitle }, func(r pageviews.Record) string { return r.PageTitle }},
	{"language", func(c RecordCriteria) StringMatch { return c.Language }, func(r pageviews.Record) string { return r.Language }},
	{"project_domain", func(c RecordCriteria) StringMatch { return c.ProjectDomain }, func(r pageviews.Record) string { return r.ProjectDomain }},
}

// NewRecordFilter compiles c
func NewRecordFilter(c RecordCriteria, opts ...Option) (*RecordFilter, error) {
	cfg := newSettings(opts)
	f := &RecordFilter{}
	for _, sf := range stringFields {
		check, err := compileString(sf, sf.pick(c), cfg)
		if err != nil {
			return nil, err
		}
		if check != nil {
			f.checks = append(f.checks, check)
		}
	}
	if rg := c.Views; rg.IsSet() {
		f.checks = append(f.checks, func(r pageviews.Record) (bool, error) { return rg.Contains(r.ViewCount), nil })
	}
	if m := c.Mobile; m.IsSet() {
		want := m.Want()
		f.checks = append(f.checks, func(r pageviews.Record) (bool, error) { return r.IsMobile == want, nil })
	}
	return f, nil
}

func compileString(sf stringField, m StringMatch, cfg settings) (func(pageviews.Record) (bool, error), error) {
	get := sf.get
	switch m.kind {
	case matchExact:
		want := m.value
		return func(r pageviews.Record) (bool, error) { return get(r) == want, nil }, nil
	case matchPattern:
		// compiled unwrapped so the expression cannot close an anchor group
		p, err := compilePattern(sf.name, m.value, cfg)
		if err != nil {
			return nil, err
		}
		return func(r pageviews.Record) (bool, error) { return p.prefix(get(r)) }, nil
	}
	return nil, nil
}

// Keep reports whether r passes every check
func (f *RecordFilter) Keep(r pageviews.Record) (bool, error) {
	return all(f.checks, r)
}

// Empty reports whether the filter has no checks
func (f *RecordFilter) Empty() bool { return len(f.checks) == 0 }

// Apply wraps src; an empty filter returns src itself
func (f *RecordFilter) Apply(src stream.Source[pageviews.Record]) stream.Source[pageviews.Record] {
	if f.Empty() {
		return src
	}
	return stream.Where(src, f.Keep)
}

func all[T any](checks []func(T) (bool, error), v T) (bool, error) {
	for _, check := range checks {
		ok, err := check(v)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Lines compiles c and applies it to src
func Lines(src stream.Source[string], c LineCriteria, opts ...Option) (stream.Source[string], error) {
	f, err := NewLineFilter(c, opts...)
	if err != nil {
		return nil, err
	}
	return f.Apply(src), nil
}

// Records compiles c and applies it to src
func Records(src stream.Source[pageviews.Record], c RecordCriteria, opts ...Option) (stream.Source[pageviews.Record], error) {
	f, err := NewRecordFilter(c, opts...)
	if err != nil {
		return nil, err
	}
	return f.Apply(src), nil
}

// CheckPattern reports whether expr compiles with the syntax filters use
func CheckPattern(expr string) error {
	_, err := regexp2.Compile(expr, regexp2.None)
	return err
}
