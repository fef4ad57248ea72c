package pageviews

import (
	"errors"

	"pvcreek/internal/core/domaincode"
	"pvcreek/internal/core/stream"
)

// Parser maps a line source to records one line at a time
// By default the first bad line aborts the stream; see WithSkipMalformed
type Parser struct {
	src     stream.Source[string]
	onSkip  func(line string, err error)
	skip    bool
	err     error
	parsed  int
	skipped int
}

// ParseOption configures a Parser
type ParseOption func(*Parser)

// WithSkipMalformed drops rows that fail to parse instead of aborting
// fn, when non nil, sees every dropped line and its error
func WithSkipMalformed(fn func(line string, err error)) ParseOption {
	return func(p *Parser) {
		p.skip = true
		p.onSkip = fn
	}
}

// Parse wraps src in a Parser
func Parse(src stream.Source[string], opts ...ParseOption) *Parser {
	p := &Parser{src: src}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Next returns the next record, io.EOF at the end, or the first parse error
func (p *Parser) Next() (Record, error) {
	if p.err != nil {
		return Record{}, p.err
	}
	for {
		line, err := p.src.Next()
		if err != nil {
			p.err = err
			return Record{}, err
		}
		rec, err := ParseLine(line)
		if err == nil {
			p.parsed++
			return rec, nil
		}
		if p.skip && IsRowError(err) {
			p.skipped++
			if p.onSkip != nil {
				p.onSkip(line, err)
			}
			continue
		}
		p.err = err
		return Record{}, err
	}
}

// Stats reports records produced and rows dropped so far
func (p *Parser) Stats() (parsed, skipped int) { return p.parsed, p.skipped }

// IsRowError reports whether err is a per row decoding failure
func IsRowError(err error) bool {
	var mal *MalformedLineError
	var inv *domaincode.InvalidDomainCodeError
	return errors.As(err, &mal) || errors.As(err, &inv)
}
