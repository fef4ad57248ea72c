// Package pageviews parses rows of a Wikimedia pageviews dump
//
// A row is four whitespace separated columns:
//
//	domain_code page_title view_count byte_size
//
// byte_size is read and discarded. language, project_domain and is_mobile are
// derived from domain_code by the domaincode package.
package pageviews

import (
	"fmt"
	"strconv"
	"strings"

	"pvcreek/internal/core/domaincode"
	perr "pvcreek/internal/platform/errors"
)

// Record is one decoded row
type Record struct {
	DomainCode    string `json:"domain_code"`
	PageTitle     string `json:"page_title"`
	ViewCount     int64  `json:"view_count"`
	Language      string `json:"language"`
	ProjectDomain string `json:"project_domain"`
	IsMobile      bool   `json:"is_mobile"`
}

// Fields is the number of columns in a row
const Fields = 4

// MalformedLineError reports a row that cannot be tokenized or whose count is not an integer
type MalformedLineError struct {
	Line   string
	Reason string
	Err    error
}

func (e *MalformedLineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed line %q: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed line %q: %s", e.Line, e.Reason)
}

// Unwrap returns the underlying conversion error, if any
func (e *MalformedLineError) Unwrap() error { return e.Err }

// Code classifies the error for transports
func (e *MalformedLineError) Code() perr.ErrorCode { return perr.ErrorCodeMalformed }

// ParseLine decodes a single row
// Errors are *MalformedLineError, or *domaincode.InvalidDomainCodeError unchanged
func ParseLine(line string) (Record, error) {
	cols := strings.Fields(line)
	if len(cols) != Fields {
		return Record{}, &MalformedLineError{
			Line:   line,
			Reason: fmt.Sprintf("want %d fields, got %d", Fields, len(cols)),
		}
	}
	site, err := domaincode.Decode(cols[0])
	if err != nil {
		return Record{}, err
	}
	views, err := strconv.ParseInt(cols[2], 10, 64)
	if err != nil {
		return Record{}, &MalformedLineError{Line: line, Reason: "view count is not an integer", Err: err}
	}
	return Record{
		DomainCode:    cols[0],
		PageTitle:     cols[1],
		ViewCount:     views,
		Language:      site.Language,
		ProjectDomain: site.Project,
		IsMobile:      site.Mobile,
	}, nil
}
