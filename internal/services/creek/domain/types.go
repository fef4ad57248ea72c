// Package domain holds the request and stream shapes of the creek service
package domain

import (
	"strings"
	"time"

	"pvcreek/internal/adapters/ingest/dumps"
	"pvcreek/internal/core/filter"
	"pvcreek/internal/core/pageviews"
	perr "pvcreek/internal/platform/errors"
)

// Record re-exports the decoded row shape
type Record = pageviews.Record

// Target kinds
const (
	TargetPath = "path"
	TargetName = "name"
	TargetHour = "hour"
)

// Request describes one pass over one dump
// Exactly one of Path, Name or Hour must be set
type Request struct {
	Path string
	Name string
	Hour time.Time

	Lines   filter.LineCriteria
	Records filter.RecordCriteria

	// SkipMalformed drops undecodable rows instead of failing the stream
	SkipMalformed bool

	// Limit caps emitted records; <=0 means all
	Limit int
}

// Target resolves which dump the request reads
// For TargetHour the value is the canonical name of that hour
func (r Request) Target() (kind, value string, err error) {
	set := 0
	if strings.TrimSpace(r.Path) != "" {
		set++
		kind, value = TargetPath, r.Path
	}
	if r.Name != "" {
		set++
		kind, value = TargetName, r.Name
	}
	if !r.Hour.IsZero() {
		set++
		kind, value = TargetHour, dumps.FilenameFor(r.Hour)
	}
	switch {
	case set == 0:
		return "", "", perr.InvalidArgf("creek: one of path, name or hour is required")
	case set > 1:
		return "", "", perr.InvalidArgf("creek: path, name and hour are mutually exclusive")
	}
	if kind == TargetName && !dumps.ValidName(value) {
		return "", "", perr.WithField(perr.InvalidArgf("creek: %q is not a pageviews dump name", value), "name")
	}
	return kind, value, nil
}

// Stats counts what a stream has seen so far
type Stats struct {
	LinesRead   int   `json:"lines_read"`
	Bytes       int64 `json:"bytes"`
	LinesPassed int   `json:"lines_passed"`
	Parsed      int   `json:"parsed"`
	Skipped     int   `json:"skipped"`
	Emitted     int   `json:"emitted"`
}
