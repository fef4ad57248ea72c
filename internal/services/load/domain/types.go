// Package domain holds the shapes of the load service
package domain

import (
	"time"

	"github.com/google/uuid"

	"pvcreek/internal/core/pageviews"
	creekdom "pvcreek/internal/services/creek/domain"
)

// Table names shared by every sink
const (
	RowsTable = "pageviews_hourly"
	RunsTable = "pageviews_runs"
)

// Run statuses
const (
	RunRunning = "running"
	RunOK      = "ok"
	RunFailed  = "failed"
)

// Row is one record stamped with the run that wrote it
// Hour is zero when the dump name carries no hour
type Row struct {
	RunID uuid.UUID
	Dump  string
	Hour  time.Time
	pageviews.Record
}

// Request describes one load
type Request struct {
	Source creekdom.Request

	// BatchSize caps rows per sink write; <=0 uses the service default
	BatchSize int
	// CreateSchema issues CREATE TABLE IF NOT EXISTS before loading
	CreateSchema bool
}

// Run identifies a load for run bookkeeping
type Run struct {
	ID   uuid.UUID
	Dump string
	Hour time.Time
}

// RunFinish is the outcome recorded when a run ends
type RunFinish struct {
	Status       string
	RowsWritten  int64
	LinesRead    int
	LinesSkipped int
	ElapsedMS    int64
	ErrText      string
}

// Result summarises a finished load
type Result struct {
	RunID   uuid.UUID        `json:"run_id"`
	Dump    string           `json:"dump"`
	Hour    time.Time        `json:"hour,omitzero"`
	Batches int              `json:"batches"`
	Written map[string]int64 `json:"written"`
	// Stored is the row count read back per counting sink after the run
	Stored  map[string]int64 `json:"stored,omitempty"`
	Stats   creekdom.Stats   `json:"stats"`
	Took    time.Duration    `json:"took"`
}
