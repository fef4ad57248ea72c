package domain

import (
	"context"

	"github.com/google/uuid"
)

// LoaderPort runs one dump into the configured sinks
type LoaderPort interface {
	Run(ctx context.Context, req Request) (Result, error)
}

// Sink persists batches of rows
type Sink interface {
	Name() string
	EnsureSchema(ctx context.Context) error
	// Write stores rows and returns how many were written
	// rows is reused by the caller after Write returns
	Write(ctx context.Context, rows []Row) (int64, error)
}

// Counter is implemented by sinks that can count what a run stored
type Counter interface {
	CountRun(ctx context.Context, runID uuid.UUID) (int64, error)
}

// RunLog is implemented by sinks that also record run bookkeeping
type RunLog interface {
	StartRun(ctx context.Context, run Run) error
	FinishRun(ctx context.Context, run Run, fin RunFinish) error
}
