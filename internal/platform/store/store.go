// Package store provides a unified interface to the optional sink backends
package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"pvcreek/internal/platform/logger"
)

// Store holds the sink backends a process opened; a nil field means that
// backend is not configured. The zero Store opens nothing and logs nowhere.
type Store struct {
	Log logger.Logger

	PG TxRunner
	CH Clickhouse
}

// Row is one scannable result row
type Row interface{ Scan(dest ...any) error }

// Rows walks a result set; Close may be called more than once
type Rows interface {
	Row
	Next() bool
	Err() error
	Close()
	Columns() []string
}

// CommandTag reports what a write statement did
type CommandTag interface {
	RowsAffected() int64
	String() string
}

// RowQuerier is the sql surface the sinks write through. A pool and a
// transaction both satisfy it.
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
	// CopyFrom streams rows into table with COPY; cols order each row
	CopyFrom(ctx context.Context, table string, cols []string, rows [][]any) (int64, error)
}

// TxRunner runs fn in one transaction, committing when fn returns nil
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the columnar sink surface
type Clickhouse interface {
	Pinger
	io.Closer
	Exec(ctx context.Context, sql string, args ...any) error
	// Insert sends rows to table as a single batch
	Insert(ctx context.Context, table string, cols []string, rows [][]any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

// Pinger reports whether a backend answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// Option adjusts a Store before its backends open
type Option func(*Store) error

// WithLogger sets the logger handed to backend clients
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error { s.Log = log; return nil }
}

// Open connects every backend cfg enables; the rest stay nil
// A failure closes whatever was already opened
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	st := new(Store)
	for _, apply := range opts {
		if err := apply(st); err != nil {
			return nil, err
		}
	}
	st.Log = st.Log.With().Str("component", "store").Logger()

	if cfg.PG.Enabled {
		r, err := openPG(ctx, cfg, st)
		if err != nil {
			return nil, err
		}
		st.PG = r
	}
	if cfg.CH.Enabled {
		c, err := openCH(ctx, cfg, st)
		if err != nil {
			_ = st.Close(ctx)
			return nil, err
		}
		st.CH = c
	}
	return st, nil
}

type backend struct {
	name string
	v    any
}

// backends lists the open backends in open order
func (s *Store) backends() []backend {
	all := []backend{{"pg", s.PG}, {"ch", s.CH}}
	open := all[:0]
	for _, b := range all {
		if b.v != nil {
			open = append(open, b)
		}
	}
	return open
}

// Guard pings every open backend and joins the failures, labelled by backend
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("store: nil")
	}
	var failed []error
	for _, b := range s.backends() {
		p, ok := b.v.(Pinger)
		if !ok {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", b.name, err))
		}
	}
	return errors.Join(failed...)
}

// Close closes every open backend, clickhouse first
func (s *Store) Close(context.Context) error {
	var failed []error
	bs := s.backends()
	for i := len(bs) - 1; i >= 0; i-- {
		c, ok := bs[i].v.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", bs[i].name, err))
		}
	}
	return errors.Join(failed...)
}
