package store

import (
	"context"
	"strings"
	"time"

	"pvcreek/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxDB is what *pgxpool.Pool and pgx.Tx have in common
type pgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, table pgx.Identifier, cols []string, src pgx.CopyFromSource) (int64, error)
}

// pgQuerier implements RowQuerier over a pool or a transaction, tracing each round trip
type pgQuerier struct {
	db     pgxDB
	tracer pg.QueryTracer
	slowMs int
}

func (q pgQuerier) trace(ctx context.Context, sql string, args any, start time.Time, err error) {
	if q.tracer == nil {
		return
	}
	d := time.Since(start)
	q.tracer.OnQuery(ctx, pg.QueryEvent{SQL: sql, Args: args, Elapsed: d, Err: err, Slow: pg.Slow(d, q.slowMs)})
}

func (q pgQuerier) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := q.db.Exec(ctx, sql, args...)
	q.trace(ctx, sql, args, start, err)
	return ct, err
}

func (q pgQuerier) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := q.db.Query(ctx, sql, args...)
	q.trace(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return pgRows{rs}, nil
}

// QueryRow traces once Scan has run, so the event carries the scan error
func (q pgQuerier) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	r := q.db.QueryRow(ctx, sql, args...)
	return scanHook(func(dst ...any) error {
		err := r.Scan(dst...)
		q.trace(ctx, sql, args, start, err)
		return err
	})
}

func (q pgQuerier) CopyFrom(ctx context.Context, table string, cols []string, src [][]any) (int64, error) {
	start := time.Now()
	id := pgx.Identifier{table}
	n, err := q.db.CopyFrom(ctx, id, cols, pgx.CopyFromRows(src))
	q.trace(ctx, "COPY "+id.Sanitize()+" ("+strings.Join(cols, ", ")+") FROM STDIN", len(src), start, err)
	return n, err
}

// pgRunner is the pool level TxRunner
type pgRunner struct {
	pgQuerier
	pool *pgxpool.Pool
}

func newPGRunner(pool *pgxpool.Pool, tracer pg.QueryTracer, slowMs int) *pgRunner {
	return &pgRunner{pgQuerier: pgQuerier{db: pool, tracer: tracer, slowMs: slowMs}, pool: pool}
}

// Tx runs fn inside one transaction, rolling back when fn fails
func (r *pgRunner) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(pgQuerier{db: tx, tracer: r.tracer, slowMs: r.slowMs}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *pgRunner) Ping(ctx context.Context) error {
	var one int
	return r.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func (r *pgRunner) Close() error { r.pool.Close(); return nil }

type scanHook func(dst ...any) error

func (f scanHook) Scan(dst ...any) error { return f(dst...) }

type pgRows struct{ pgx.Rows }

func (r pgRows) Columns() []string {
	fds := r.FieldDescriptions()
	names := make([]string, 0, len(fds))
	for _, fd := range fds {
		names = append(names, fd.Name)
	}
	return names
}
