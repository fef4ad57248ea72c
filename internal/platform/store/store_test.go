package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pvcreek/internal/platform/config"
)

// fakeQ is an in-memory RowQuerier + TxRunner + Pinger
type fakeQ struct {
	execs   []string
	failAt  int
	scalar  any
	rows    [][]any
	pingErr error
	closed  bool
	copied  int
}

type fakeTag struct{ n int64 }

func (t fakeTag) String() string      { return "OK" }
func (t fakeTag) RowsAffected() int64 { return t.n }

type fakeRow struct{ v any }

func (r fakeRow) Scan(dest ...any) error {
	switch d := dest[0].(type) {
	case *int64:
		*d = r.v.(int64)
	case *string:
		*d = r.v.(string)
	default:
		return errors.New("unsupported scan target")
	}
	return nil
}

type fakeRows struct {
	data [][]any
	i    int
}

func (r *fakeRows) Next() bool { r.i++; return r.i <= len(r.data) }
func (r *fakeRows) Scan(dest ...any) error {
	for i, d := range dest {
		*(d.(*string)) = r.data[r.i-1][i].(string)
	}
	return nil
}
func (r *fakeRows) Err() error        { return nil }
func (r *fakeRows) Close()            {}
func (r *fakeRows) Columns() []string { return []string{"name"} }

func (f *fakeQ) Exec(_ context.Context, sql string, _ ...any) (CommandTag, error) {
	f.execs = append(f.execs, sql)
	if f.failAt > 0 && len(f.execs) == f.failAt {
		return nil, errors.New("boom")
	}
	return fakeTag{1}, nil
}
func (f *fakeQ) Query(context.Context, string, ...any) (Rows, error) {
	return &fakeRows{data: f.rows}, nil
}
func (f *fakeQ) QueryRow(context.Context, string, ...any) Row { return fakeRow{v: f.scalar} }
func (f *fakeQ) CopyFrom(_ context.Context, _ string, _ []string, rows [][]any) (int64, error) {
	f.copied += len(rows)
	return int64(len(rows)), nil
}
func (f *fakeQ) Tx(_ context.Context, fn func(RowQuerier) error) error { return fn(f) }
func (f *fakeQ) Ping(context.Context) error                          { return f.pingErr }
func (f *fakeQ) Close() error                                        { f.closed = true; return nil }

// fakeCH is an in-memory Clickhouse seam
type fakeCH struct {
	pingErr error
	closed  bool
	rows    [][]any
}

func (c *fakeCH) Exec(context.Context, string, ...any) error { return nil }
func (c *fakeCH) Insert(context.Context, string, []string, [][]any) error {
	return nil
}
func (c *fakeCH) Query(context.Context, string, ...any) (Rows, error) {
	return &fakeRows{data: c.rows}, nil
}
func (c *fakeCH) Ping(context.Context) error { return c.pingErr }
func (c *fakeCH) Close() error              { c.closed = true; return nil }

func TestOpenWithNothingEnabled(t *testing.T) {
	s, err := Open(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Open err = %v", err)
	}
	if s.PG != nil || s.CH != nil {
		t.Fatalf("backends should stay nil: %+v", s)
	}
	if err := s.Guard(context.Background()); err != nil {
		t.Fatalf("Guard on empty store = %v, want nil", err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close on empty store = %v", err)
	}
}

func TestGuardJoinsBackendFailures(t *testing.T) {
	pg := &fakeQ{pingErr: errors.New("pg down")}
	ch := &fakeCH{pingErr: errors.New("ch down")}
	s := &Store{PG: pg, CH: ch}

	err := s.Guard(context.Background())
	if err == nil {
		t.Fatalf("Guard = nil, want error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "pg: pg down") || !strings.Contains(msg, "ch: ch down") {
		t.Fatalf("Guard = %q, want both failures", msg)
	}

	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close = %v", err)
	}
	if !pg.closed || !ch.closed {
		t.Fatalf("Close did not reach both backends")
	}
}

func TestGuardNilStore(t *testing.T) {
	var s *Store
	if err := s.Guard(context.Background()); err == nil {
		t.Fatalf("Guard(nil) = nil, want error")
	}
}

func TestConfigFrom(t *testing.T) {
	t.Setenv("PVCREEK_PGSQL_DBURL", " postgres://u:p@localhost:5432/pv ")
	t.Setenv("PVCREEK_PGSQL_MAX_CONNS", "8")
	t.Setenv("PVCREEK_PGSQL_LOG_SQL", "true")
	t.Setenv("PVCREEK_CLICKHOUSE_DBURL", "")
	t.Setenv("PVCREEK_CLICKHOUSE_PING_TIMEOUT", "9s")

	cfg := ConfigFrom(config.New())
	if !cfg.PG.Enabled || cfg.PG.URL != "postgres://u:p@localhost:5432/pv" {
		t.Fatalf("PG = %+v", cfg.PG)
	}
	if cfg.PG.MaxConns != 8 || !cfg.PG.LogSQL || cfg.PG.ConnectRetries != 6 {
		t.Fatalf("PG knobs = %+v", cfg.PG)
	}
	if cfg.CH.Enabled {
		t.Fatalf("CH enabled without a url")
	}
	if cfg.CH.PingTimeout != 9*time.Second {
		t.Fatalf("CH.PingTimeout = %v, want 9s", cfg.CH.PingTimeout)
	}
	if cfg.AppName != "pvcreek" {
		t.Fatalf("AppName = %q", cfg.AppName)
	}
}

func TestPingWithRetry(t *testing.T) {
	s := &Store{}

	calls := 0
	err := pingWithRetry(context.Background(), "test", 5, time.Second, s, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("pingWithRetry = %v after %d calls, want nil after 3", err, calls)
	}

	calls = 0
	err = pingWithRetry(context.Background(), "test", 1, time.Second, s, func(context.Context) error {
		calls++
		return errors.New("never")
	})
	if err == nil || calls != 2 {
		t.Fatalf("pingWithRetry = %v after %d calls, want error after 2", err, calls)
	}
	if !strings.Contains(err.Error(), "test ping failed after 2 attempts") {
		t.Fatalf("err = %q", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = pingWithRetry(ctx, "test", 3, time.Second, s, func(context.Context) error { return errors.New("x") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("pingWithRetry(canceled) = %v, want context.Canceled", err)
	}
}
