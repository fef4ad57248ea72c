package repo

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"pvcreek/internal/core/pageviews"
	perr "pvcreek/internal/platform/errors"
	"pvcreek/internal/platform/store"
	"pvcreek/internal/services/load/domain"
)

type copyCall struct {
	table string
	cols  []string
	rows  [][]any
}

type fakeQ struct {
	execs   []string
	args    [][]any
	copies  []copyCall
	copyErr error
	count   int64
	queried []string
}

type countRow struct{ n int64 }

func (r countRow) Scan(dest ...any) error {
	*(dest[0].(*int64)) = r.n
	return nil
}

func (f *fakeQ) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	f.execs = append(f.execs, sql)
	f.args = append(f.args, args)
	return pgconn.NewCommandTag("OK"), nil
}
func (f *fakeQ) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (f *fakeQ) QueryRow(_ context.Context, sql string, _ ...any) store.Row {
	f.queried = append(f.queried, sql)
	return countRow{f.count}
}
func (f *fakeQ) CopyFrom(_ context.Context, table string, cols []string, rows [][]any) (int64, error) {
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	f.copies = append(f.copies, copyCall{table, cols, rows})
	return int64(len(rows)), nil
}

type insertCall struct {
	table string
	cols  []string
	rows  [][]any
}

type fakeCH struct {
	execs   []string
	inserts []insertCall
	count   uint64
}

// countRows yields one UInt64 like clickhouse's count()
type countRows struct {
	n    uint64
	done bool
}

func (r *countRows) Next() bool {
	if r.done {
		return false
	}
	r.done = true
	return true
}
func (r *countRows) Scan(dest ...any) error {
	*(dest[0].(*uint64)) = r.n
	return nil
}
func (r *countRows) Err() error        { return nil }
func (r *countRows) Close()            {}
func (r *countRows) Columns() []string { return []string{"count()"} }

func (c *fakeCH) Exec(_ context.Context, sql string, _ ...any) error {
	c.execs = append(c.execs, sql)
	return nil
}
func (c *fakeCH) Insert(_ context.Context, table string, cols []string, rows [][]any) error {
	c.inserts = append(c.inserts, insertCall{table, cols, rows})
	return nil
}
func (c *fakeCH) Query(context.Context, string, ...any) (store.Rows, error) {
	return &countRows{n: c.count}, nil
}
func (c *fakeCH) Ping(context.Context) error                                { return nil }
func (c *fakeCH) Close() error                                              { return nil }

func sampleRows() []domain.Row {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	hour := time.Date(2024, 8, 1, 13, 0, 0, 0, time.UTC)
	return []domain.Row{
		{RunID: id, Dump: "pageviews-20240801-130000.gz", Hour: hour, Record: pageviews.Record{
			DomainCode: "en", PageTitle: "Main_Page", ViewCount: 42, Language: "en", ProjectDomain: "wikipedia.org",
		}},
		{RunID: id, Dump: "local.txt", Record: pageviews.Record{
			DomainCode: "de.m", PageTitle: "Berlin", ViewCount: 7, Language: "de", ProjectDomain: "wikipedia.org", IsMobile: true,
		}},
	}
}

func TestPGWriteCopiesRowsInColumnOrder(t *testing.T) {
	q := &fakeQ{}
	sink := NewPG().Bind(q)

	n, err := sink.Write(context.Background(), sampleRows())
	if err != nil || n != 2 {
		t.Fatalf("Write = %d, %v, want 2", n, err)
	}
	if len(q.copies) != 1 {
		t.Fatalf("copies = %d, want 1", len(q.copies))
	}
	c := q.copies[0]
	if c.table != domain.RowsTable || len(c.cols) != len(Columns) {
		t.Fatalf("copy target = %s %v", c.table, c.cols)
	}
	first := c.rows[0]
	if first[2] != "pageviews-20240801-130000.gz" || first[4] != "Main_Page" || first[5] != int64(42) {
		t.Fatalf("first row = %v", first)
	}
	if h, ok := first[1].(time.Time); !ok || h.Hour() != 13 {
		t.Fatalf("dump_hour = %v", first[1])
	}
	if c.rows[1][1] != nil || c.rows[1][8] != true {
		t.Fatalf("second row hour/mobile = %v/%v, want nil/true", c.rows[1][1], c.rows[1][8])
	}

	if n, err := sink.Write(context.Background(), nil); err != nil || n != 0 || len(q.copies) != 1 {
		t.Fatalf("empty Write should not copy")
	}
}

func TestPGWriteMissingTable(t *testing.T) {
	q := &fakeQ{copyErr: &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}}
	_, err := NewPG().Bind(q).Write(context.Background(), sampleRows())
	if perr.CodeOf(err) != perr.ErrorCodeDB || !strings.Contains(err.Error(), "--create-schema") {
		t.Fatalf("Write = %v, want DB error mentioning --create-schema", err)
	}
}

func TestPGSchemaAndRunLog(t *testing.T) {
	q := &fakeQ{}
	sink := NewPG().Bind(q)
	ctx := context.Background()

	if err := sink.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema = %v", err)
	}
	if len(q.execs) != len(pgSchema) || !strings.Contains(q.execs[0], "CREATE TABLE IF NOT EXISTS "+domain.RowsTable) {
		t.Fatalf("schema statements = %d", len(q.execs))
	}

	rl, ok := sink.(domain.RunLog)
	if !ok {
		t.Fatalf("pg sink should keep a run log")
	}
	run := domain.Run{ID: uuid.New(), Dump: "local.txt"}
	if err := rl.StartRun(ctx, run); err != nil {
		t.Fatalf("StartRun = %v", err)
	}
	start := q.args[len(q.args)-1]
	if start[2] != nil || start[3] != domain.RunRunning {
		t.Fatalf("StartRun args = %v", start)
	}
	if err := rl.FinishRun(ctx, run, domain.RunFinish{Status: domain.RunOK, RowsWritten: 3}); err != nil {
		t.Fatalf("FinishRun = %v", err)
	}
	fin := q.args[len(q.args)-1]
	if fin[1] != domain.RunOK || fin[2] != int64(3) {
		t.Fatalf("FinishRun args = %v", fin)
	}
}

func TestCHWriteAndSchema(t *testing.T) {
	c := &fakeCH{}
	sink := NewCH(c)
	ctx := context.Background()

	if err := sink.EnsureSchema(ctx); err != nil || len(c.execs) != 1 {
		t.Fatalf("EnsureSchema = %v with %d statements", err, len(c.execs))
	}
	if !strings.Contains(c.execs[0], "ENGINE = MergeTree") {
		t.Fatalf("schema = %s", c.execs[0])
	}

	n, err := sink.Write(ctx, sampleRows())
	if err != nil || n != 2 || len(c.inserts) != 1 {
		t.Fatalf("Write = %d, %v, inserts %d", n, err, len(c.inserts))
	}
	rows := c.inserts[0].rows
	if h := rows[1][1].(time.Time); h.Unix() != 0 {
		t.Fatalf("unknown hour = %v, want epoch", h)
	}
	if rows[0][0] != sampleRows()[0].RunID {
		t.Fatalf("run_id = %v", rows[0][0])
	}
	if _, ok := any(sink).(domain.RunLog); ok {
		t.Fatalf("ch sink should not keep a run log")
	}
}

func TestCountRun(t *testing.T) {
	ctx := context.Background()
	id := sampleRows()[0].RunID

	q := &fakeQ{count: 5}
	c, ok := NewPG().Bind(q).(domain.Counter)
	if !ok {
		t.Fatalf("pg sink should count")
	}
	if n, err := c.CountRun(ctx, id); err != nil || n != 5 {
		t.Fatalf("pg CountRun = %d, %v, want 5", n, err)
	}
	if !strings.Contains(q.queried[0], "WHERE run_id = $1") {
		t.Fatalf("pg count sql = %s", q.queried[0])
	}

	if n, err := NewCH(&fakeCH{count: 9}).CountRun(ctx, id); err != nil || n != 9 {
		t.Fatalf("ch CountRun = %d, %v, want 9", n, err)
	}
}
