// Package repo provides the postgres and clickhouse sinks of the load service
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pvcreek/internal/modkit/repokit"
	perr "pvcreek/internal/platform/errors"
	"pvcreek/internal/platform/store"
	"pvcreek/internal/services/load/domain"
)

// Columns written per row, in order
var Columns = []string{
	"run_id", "dump_hour", "dump_name",
	"domain_code", "page_title", "view_count",
	"language", "project_domain", "is_mobile",
}

var pgSchema = []string{
	`CREATE TABLE IF NOT EXISTS ` + domain.RowsTable + ` (
		run_id         uuid        NOT NULL,
		dump_hour      timestamptz,
		dump_name      text        NOT NULL,
		domain_code    text        NOT NULL,
		page_title     text        NOT NULL,
		view_count     bigint      NOT NULL,
		language       text        NOT NULL,
		project_domain text        NOT NULL,
		is_mobile      boolean     NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ` + domain.RowsTable + `_hour_lang_idx
		ON ` + domain.RowsTable + ` (dump_hour, language, project_domain)`,
	`CREATE INDEX IF NOT EXISTS ` + domain.RowsTable + `_run_idx
		ON ` + domain.RowsTable + ` (run_id)`,
	`CREATE TABLE IF NOT EXISTS ` + domain.RunsTable + ` (
		run_id        uuid PRIMARY KEY,
		dump_name     text        NOT NULL,
		dump_hour     timestamptz,
		status        text        NOT NULL,
		started_at    timestamptz NOT NULL DEFAULT now(),
		finished_at   timestamptz,
		rows_written  bigint,
		lines_read    bigint,
		lines_skipped bigint,
		elapsed_ms    bigint,
		error         text
	)`,
}

type (
	// PG is a Postgres binder for the row sink
	PG       struct{}
	pgWriter struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.Sink
func NewPG() repokit.Binder[domain.Sink] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.Sink { return &pgWriter{q: q} }

func (w *pgWriter) Name() string { return "pg" }

// EnsureSchema creates the rows and runs tables when missing
// Bound to a pool it runs in one transaction, so the schema lands whole or not at all
func (w *pgWriter) EnsureSchema(ctx context.Context) error {
	create := func(q repokit.Queryer) error { return store.ExecAll(ctx, q, pgSchema...) }
	var err error
	if tx, ok := w.q.(repokit.TxRunner); ok {
		err = tx.Tx(ctx, create)
	} else {
		err = create(w.q)
	}
	if err != nil {
		return perr.FromPG(err, "ensure schema")
	}
	return nil
}

// Write loads rows with COPY
func (w *pgWriter) Write(ctx context.Context, rows []domain.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	src := make([][]any, len(rows))
	for i, r := range rows {
		src[i] = []any{
			r.RunID, pgHour(r.Hour), r.Dump,
			r.DomainCode, r.PageTitle, r.ViewCount,
			r.Language, r.ProjectDomain, r.IsMobile,
		}
	}
	n, err := w.q.CopyFrom(ctx, domain.RowsTable, Columns, src)
	if err != nil {
		if perr.IsUndefinedTable(err) {
			return n, perr.WithOp(perr.Wrapf(err, perr.ErrorCodeDB, "postgres: %s is missing, run with --create-schema", domain.RowsTable), "copy rows")
		}
		return n, perr.FromPG(err, "copy rows")
	}
	return n, nil
}

// CountRun counts the rows run holds in the rows table
func (w *pgWriter) CountRun(ctx context.Context, runID uuid.UUID) (int64, error) {
	n, err := store.Scalar[int64](ctx, w.q, `SELECT count(*) FROM `+domain.RowsTable+` WHERE run_id = $1`, runID)
	return n, perr.FromPG(err, "count rows")
}

// StartRun records a running load (idempotent)
func (w *pgWriter) StartRun(ctx context.Context, run domain.Run) error {
	_, err := w.q.Exec(ctx, `
		INSERT INTO `+domain.RunsTable+` (run_id, dump_name, dump_hour, status, started_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (run_id) DO UPDATE
		SET status = EXCLUDED.status, started_at = now(), finished_at = null, error = null
	`, run.ID, run.Dump, pgHour(run.Hour), domain.RunRunning)
	return perr.FromPG(err, "start run")
}

// FinishRun records the outcome of a load
func (w *pgWriter) FinishRun(ctx context.Context, run domain.Run, fin domain.RunFinish) error {
	_, err := w.q.Exec(ctx, `
		UPDATE `+domain.RunsTable+` SET
			finished_at = now(),
			status = $2,
			rows_written = $3,
			lines_read = $4,
			lines_skipped = $5,
			elapsed_ms = $6,
			error = NULLIF($7, '')
		WHERE run_id = $1
	`, run.ID, fin.Status, fin.RowsWritten, fin.LinesRead, fin.LinesSkipped, fin.ElapsedMS, fin.ErrText)
	return perr.FromPG(err, "finish run")
}

// pgHour maps an unknown hour to NULL
func pgHour(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
