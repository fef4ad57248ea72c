package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	perr "pvcreek/internal/platform/errors"
	"pvcreek/internal/platform/store"
	"pvcreek/internal/services/load/domain"
)

var chSchema = []string{
	`CREATE TABLE IF NOT EXISTS ` + domain.RowsTable + ` (
		run_id         UUID,
		dump_hour      DateTime('UTC'),
		dump_name      LowCardinality(String),
		domain_code    LowCardinality(String),
		page_title     String,
		view_count     Int64,
		language       LowCardinality(String),
		project_domain LowCardinality(String),
		is_mobile      Bool
	) ENGINE = MergeTree
	ORDER BY (dump_hour, language, project_domain, page_title)`,
}

// CH is the clickhouse row sink; it keeps no run log
type CH struct {
	c store.Clickhouse
}

// NewCH wraps a clickhouse seam as a domain.Sink
func NewCH(c store.Clickhouse) *CH {
	if c == nil {
		panic("repo.NewCH requires a clickhouse seam")
	}
	return &CH{c: c}
}

func (s *CH) Name() string { return "ch" }

// EnsureSchema creates the rows table when missing
func (s *CH) EnsureSchema(ctx context.Context) error {
	for _, q := range chSchema {
		if err := s.c.Exec(ctx, q); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeDB, "clickhouse: ensure schema")
		}
	}
	return nil
}

// Write sends rows as one native batch
func (s *CH) Write(ctx context.Context, rows []domain.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	src := make([][]any, len(rows))
	for i, r := range rows {
		src[i] = []any{
			r.RunID, chHour(r.Hour), r.Dump,
			r.DomainCode, r.PageTitle, r.ViewCount,
			r.Language, r.ProjectDomain, r.IsMobile,
		}
	}
	if err := s.c.Insert(ctx, domain.RowsTable, Columns, src); err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodeDB, "clickhouse: insert %d rows", len(rows))
	}
	return int64(len(rows)), nil
}

// CountRun counts the rows run holds; count() is a UInt64 on the wire
func (s *CH) CountRun(ctx context.Context, runID uuid.UUID) (int64, error) {
	n, err := store.CHScalar[uint64](ctx, s.c, `SELECT count() FROM `+domain.RowsTable+` WHERE run_id = ?`, runID)
	if err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodeDB, "clickhouse: count rows")
	}
	return int64(n), nil
}

// chHour maps an unknown hour to the epoch; DateTime is not nullable in the sort key
func chHour(t time.Time) time.Time {
	if t.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return t.UTC()
}
