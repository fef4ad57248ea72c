package store

import (
	"context"

	"pvcreek/internal/platform/store/ch"
)

// chStore exposes *ch.CH as Clickhouse; only Query needs reshaping
type chStore struct{ *ch.CH }

var _ Clickhouse = chStore{}

func (c chStore) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := c.CH.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return chRows{r}, nil
}

// chRows drops the Close error ch.Rows reports
type chRows struct{ ch.Rows }

func (r chRows) Close() { _ = r.Rows.Close() }
