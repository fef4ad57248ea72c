package store

import (
	"context"
	"fmt"
)

// ExecAll runs each statement in order and stops at the first failure
func ExecAll(ctx context.Context, q RowQuerier, stmts ...string) error {
	for i, s := range stmts {
		if _, err := q.Exec(ctx, s); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return nil
}

// Scalar scans the single value a sql query returns
func Scalar[T any](ctx context.Context, q RowQuerier, sql string, args ...any) (v T, err error) {
	err = q.QueryRow(ctx, sql, args...).Scan(&v)
	if err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// CHScalar is Scalar for clickhouse; no rows is an error
func CHScalar[T any](ctx context.Context, c Clickhouse, sql string, args ...any) (v T, err error) {
	rows, err := c.Query(ctx, sql, args...)
	if err != nil {
		return v, err
	}
	defer rows.Close()
	switch {
	case rows.Next():
		err = rows.Scan(&v)
	case rows.Err() != nil:
		err = rows.Err()
	default:
		err = fmt.Errorf("store: %q returned no rows", sql)
	}
	return v, err
}
