// Package repokit binds sink repositories to the store seams
package repokit

import (
	"context"
	"fmt"

	"pvcreek/internal/platform/store"
)

type (
	// Queryer is what a bound repository talks to: a pool or a transaction
	Queryer = store.RowQuerier
	// TxRunner is a Queryer that can open transactions
	TxRunner = store.TxRunner
)

// Binder produces a repository of type T over a Queryer
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a plain constructor to Binder
type BindFunc[T any] func(Queryer) T

func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// MustBind binds b to q; a nil q is a wiring bug and panics
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic(fmt.Sprintf("repokit: binding %T to a nil queryer", b))
	}
	return b.Bind(q)
}

// MustGuard pings every backend behind g and panics when any fails
func MustGuard(ctx context.Context, g interface{ Guard(context.Context) error }) {
	if err := g.Guard(ctx); err != nil {
		panic(fmt.Errorf("repokit: backends not ready: %w", err))
	}
}
