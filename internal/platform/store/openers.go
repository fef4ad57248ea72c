package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	chx "pvcreek/internal/platform/store/ch"
	"pvcreek/internal/platform/store/pg"
)

const (
	defaultConnectRetries = 6
	defaultPingTimeout    = 3 * time.Second
	pingBackoffStart      = 150 * time.Millisecond
	pingBackoffCeiling    = 2 * time.Second
)

// openPG opens a pool, waits for it to answer, and wraps it as a traced TxRunner
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	pool, err := pg.Open(ctx, pg.Config{URL: cfg.PG.URL, MaxConns: cfg.PG.MaxConns, AppName: cfg.AppName})
	if err != nil {
		return nil, err
	}
	// boot pings go straight to the pool so they stay out of the sql trace
	if err := pingWithRetry(ctx, "postgres", cfg.PG.ConnectRetries, cfg.PG.PingTimeout, s, pool.Ping); err != nil {
		pool.Close()
		return nil, err
	}
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}
	return newPGRunner(pool, tracer, cfg.PG.SlowQueryMs), nil
}

func openCH(ctx context.Context, cfg Config, s *Store) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{URL: cfg.CH.URL, AppName: cfg.AppName, Role: cfg.Role})
	if err != nil {
		return nil, err
	}
	err = pingWithRetry(ctx, "clickhouse", cfg.CH.ConnectRetries, cfg.CH.PingTimeout, s, c.Ping)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return chStore{c}, nil
}

// pingWithRetry pings until success, retries run out, or ctx ends
func pingWithRetry(ctx context.Context, what string, retries uint64, timeout time.Duration, s *Store, ping func(context.Context) error) error {
	if retries == 0 {
		retries = defaultConnectRetries
	}
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = pingBackoffStart
	eb.MaxInterval = pingBackoffCeiling
	b := backoff.WithContext(backoff.WithMaxRetries(eb, retries), ctx)

	attempts := 0
	op := func() error {
		attempts++
		toCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return ping(toCtx)
	}
	notify := func(err error, wait time.Duration) {
		s.Log.Warn().Err(err).Str("backend", what).Int("attempt", attempts).Dur("retry_in", wait).Msg("store: ping failed")
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s ping failed after %d attempts: %w", what, attempts, err)
	}
	return nil
}
