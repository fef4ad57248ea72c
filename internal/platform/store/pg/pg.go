// Package pg opens postgres pools and traces the statements sent through them
package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config configures a pool
type Config struct {
	URL      string
	MaxConns int32
	// AppName is reported as application_name unless the url sets one
	AppName string
}

// Open parses cfg.URL and builds a pool; pgxpool connects lazily so this does not ping
func Open(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	params := pc.ConnConfig.RuntimeParams
	if params == nil {
		params = map[string]string{}
		pc.ConnConfig.RuntimeParams = params
	}
	if _, ok := params["application_name"]; !ok && cfg.AppName != "" {
		params["application_name"] = cfg.AppName
	}
	return pgxpool.NewWithConfig(ctx, pc)
}

// Slow reports whether elapsed crosses the slow threshold; a negative threshold disables it
func Slow(elapsed time.Duration, thresholdMs int) bool {
	return thresholdMs >= 0 && elapsed >= time.Duration(thresholdMs)*time.Millisecond
}
