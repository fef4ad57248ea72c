package pg

import (
	"context"
	"strings"
	"time"

	"pvcreek/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent is one statement or COPY round trip
// Args holds the bind args, or the row count for a COPY
type QueryEvent struct {
	SQL     string
	Args    any
	Elapsed time.Duration
	Err     error
	Slow    bool
}

// QueryTracer receives an event after every statement
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs statements on root: debug normally, warn when slow, error on failure
// The debug level is pinned so PVCREEK_PGSQL_LOG_SQL works under an info root
func Tracer(root logger.Logger) QueryTracer {
	return logTracer{root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type logTracer struct{ log logger.Logger }

func (t logTracer) OnQuery(_ context.Context, ev QueryEvent) {
	e := t.log.Debug()
	if ev.Err != nil {
		e = t.log.Error().Err(ev.Err)
	} else if ev.Slow {
		e = t.log.Warn()
	}
	e.Str("sql", oneLine(ev.SQL)).
		Interface("args", ev.Args).
		Dur("elapsed", ev.Elapsed).
		Bool("slow", ev.Slow).
		Msg("pg: statement")
}

func oneLine(s string) string { return strings.Join(strings.Fields(s), " ") }
