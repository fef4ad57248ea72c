package pg

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestOneLine(t *testing.T) {
	if got := oneLine("SELECT  a,\n\tb\r\n FROM t "); got != "SELECT a, b FROM t" {
		t.Fatalf("oneLine = %q", got)
	}
}

func TestSlow(t *testing.T) {
	cases := []struct {
		elapsed time.Duration
		ms      int
		want    bool
	}{
		{10 * time.Millisecond, 500, false},
		{500 * time.Millisecond, 500, true},
		{time.Hour, -1, false},
		{0, 0, true},
	}
	for _, c := range cases {
		if got := Slow(c.elapsed, c.ms); got != c.want {
			t.Fatalf("Slow(%v, %d) = %v, want %v", c.elapsed, c.ms, got, c.want)
		}
	}
}

func TestTracerLevels(t *testing.T) {
	var buf bytes.Buffer
	tr := Tracer(zerolog.New(&buf).Level(zerolog.ErrorLevel))

	ctx := context.Background()
	tr.OnQuery(ctx, QueryEvent{SQL: "SELECT 1"})
	tr.OnQuery(ctx, QueryEvent{SQL: "SELECT 2", Slow: true})
	tr.OnQuery(ctx, QueryEvent{SQL: "SELECT 3", Err: errors.New("bad")})

	out := buf.String()
	for _, want := range []string{
		`"level":"debug"`, `"sql":"SELECT 1"`,
		`"level":"warn"`, `"slow":true`,
		`"level":"error"`, `"error":"bad"`,
		`"component":"pg"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("tracer output missing %s:\n%s", want, out)
		}
	}
}

func TestOpenRejectsBadURL(t *testing.T) {
	if _, err := Open(context.Background(), Config{URL: "postgres://host:notaport/db"}); err == nil {
		t.Fatalf("Open(bad port) = nil error")
	}
}
