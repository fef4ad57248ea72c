// Package logger owns the process wide zerolog logger and its context helpers
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the project-wide logging type
type Logger = zerolog.Logger

// Formats understood by Options.Format
const (
	FormatAuto    = "auto" // console on a terminal, json otherwise
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options configures the root logger
type Options struct {
	Level      string
	Format     string
	Service    string
	Writer     io.Writer // default os.Stdout
	WithCaller bool
	Fields     map[string]string
}

// FromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_SERVICE, LOG_CALLER and LOG_OUTPUT
// It reads os env directly since platform/config logs through this package
func FromEnv() Options {
	opt := Options{
		Level:   env("LOG_LEVEL", "info"),
		Format:  strings.ToLower(env("LOG_FORMAT", FormatAuto)),
		Service: env("LOG_SERVICE", ""),
	}
	opt.WithCaller, _ = strconv.ParseBool(env("LOG_CALLER", "false"))
	if strings.EqualFold(env("LOG_OUTPUT", "stdout"), "stderr") {
		opt.Writer = os.Stderr
	}
	return opt
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

var (
	once sync.Once
	root atomic.Pointer[zerolog.Logger]
)

// Init builds the root logger; only the first call has an effect
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano

		w := opt.Writer
		if w == nil {
			w = os.Stdout
		}
		if useConsole(opt.Format, w) {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}

		c := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp()
		if bi, ok := debug.ReadBuildInfo(); ok {
			c = c.Str("go_version", bi.GoVersion)
		}
		if opt.Service != "" {
			c = c.Str("service", opt.Service)
		}
		for k, v := range opt.Fields {
			c = c.Str(k, v)
		}
		if opt.WithCaller {
			c = c.Caller()
		}
		l := c.Logger()
		root.Store(&l)
	})
}

func useConsole(format string, w io.Writer) bool {
	switch format {
	case FormatConsole:
		return true
	case FormatJSON:
		return false
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// parseLevel accepts zerolog level names plus warning and off; anything else is info
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "warning":
		return zerolog.WarnLevel
	case "off":
		return zerolog.Disabled
	case "":
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Get returns the root logger, initializing it from env on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

// Named returns a child logger with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}

type ctxKey uint8

const (
	requestIDKey ctxKey = iota
	runIDKey
)

// WithRequest tags ctx with an http request id
func WithRequest(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// WithRun tags ctx with a loader run id
func WithRun(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// C returns the root logger carrying request_id and run_id from ctx
func C(ctx context.Context) *Logger {
	c := Get().With()
	if id, _ := ctx.Value(requestIDKey).(string); id != "" {
		c = c.Str("request_id", id)
	}
	if id, _ := ctx.Value(runIDKey).(string); id != "" {
		c = c.Str("run_id", id)
	}
	l := c.Logger()
	return &l
}
