// Package service wires a dump source through the line filter, the parser and
// the record filter into one lazy stream
package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"pvcreek/internal/core/filter"
	"pvcreek/internal/core/pageviews"
	"pvcreek/internal/core/stream"
	perr "pvcreek/internal/platform/errors"
	"pvcreek/internal/platform/logger"
	"pvcreek/internal/services/creek/domain"
)

// skipWarnMax bounds warn level logs per stream; later skips log at debug
const skipWarnMax = 20

// Config holds configuration options for the creek service
type Config struct {
	// SkipMalformed makes skipping the default for every request
	SkipMalformed bool
	// MatchTimeout bounds each pattern evaluation; 0 uses filter.DefaultMatchTimeout
	MatchTimeout time.Duration
}

// Service implements domain.StreamerPort
type Service struct {
	Sources domain.Sources
	Cfg     Config
	Metrics *Metrics
}

// New constructs the creek service; m may be nil
func New(src domain.Sources, cfg Config, m *Metrics) *Service {
	if src == nil {
		panic("creek.Service requires non nil Sources")
	}
	if m == nil {
		m = NewMetrics(nil)
	}
	return &Service{Sources: src, Cfg: cfg, Metrics: m}
}

// Open validates req, compiles its filters and opens the dump
// Filter errors surface here before any I/O happens
func (s *Service) Open(ctx context.Context, req domain.Request) (domain.Stream, error) {
	kind, target, err := req.Target()
	if err != nil {
		return nil, err
	}
	fopts := []filter.Option{filter.WithMatchTimeout(s.Cfg.MatchTimeout)}
	lf, err := filter.NewLineFilter(req.Lines, fopts...)
	if err != nil {
		return nil, err
	}
	rf, err := filter.NewRecordFilter(req.Records, fopts...)
	if err != nil {
		return nil, err
	}

	var src domain.LineSource
	if kind == domain.TargetPath {
		src, err = s.Sources.Local(target)
	} else {
		src, err = s.Sources.Remote(ctx, target)
	}
	if err != nil {
		s.Metrics.StreamErrors.WithLabelValues(perr.CodeOf(err).String()).Inc()
		return nil, err
	}
	s.Metrics.StreamsOpened.WithLabelValues(kind).Inc()

	st := &recordStream{
		name:    target,
		src:     src,
		metrics: s.Metrics,
		log:     logger.C(ctx).With().Str("component", "creek").Str("dump", target).Logger(),
		started: time.Now(),
	}

	var lines stream.Source[string] = src
	lines = lf.Apply(lines)
	lines = stream.Filter(lines, func(string) bool { st.passed++; return true })

	var opts []pageviews.ParseOption
	if req.SkipMalformed || s.Cfg.SkipMalformed {
		opts = append(opts, pageviews.WithSkipMalformed(st.onSkip))
	}
	st.parser = pageviews.Parse(lines, opts...)

	st.out = stream.Limit(rf.Apply(st.parser), req.Limit)
	return st, nil
}

// recordStream is the pipeline handed to callers
type recordStream struct {
	name    string
	src     domain.LineSource
	parser  *pageviews.Parser
	out     stream.Source[pageviews.Record]
	metrics *Metrics
	log     logger.Logger
	started time.Time

	passed  int
	emitted int
	done    bool

	closeOnce sync.Once
	closeErr  error
}

func (st *recordStream) Name() string { return st.name }

func (st *recordStream) Next() (domain.Record, error) {
	rec, err := st.out.Next()
	if err == nil {
		st.emitted++
		return rec, nil
	}
	if !st.done {
		st.done = true
		if !errors.Is(err, io.EOF) {
			st.metrics.StreamErrors.WithLabelValues(perr.CodeOf(err).String()).Inc()
			st.log.Error().Err(err).Int("lines_read", st.linesRead()).Msg("creek: stream failed")
		}
	}
	return domain.Record{}, err
}

func (st *recordStream) Stats() domain.Stats {
	lines, bytes := st.src.Stats()
	parsed, skipped := st.parser.Stats()
	return domain.Stats{
		LinesRead:   lines,
		Bytes:       bytes,
		LinesPassed: st.passed,
		Parsed:      parsed,
		Skipped:     skipped,
		Emitted:     st.emitted,
	}
}

// Close releases the source and flushes counters; later calls are no-ops
func (st *recordStream) Close() error {
	st.closeOnce.Do(func() {
		stats := st.Stats()
		st.metrics.LinesRead.Add(float64(stats.LinesRead))
		st.metrics.LinesSkipped.Add(float64(stats.Skipped))
		st.metrics.RecordsEmitted.Add(float64(stats.Emitted))
		st.closeErr = st.src.Close()
		st.log.Debug().
			Int("lines_read", stats.LinesRead).
			Int("lines_passed", stats.LinesPassed).
			Int("parsed", stats.Parsed).
			Int("skipped", stats.Skipped).
			Int("emitted", stats.Emitted).
			Dur("took", time.Since(st.started)).
			Msg("creek: stream closed")
	})
	return st.closeErr
}

func (st *recordStream) linesRead() int {
	n, _ := st.src.Stats()
	return n
}

func (st *recordStream) onSkip(line string, err error) {
	_, skipped := st.parser.Stats()
	ev := st.log.Debug()
	if skipped <= skipWarnMax {
		ev = st.log.Warn()
	}
	ev.Err(err).Int("line_no", st.linesRead()).Str("line", line).Msg("creek: skipping malformed line")
}
