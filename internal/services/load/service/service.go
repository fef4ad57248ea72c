// Package service streams one dump through creek into every configured sink
package service

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"pvcreek/internal/adapters/ingest/dumps"
	"pvcreek/internal/core/stream"
	perr "pvcreek/internal/platform/errors"
	"pvcreek/internal/platform/logger"
	creekdom "pvcreek/internal/services/creek/domain"
	"pvcreek/internal/services/load/domain"
)

// DefaultBatchSize is the rows per sink write when nothing is configured
const DefaultBatchSize = 5000

// Config holds configuration options for the load service
type Config struct {
	BatchSize    int
	CreateSchema bool
}

// Service implements domain.LoaderPort
type Service struct {
	Streamer creekdom.StreamerPort
	Sinks    []domain.Sink
	Cfg      Config

	newID func() uuid.UUID
	now   func() time.Time
}

// New constructs the load service
func New(streamer creekdom.StreamerPort, sinks []domain.Sink, cfg Config) *Service {
	if streamer == nil {
		panic("load.Service requires non nil Streamer")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Service{
		Streamer: streamer,
		Sinks:    sinks,
		Cfg:      cfg,
		newID:    uuid.New,
		now:      time.Now,
	}
}

// Run loads the dump named by req.Source into every sink
// Rows reach the sinks in batches; a sink failure stops the run
func (s *Service) Run(ctx context.Context, req domain.Request) (domain.Result, error) {
	if len(s.Sinks) == 0 {
		return domain.Result{}, perr.InvalidArgf("load: no sink configured")
	}
	size := req.BatchSize
	if size <= 0 {
		size = s.Cfg.BatchSize
	}

	runID := s.newID()
	ctx = logger.WithRun(ctx, runID.String())
	log := logger.C(ctx).With().Str("component", "load").Logger()
	start := s.now()

	if req.CreateSchema || s.Cfg.CreateSchema {
		for _, sk := range s.Sinks {
			if err := sk.EnsureSchema(ctx); err != nil {
				return domain.Result{RunID: runID}, err
			}
			log.Debug().Str("sink", sk.Name()).Msg("load: schema ready")
		}
	}

	st, err := s.Streamer.Open(ctx, req.Source)
	if err != nil {
		return domain.Result{RunID: runID}, err
	}
	defer func() { _ = st.Close() }()

	run := domain.Run{ID: runID, Dump: st.Name(), Hour: hourOf(st.Name())}
	res := domain.Result{
		RunID:   runID,
		Dump:    run.Dump,
		Hour:    run.Hour,
		Written: make(map[string]int64, len(s.Sinks)),
	}

	for _, rl := range s.runLogs() {
		if err := rl.StartRun(ctx, run); err != nil {
			return res, err
		}
	}
	log.Info().Str("dump", run.Dump).Int("batch", size).Int("sinks", len(s.Sinks)).Msg("load: run started")

	rows := make([]domain.Row, 0, size)
	loadErr := stream.Batch[creekdom.Record](st, size, func(batch []creekdom.Record) error {
		rows = rows[:0]
		for _, rec := range batch {
			rows = append(rows, domain.Row{RunID: runID, Dump: run.Dump, Hour: run.Hour, Record: rec})
		}
		for _, sk := range s.Sinks {
			n, err := sk.Write(ctx, rows)
			res.Written[sk.Name()] += n
			if err != nil {
				return err
			}
		}
		res.Batches++
		log.Debug().Int("batch_no", res.Batches).Int("rows", len(rows)).Msg("load: batch written")
		return nil
	})

	res.Stats = st.Stats()
	res.Took = s.now().Sub(start)

	fin := domain.RunFinish{
		Status:       domain.RunOK,
		RowsWritten:  maxWritten(res.Written),
		LinesRead:    res.Stats.LinesRead,
		LinesSkipped: res.Stats.Skipped,
		ElapsedMS:    res.Took.Milliseconds(),
	}
	if loadErr != nil {
		fin.Status = domain.RunFailed
		fin.ErrText = loadErr.Error()
	}
	// bookkeeping must land even when the caller's ctx is already done
	finCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	var finErr error
	for _, rl := range s.runLogs() {
		finErr = errors.Join(finErr, rl.FinishRun(finCtx, run, fin))
	}

	if loadErr != nil {
		log.Error().Err(loadErr).Int("batches", res.Batches).Msg("load: run failed")
		return res, loadErr
	}
	if finErr != nil {
		return res, finErr
	}
	res.Stored = s.verify(ctx, runID, res.Written, &log)
	log.Info().
		Int("batches", res.Batches).
		Int64("rows", fin.RowsWritten).
		Int("lines_read", res.Stats.LinesRead).
		Int("skipped", res.Stats.Skipped).
		Dur("took", res.Took).
		Msg("load: run finished")
	return res, nil
}

// verify reads back the rows each counting sink holds for runID
// A mismatch or a failed count is logged; the load itself already succeeded
func (s *Service) verify(ctx context.Context, runID uuid.UUID, written map[string]int64, log *logger.Logger) map[string]int64 {
	var stored map[string]int64
	for _, sk := range s.Sinks {
		c, ok := sk.(domain.Counter)
		if !ok {
			continue
		}
		n, err := c.CountRun(ctx, runID)
		if err != nil {
			log.Warn().Err(err).Str("sink", sk.Name()).Msg("load: count failed")
			continue
		}
		if stored == nil {
			stored = make(map[string]int64)
		}
		stored[sk.Name()] = n
		if n != written[sk.Name()] {
			log.Warn().Str("sink", sk.Name()).Int64("written", written[sk.Name()]).Int64("stored", n).Msg("load: row count mismatch")
		}
	}
	return stored
}

func (s *Service) runLogs() []domain.RunLog {
	var out []domain.RunLog
	for _, sk := range s.Sinks {
		if rl, ok := sk.(domain.RunLog); ok {
			out = append(out, rl)
		}
	}
	return out
}

// hourOf returns the hour of a canonical dump name, zero otherwise
func hourOf(name string) time.Time {
	h, err := dumps.ParseFilename(filepath.Base(name))
	if err != nil {
		return time.Time{}
	}
	return h
}

func maxWritten(w map[string]int64) int64 {
	var n int64
	for _, v := range w {
		n = max(n, v)
	}
	return n
}
