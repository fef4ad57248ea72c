// Package module provides the creek module implementation
package module

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"pvcreek/internal/adapters/ingest/dumps"
	"pvcreek/internal/modkit"
	"pvcreek/internal/services/creek/domain"
	"pvcreek/internal/services/creek/ingest"
	"pvcreek/internal/services/creek/service"
)

// Ports defines the creek module ports
// Cache is nil when no cache dir is configured
type Ports struct {
	Streamer domain.StreamerPort
	Cache    domain.CachePort
}

// Module implements the creek module
type Module struct {
	opts  Options
	ports Ports
}

// New constructs the creek module from PVCREEK_SOURCE_* in deps.Cfg
// Metrics go to the default prometheus registerer
func New(deps modkit.Deps) (*Module, error) {
	return NewWithOptions(FromConfig(deps.Cfg), prometheus.DefaultRegisterer)
}

// NewWithOptions constructs the module from explicit options
func NewWithOptions(opts Options, reg prometheus.Registerer) (*Module, error) {
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	httpf := dumps.NewHTTPFetcher(
		opts.BaseURL,
		opts.HTTPTimeout,
		dumps.WithRetry(uint64(opts.Retries), opts.RetryBase),
	)

	m := &Module{opts: opts}

	var fetch dumps.Fetcher = httpf
	if opts.CacheDir != "" {
		cache, err := dumps.NewCache(
			opts.CacheDir,
			httpf,
			dumps.WithRetention(time.Duration(opts.RetainMaxDays)*24*time.Hour, opts.RetainMaxBytes),
		)
		if err != nil {
			return nil, err
		}
		fetch = cache
		m.ports.Cache = cache
	}

	m.ports.Streamer = service.New(
		ingest.NewSources(fetch),
		service.Config{SkipMalformed: opts.SkipMalformed, MatchTimeout: opts.MatchTimeout},
		service.NewMetrics(reg),
	)
	return m, nil
}

// Name returns the module name
func (m *Module) Name() string { return "creek" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Streamer returns the streaming port
func (m *Module) Streamer() domain.StreamerPort { return m.ports.Streamer }

// Cache returns the cache port, nil without a cache dir
func (m *Module) Cache() domain.CachePort { return m.ports.Cache }

// Options returns the options the module was built with
func (m *Module) Options() Options { return m.opts }
