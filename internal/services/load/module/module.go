// Package module provides the load module implementation
package module

import (
	"pvcreek/internal/modkit"
	"pvcreek/internal/modkit/repokit"
	perr "pvcreek/internal/platform/errors"
	creekdom "pvcreek/internal/services/creek/domain"
	"pvcreek/internal/services/load/domain"
	"pvcreek/internal/services/load/repo"
	"pvcreek/internal/services/load/service"
)

// Ports defines the load module ports
type Ports struct {
	Loader domain.LoaderPort
}

// Module implements the load module
type Module struct {
	ports Ports
	sinks []string
}

// New builds the load module over the backends present in deps
// At least one selected backend must be configured
func New(deps modkit.Deps, streamer creekdom.StreamerPort, opts Options) (*Module, error) {
	var sinks []domain.Sink
	if opts.UsePG && deps.PG != nil {
		sinks = append(sinks, repokit.MustBind(repo.NewPG(), deps.PG))
	}
	if opts.UseCH && deps.CH != nil {
		sinks = append(sinks, repo.NewCH(deps.CH))
	}
	if len(sinks) == 0 {
		return nil, perr.InvalidArgf("load: no sink selected; set PVCREEK_PGSQL_DBURL or PVCREEK_CLICKHOUSE_DBURL")
	}

	m := &Module{}
	for _, s := range sinks {
		m.sinks = append(m.sinks, s.Name())
	}
	m.ports.Loader = service.New(streamer, sinks, service.Config{
		BatchSize:    opts.BatchSize,
		CreateSchema: opts.CreateSchema,
	})
	return m, nil
}

// Name returns the module name
func (m *Module) Name() string { return "load" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Loader returns the loader port
func (m *Module) Loader() domain.LoaderPort { return m.ports.Loader }

// Sinks names the sinks rows are written to, in write order
func (m *Module) Sinks() []string { return m.sinks }
