// Package module mounts the meta routes under /meta
package module

import (
	"context"
	"time"

	"pvcreek/internal/modkit"
	"pvcreek/internal/modkit/httpkit"
	str "pvcreek/internal/platform/strings"

	metahttp "pvcreek/internal/services/api/meta/http"
)

// Module implements modkit.Module
type Module struct {
	b    modkit.Built
	deps metahttp.Deps
}

type pinger interface{ Ping(context.Context) error }

// probe reports a backend as skipped when it is not configured
func probe(name string, b any) metahttp.Probe {
	p := metahttp.Probe{Name: name}
	if pp, ok := b.(pinger); ok {
		p.Ping = pp.Ping
	}
	return p
}

// New builds the meta module; cacheDir is reported by /meta/service
func New(deps modkit.Deps, service, cacheDir string, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	return &Module{b: b, deps: metahttp.Deps{
		ServiceName: str.MustString(service, "meta service name"),
		StartedAt:   time.Now(),
		Probes:      []metahttp.Probe{probe("pg", deps.PG), probe("ch", deps.CH)},
		CacheDir:    cacheDir,
	}}
}

func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, m.deps) })
}

func (m *Module) Name() string { return m.b.Name }

// Ports is nil; nothing depends on meta
func (m *Module) Ports() any { return nil }
