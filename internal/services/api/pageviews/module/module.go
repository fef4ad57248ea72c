// Package module wires the pageviews, cache and dumps routes into the API
package module

import (
	"pvcreek/internal/modkit"
	"pvcreek/internal/modkit/httpkit"
	kitmod "pvcreek/internal/modkit/module"
	creekdom "pvcreek/internal/services/creek/domain"

	pvhttp "pvcreek/internal/services/api/pageviews/http"
)

// Module implements the modkit.Module interface
type Module struct {
	b    modkit.Built
	deps pvhttp.Deps
}

// New builds the module over the ports of an opened creek module
// It panics when creek has no streamer; the cache port is optional
func New(creek kitmod.Module, o Options, opts ...modkit.Option) *Module {
	streamer := kitmod.MustPortsOf[creekdom.StreamerPort](creek)
	cache, _ := kitmod.PortsOf[creekdom.CachePort](creek)
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("pageviews"),
		modkit.WithPorts(creek.Ports()),
	}, opts...)...)

	return &Module{b: b, deps: pvhttp.Deps{
		Streamer:   streamer,
		Cache:      cache,
		BaseURL:    o.BaseURL,
		FlushEvery: o.FlushEvery,
		Timeout:    o.Timeout,
		MaxStreams: o.MaxStreams,
	}}
}

// MountRoutes registers /pageviews, /cache and /dumps on r
// The routes sit at the api root, so there is no module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { pvhttp.Register(rr, m.deps) })
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.b.Name }

// Ports exposes the creek ports the routes run on
func (m *Module) Ports() any { return m.b.Ports }
