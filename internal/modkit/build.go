package modkit

import (
	"net/http"

	"pvcreek/internal/modkit/httpkit"
	pstrings "pvcreek/internal/platform/strings"
)

// Built is what a module keeps from its options
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any
}

// Option adjusts a module build
type Option func(*Built)

// WithName names the module in logs and errors
func WithName(name string) Option { return func(b *Built) { b.Name = name } }

// WithPrefix mounts the module under a path, e.g. /meta
func WithPrefix(prefix string) Option {
	return func(b *Built) { b.Prefix = pstrings.MountPath(prefix) }
}

// WithMiddlewares appends module scoped middleware, outermost first
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithPorts records the ports the module serves from
func WithPorts(p any) Option { return func(b *Built) { b.Ports = p } }

// Build applies opts in order
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	return b
}

// Mount runs register under b.Prefix, or on a group at the root without one, with b.Mw applied
func (b Built) Mount(r httpkit.Router, register func(httpkit.Router)) {
	if b.Prefix == "" {
		httpkit.With(r, b.Mw, register)
		return
	}
	httpkit.MountUnder(r, b.Prefix, b.Mw, register)
}
