package modkit

import (
	"net/http"
	"strings"

	phttp "platewise/internal/platform/net/http"
)

// Option mutates build configuration for a module
type Option func(*buildCfg)

type buildCfg struct {
	name     string
	prefix   string
	mw       []func(http.Handler) http.Handler
	ports    any
	register func(phttp.Router)
}

// WithName sets the module name used in logs and the registry
func WithName(name string) Option { return func(c *buildCfg) { c.name = name } }

// WithPrefix mounts the module under a path prefix
func WithPrefix(prefix string) Option { return func(c *buildCfg) { c.prefix = prefix } }

// WithMiddlewares appends per module middleware
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(c *buildCfg) { c.mw = append(c.mw, mw...) }
}

// WithPorts injects a port set declared by another module
func WithPorts[T any](p T) Option { return func(c *buildCfg) { c.ports = p } }

// WithRegister adds extra routes next to the module's own
func WithRegister(fn func(phttp.Router)) Option { return func(c *buildCfg) { c.register = fn } }

// Built is the resolved configuration a module keeps
type Built struct {
	Name     string
	Prefix   string
	Mw       []func(http.Handler) http.Handler
	Ports    any
	Register func(phttp.Router)
}

// Build applies opts in order; later options win
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	if c.register == nil {
		c.register = func(phttp.Router) {}
	}
	return Built{
		Name:     c.name,
		Prefix:   normalizePrefix(c.prefix),
		Mw:       append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:    c.ports,
		Register: c.register,
	}
}

// Mount mounts own plus b.Register under b.Prefix with b.Mw applied
func (b Built) Mount(r phttp.Router, own func(phttp.Router)) {
	r.Route(b.Prefix, func(sub phttp.Router) {
		if len(b.Mw) > 0 {
			sub.Use(b.Mw...)
		}
		own(sub)
		b.Register(sub)
	})
}

// normalizePrefix yields "/x" with no trailing slash; empty becomes "/"
func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
