// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	modkit "platewise/internal/modkit"
	"platewise/internal/modkit/httpkit"

	metahttp "platewise/internal/services/api/meta/http"
)

// ServiceName is reported by health, service and version
const ServiceName = "platewise-api"

// Module implements the modkit.Module interface
type Module struct {
	b         modkit.Built
	deps      modkit.Deps
	startedAt time.Time
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)
	return &Module{b: b, deps: deps, startedAt: time.Now()}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) {
		metahttp.Register(rr, metahttp.Deps{
			ServiceName: ServiceName,
			StartedAt:   m.startedAt,
			PG:          m.deps.PG,
			CH:          m.deps.CH,
		})
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.b.Name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
