// Package module wires portion into the API using modkit
package module

import (
	"platewise/internal/core/portion"
	modkit "platewise/internal/modkit"
	"platewise/internal/modkit/httpkit"

	portionhttp "platewise/internal/services/portion/http"
	portionsvc "platewise/internal/services/portion/service"
)

// Module implements the portion API module
type Module struct {
	b   modkit.Built
	svc portionsvc.Service
}

// New constructs the portion module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("portion"),
		modkit.WithPrefix("/portion"),
	}, opts...)...)

	cfg := FromConfig(deps.Cfg)
	scaler := portion.NewScaler(
		portion.WithDev(cfg.Dev),
		portion.WithLogger(deps.Logger("portion")),
	)
	return &Module{b: b, svc: portionsvc.New(scaler, portionsvc.Options{Workers: cfg.Workers, MaxBatch: cfg.MaxBatch})}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { portionhttp.Register(rr, m.svc) })
}

// Ports exposes the portion service for cross-module use
func (m *Module) Ports() any { return m.svc }

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }
