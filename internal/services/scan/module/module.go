// Package module wires scan into the API using modkit
package module

import (
	"platewise/internal/adapters/oracle"
	"platewise/internal/core/barcode"
	"platewise/internal/core/diag"
	modkit "platewise/internal/modkit"
	"platewise/internal/modkit/httpkit"

	shttp "platewise/internal/services/scan/http"
	srepo "platewise/internal/services/scan/repo"
	ssvc "platewise/internal/services/scan/service"
)

// Module implements the scan API module
type Module struct {
	b   modkit.Built
	svc ssvc.Service
}

// Ports are optional injections; a nil Oracle is built from CORE_ORACLE_*
type Ports struct {
	Oracle barcode.Oracle
}

// New constructs the scan module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("scan"),
		modkit.WithPrefix("/scan"),
	}, opts...)...)

	cfg := FromConfig(deps.Cfg)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	orc, mode := injected.Oracle, "injected"
	if orc == nil {
		o, m, err := oracle.FromConfig(deps.Cfg)
		if err != nil {
			panic("scan module: " + err.Error())
		}
		orc, mode = o, m
	}

	rec := diag.NewRecorder(cfg.Debug,
		diag.WithCapacity(cfg.History),
		diag.WithLogger(deps.Logger("diag")),
	)
	dec := barcode.NewDecoder(orc,
		barcode.WithBudget(cfg.Budget),
		barcode.WithMinEdge(cfg.MinEdge),
		barcode.WithRecorder(rec),
	)

	so := ssvc.Options{Oracle: mode, Log: deps.Logger("scan")}
	if cfg.Persist {
		if deps.PG != nil {
			so.DB, so.Binder = deps.PG, srepo.NewPG()
		}
		if deps.CH != nil {
			so.Attempts = srepo.NewCH(deps.CH)
		}
	}
	deps.Logger("scan").Info().
		Str("oracle", mode).
		Dur("budget", cfg.Budget).
		Int("min_edge", cfg.MinEdge).
		Bool("debug", cfg.Debug.Enabled).
		Str("debug_source", cfg.Debug.Source).
		Bool("reports_pg", so.DB != nil).
		Bool("attempts_ch", so.Attempts != nil).
		Msg("scan module ready")

	return &Module{b: b, svc: ssvc.New(dec, so)}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { shttp.Register(rr, m.svc) })
}

// Ports exposes the scan service for cross-module use
func (m *Module) Ports() any { return m.svc }

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }
