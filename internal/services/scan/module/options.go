package module

import (
	"time"

	"platewise/internal/core/barcode"
	"platewise/internal/core/diag"
	"platewise/internal/platform/config"
)

// Options controls decode sessions and persistence
type Options struct {
	Budget  time.Duration
	MinEdge int
	History int
	Persist bool
	Debug   diag.DebugConfig
}

// FromConfig reads CORE_SCAN_* plus the legacy debug switches
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("CORE_SCAN_")
	return Options{
		Budget:  sc.MayDuration("BUDGET", barcode.DefaultBudget),
		MinEdge: sc.MayInt("MIN_EDGE", barcode.DefaultMinEdge),
		History: sc.MayInt("HISTORY", diag.DefaultHistory),
		Persist: sc.MayBool("PERSIST", true),
		Debug:   diag.ResolveDebug(diag.EnvSource(cfg.Lookup)),
	}
}
