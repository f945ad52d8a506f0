package module

import "platewise/internal/platform/config"

// Options controls the scaler and batch fan-out
type Options struct {
	Dev      bool
	Workers  int
	MaxBatch int
}

// FromConfig reads CORE_PORTION_*
func FromConfig(cfg config.Conf) Options {
	pc := cfg.Prefix("CORE_PORTION_")
	return Options{
		Dev:      pc.MayBool("DEV", false),
		Workers:  pc.MayInt("BATCH_WORKERS", 4),
		MaxBatch: pc.MayInt("BATCH_MAX", 64),
	}
}
