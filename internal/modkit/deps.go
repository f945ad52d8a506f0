// Package modkit wires API modules from shared dependencies and options
package modkit

import (
	"platewise/internal/modkit/repokit"
	"platewise/internal/platform/config"
	"platewise/internal/platform/logger"
	"platewise/internal/platform/store"
)

// Deps are the shared dependencies handed to every module; PG and CH are nil when disabled
type Deps struct {
	Log *logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// Logger returns Log or a component logger from the root when Log is unset
func (d Deps) Logger(component string) *logger.Logger {
	if d.Log != nil {
		l := d.Log.With().Str("component", component).Logger()
		return &l
	}
	return logger.Named(component)
}
