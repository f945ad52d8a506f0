package store

import (
	"time"

	"platewise/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string
	PG      PGConfig
	CH      CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int
	PingTimeout    time.Duration
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string
}

// ConfigFrom reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_* from cfg
func ConfigFrom(cfg config.Conf, appName string) Config {
	pg := cfg.Prefix("SERVICE_PGSQL_")
	ch := cfg.Prefix("SERVICE_CLICKHOUSE_")

	out := Config{
		AppName: appName,
		PG: PGConfig{
			Enabled:        pg.MayBool("ENABLED", false),
			MaxConns:       int32(pg.MayInt("MAX_CONNS", 8)),
			LogSQL:         pg.MayBool("LOG_SQL", false),
			SlowQueryMs:    pg.MayInt("SLOW_MS", 200),
			ConnectRetries: pg.MayInt("CONNECT_RETRIES", 10),
			PingTimeout:    pg.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
		CH: CHConfig{Enabled: ch.MayBool("ENABLED", false)},
	}
	if out.PG.Enabled {
		out.PG.URL = pg.MustString("DBURL")
	}
	if out.CH.Enabled {
		out.CH.URL = ch.MustString("DBURL")
	}
	return out
}
