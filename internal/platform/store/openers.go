package store

import (
	"context"
	"fmt"
	"time"

	"platewise/internal/platform/logger"
	chx "platewise/internal/platform/store/ch"
	"platewise/internal/platform/store/pg"
)

// sleep is a seam for tests
var sleep = time.Sleep

// openPG opens the pool and pings it with capped exponential backoff before publishing the adapter
func openPG(ctx context.Context, cfg PGConfig, log logger.Logger) (*pgAdapter, error) {
	var tracer pg.QueryTracer
	if cfg.LogSQL {
		tracer = pg.Tracer(log)
	}
	p, err := pg.Open(ctx, pg.Config{URL: cfg.URL, MaxConns: cfg.MaxConns, SlowMs: cfg.SlowQueryMs}, tracer, nil)
	if err != nil {
		return nil, err
	}

	attempts := max(cfg.ConnectRetries, 1)
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	backoff := 150 * time.Millisecond
	var lastErr error
	for i := 0; i < attempts; i++ {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		lastErr = p.Pool.Ping(pctx)
		cancel()
		if lastErr == nil {
			return newPGAdapter(p), nil
		}
		if ctx.Err() != nil {
			p.Close()
			return nil, ctx.Err()
		}
		log.Warn().Err(lastErr).Int("attempt", i+1).Dur("backoff", backoff).Msg("postgres not ready")
		sleep(backoff)
		backoff = min(backoff*2, 2*time.Second)
	}
	p.Close()
	return nil, fmt.Errorf("ping failed after %d attempts: %w", attempts, lastErr)
}

func openCH(ctx context.Context, cfg Config) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{URL: cfg.CH.URL, Role: cfg.AppName})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}
