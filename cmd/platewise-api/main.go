// @title         Platewise API
// @version       0.1.0
// @description   Barcode decoding with scan diagnostics, and portion estimation

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"platewise/internal/modkit/repokit"
	"platewise/internal/platform/config"
	"platewise/internal/platform/logger"
	phttp "platewise/internal/platform/net/http"
	"platewise/internal/platform/store"

	"platewise/internal/services/api"
	scanrepo "platewise/internal/services/scan/repo"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	l := logger.Get()

	// both backends are optional (SERVICE_PGSQL_ENABLED / SERVICE_CLICKHOUSE_ENABLED)
	st, err := store.Open(ctx, store.ConfigFrom(root, "platewise-api"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if st.PG != nil || st.CH != nil {
		repokit.MustPing(ctx, "store", st)
	}
	if st.PG != nil {
		if err := scanrepo.Migrate(ctx, st.PG); err != nil {
			l.Panic().Err(err).Msg("scan report migration failed")
		}
	}

	// http server (reads CORE_API_API_PORT and timeouts)
	srv := phttp.NewServer(apiCfg)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
