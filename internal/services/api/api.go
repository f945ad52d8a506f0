// Package api composes the HTTP API from the meta, scan and portion modules
package api

import (
	"platewise/internal/platform/config"
	"platewise/internal/platform/logger"
	phttp "platewise/internal/platform/net/http"
	"platewise/internal/platform/net/middleware"
	"platewise/internal/platform/store"

	"platewise/internal/modkit"
	"platewise/internal/modkit/httpkit"
	"platewise/internal/modkit/module"
	"platewise/internal/modkit/swaggerkit"

	metamod "platewise/internal/services/api/meta/module"
	portionmod "platewise/internal/services/portion/module"
	scanmod "platewise/internal/services/scan/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool

	// ScanOptions are passed to the scan module, e.g. modkit.WithPorts(scanmod.Ports{...})
	ScanOptions []modkit.Option
}

// Mount mounts the API service onto the given router and returns the mounted modules
func Mount(r phttp.Router, opt Options) []modkit.Module {
	deps := modkit.Deps{Log: opt.Logger, Cfg: opt.Config}
	if opt.Store != nil {
		deps.PG, deps.CH = opt.Store.PG, opt.Store.CH
	}

	mods := []modkit.Module{
		metamod.New(deps),
		scanmod.New(deps, opt.ScanOptions...),
		portionmod.New(deps),
	}

	r.Use(middleware.Heartbeat("/health"))
	swaggerkit.Mount(r, opt.EnableSwagger, swaggerkit.DocOptions{})
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
	return mods
}
