package modkit

import (
	phttp "platewise/internal/platform/net/http"
)

// Module is the surface API modules expose to the composer
type Module interface {
	// MountRoutes mounts the module's routes under r
	MountRoutes(r phttp.Router)
	// Ports returns the module's port set for cross wiring, or nil
	Ports() any
	// Name returns the module name
	Name() string
}

// Builder constructs a Module from shared deps and options
type Builder func(Deps, ...Option) Module
