// Package module holds the module contract plus port lookup helpers
package module

import (
	phttp "platewise/internal/platform/net/http"
)

// Module mirrors modkit.Module so port helpers avoid an import cycle
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
