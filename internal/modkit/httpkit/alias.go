// Package httpkit re-exports the platform http helpers modules use, so handlers import one package
package httpkit

import (
	"net/http"

	phttp "platewise/internal/platform/net/http"
)

type (
	// Envelope is the transport envelope
	Envelope = phttp.Envelope
	// Page is list pagination metadata
	Page = phttp.Page
	// Response is the return-style handler result
	Response = phttp.Response
	// Handler is the platform handler type
	Handler = phttp.Handler
	// Router is the platform router seam
	Router = phttp.Router
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// NoContent returns a 204 response
func NoContent() Response { return phttp.NoContent() }

// Error maps err to status and envelope
func Error(err error) Response { return phttp.Error(err) }

// List returns items with a page block
func List(items any, total, limit int) Response { return phttp.List(items, total, limit) }

// Handle adapts a Response-returning function
func Handle(fn func(*http.Request) Response) Handler { return phttp.Handle(fn) }
