package httpkit

import (
	"net/http"

	phttp "platewise/internal/platform/net/http"
	"platewise/internal/platform/net/http/bind"
)

// Get mounts a body-less GET handler; a returned Response is written as-is
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Handle(func(req *http.Request) Response {
		out, err := h(req)
		if err != nil {
			return Error(err)
		}
		if resp, ok := out.(Response); ok {
			return resp
		}
		return OK(out)
	}))
}

// PostJSON mounts a POST handler with a validated T body
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error), opts ...bind.JSONOptions) {
	phttp.PostJSON(r, path, h, opts...)
}
