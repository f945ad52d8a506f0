// Package diag records decode sessions as structured scan reports when debugging is on
package diag

import (
	"net/url"
	"strings"
)

// DebugConfig is resolved once and handed to the Recorder
type DebugConfig struct {
	Enabled bool   `json:"enabled"`
	Source  string `json:"source,omitempty"`
}

// DebugSource reports whether it enables debugging and names itself
type DebugSource func() (bool, string)

// LookupFunc matches os.LookupEnv
type LookupFunc func(string) (string, bool)

// EnvSource enables on NEXT_PUBLIC_SCAN_DEBUG=1, SCAN_DEBUG=1 or CORE_SCAN_DEBUG=true
func EnvSource(lookup LookupFunc) DebugSource {
	return func() (bool, string) {
		if lookup == nil {
			return false, ""
		}
		for _, k := range []string{"NEXT_PUBLIC_SCAN_DEBUG", "SCAN_DEBUG", "CORE_SCAN_DEBUG"} {
			if v, ok := lookup(k); ok && truthy(v) {
				return true, "env:" + k
			}
		}
		return false, ""
	}
}

// QuerySource enables on ?scan_debug=1
func QuerySource(q url.Values) DebugSource {
	return func() (bool, string) {
		if truthy(q.Get("scan_debug")) {
			return true, "query"
		}
		return false, ""
	}
}

// FlagSource enables on a locally stored flag such as a CLI switch
func FlagSource(on bool) DebugSource {
	return func() (bool, string) { return on, "flag" }
}

// ResolveDebug returns the first source that enables debugging
func ResolveDebug(sources ...DebugSource) DebugConfig {
	for _, s := range sources {
		if s == nil {
			continue
		}
		if on, name := s(); on {
			return DebugConfig{Enabled: true, Source: name}
		}
	}
	return DebugConfig{}
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
