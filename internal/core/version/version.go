// Package version reports build metadata stamped in with -ldflags
package version

import "runtime/debug"

// BuildInfo describes the running binary
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

// stamped with -ldflags "-X platewise/internal/core/version.version=v0.3.0 -X ...commit=abcd -X ...date=2026-10-01"
var (
	version = "dev"
	commit  = ""
	date    = "unknown"
)

// readBuild is a seam for tests
var readBuild = debug.ReadBuildInfo

// Info returns metadata for service; an unstamped commit falls back to vcs.revision
func Info(service string) BuildInfo {
	bi := BuildInfo{Service: service, Version: version, Commit: commit, Date: date}
	if info, ok := readBuild(); ok {
		bi.Go = info.GoVersion
		if bi.Commit == "" {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					bi.Commit = s.Value
				}
			}
		}
	}
	if bi.Commit == "" {
		bi.Commit = "none"
	}
	return bi
}
