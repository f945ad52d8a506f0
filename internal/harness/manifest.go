// Package harness replays fixture images through the decoder and keeps a local history of runs
package harness

import (
	"os"
	"path/filepath"
	"strings"

	perr "platewise/internal/platform/errors"

	"gopkg.in/yaml.v3"
)

// Fixture is one labelled image; an empty Expected marks an image that must not decode
type Fixture struct {
	Name     string `yaml:"name"`
	Path     string `yaml:"path"`
	Expected string `yaml:"expected"`
	Format   string `yaml:"format,omitempty"`
}

// Manifest is the fixtures file
type Manifest struct {
	Fixtures []Fixture `yaml:"fixtures"`
}

// LoadManifest reads path and resolves fixture paths against its directory
func LoadManifest(path string) (Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, perr.Wrap(err, perr.ErrorCodeNotFound, "read manifest")
	}
	return ParseManifest(raw, filepath.Dir(path))
}

// ParseManifest decodes raw; relative paths are joined onto dir
func ParseManifest(raw []byte, dir string) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Manifest{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "parse manifest")
	}
	if len(m.Fixtures) == 0 {
		return Manifest{}, perr.InvalidArgf("manifest has no fixtures")
	}
	seen := make(map[string]struct{}, len(m.Fixtures))
	for i := range m.Fixtures {
		f := &m.Fixtures[i]
		f.Name = strings.TrimSpace(f.Name)
		f.Path = strings.TrimSpace(f.Path)
		f.Expected = strings.TrimSpace(f.Expected)
		if f.Name == "" {
			return Manifest{}, perr.InvalidArgf("fixture %d: name is required", i)
		}
		if f.Path == "" {
			return Manifest{}, perr.InvalidArgf("fixture %q: path is required", f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return Manifest{}, perr.InvalidArgf("fixture %q: duplicate name", f.Name)
		}
		seen[f.Name] = struct{}{}
		if !filepath.IsAbs(f.Path) {
			f.Path = filepath.Join(dir, f.Path)
		}
	}
	return m, nil
}
