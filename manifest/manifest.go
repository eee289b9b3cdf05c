// Package manifest describes the accelerator modules a document rendering
// engine can load on demand: where each module lives, what capabilities it
// provides, and which semantic version its bytes are.
//
// A manifest is created once at startup and lives for the process. On the
// wire it is JSON; engine bundles may author it as YAML:
//
//	{
//	  "baseUrl": "https://cdn.example/",
//	  "modules": [
//	    {"id": "chart", "url": "chart.wasm", "size": 1000,
//	     "capabilities": ["chart-bar"], "version": "1.0.0"}
//	  ]
//	}
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Entry describes one loadable accelerator module.
type Entry struct {
	// ID uniquely identifies the module within its manifest.
	ID string `json:"id" yaml:"id"`

	// URL locates the module's bytes, relative to the manifest base URL.
	URL string `json:"url" yaml:"url"`

	// Size is the declared byte size, used for progress estimation when the
	// transport reports no length.
	Size int64 `json:"size" yaml:"size"`

	// Capabilities tags what the module can render (e.g. "chart-bar").
	Capabilities []string `json:"capabilities" yaml:"capabilities"`

	// Version is the module's semantic version string.
	Version string `json:"version" yaml:"version"`
}

// SemVer parses the entry's version string.
func (e Entry) SemVer() (*semver.Version, error) {
	return semver.NewVersion(e.Version)
}

// HasCapability reports whether the entry declares the given capability tag.
func (e Entry) HasCapability(tag string) bool {
	for _, c := range e.Capabilities {
		if c == tag {
			return true
		}
	}
	return false
}

// CacheKey returns the persistent-cache key for the entry: id + "@" + version.
//
// The key embeds the version, so bumping an entry's version transparently
// bypasses bytes persisted for an older version without an explicit purge.
func (e Entry) CacheKey() string {
	return e.ID + "@" + e.Version
}

// Manifest is the static description of every loadable accelerator module.
type Manifest struct {
	// BaseURL is the prefix all entry URLs resolve against.
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`

	// Modules lists every loadable module.
	Modules []Entry `json:"modules" yaml:"modules"`
}

// Lookup returns the entry with the given id.
func (m *Manifest) Lookup(id string) (Entry, bool) {
	for _, e := range m.Modules {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// ResolveURL returns the absolute fetch URL for an entry: the normalized
// base URL joined with the entry's relative URL. Normalization guarantees
// exactly one slash at the join point.
func (m *Manifest) ResolveURL(e Entry) string {
	base := m.BaseURL
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + strings.TrimPrefix(e.URL, "/")
}

// Validate checks the manifest for configuration mistakes: duplicate or
// empty ids, empty URLs, negative sizes and unparseable versions. All
// problems are reported together via errors.Join.
func (m *Manifest) Validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(m.Modules))
	for i, e := range m.Modules {
		if e.ID == "" {
			errs = append(errs, fmt.Errorf("manifest: module %d: empty id", i))
		} else if _, dup := seen[e.ID]; dup {
			errs = append(errs, fmt.Errorf("manifest: module %q: duplicate id", e.ID))
		} else {
			seen[e.ID] = struct{}{}
		}
		if e.URL == "" {
			errs = append(errs, fmt.Errorf("manifest: module %q: empty url", e.ID))
		}
		if e.Size < 0 {
			errs = append(errs, fmt.Errorf("manifest: module %q: negative size %d", e.ID, e.Size))
		}
		if _, err := e.SemVer(); err != nil {
			errs = append(errs, fmt.Errorf("manifest: module %q: invalid version %q: %w", e.ID, e.Version, err))
		}
	}
	return errors.Join(errs...)
}

// Parse decodes a JSON manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parsing JSON: %w", err)
	}
	return &m, nil
}

// ParseYAML decodes a YAML manifest.
func ParseYAML(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parsing YAML: %w", err)
	}
	return &m, nil
}

// Load reads a manifest file, dispatching on the file extension:
// .json is parsed as JSON, .yaml and .yml as YAML.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: reading %s: %w", path, err)
	}
	switch ext := filepath.Ext(path); ext {
	case ".json":
		return Parse(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("manifest: unsupported manifest extension %q", ext)
	}
}
