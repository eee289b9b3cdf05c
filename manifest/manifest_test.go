package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManifest() *Manifest {
	return &Manifest{
		BaseURL: "https://cdn.example/",
		Modules: []Entry{
			{ID: "chart", URL: "chart.wasm", Size: 1000, Capabilities: []string{"chart-bar"}, Version: "1.0.0"},
			{ID: "table", URL: "table.wasm", Size: 2000, Capabilities: []string{"table-grid", "table-span"}, Version: "2.1.3"},
		},
	}
}

func TestLookup(t *testing.T) {
	m := testManifest()

	e, ok := m.Lookup("chart")
	require.True(t, ok)
	assert.Equal(t, "chart.wasm", e.URL)

	_, ok = m.Lookup("missing")
	assert.False(t, ok)
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		url     string
		want    string
	}{
		{"trailing slash", "https://cdn.example/", "chart.wasm", "https://cdn.example/chart.wasm"},
		{"no trailing slash", "https://cdn.example", "chart.wasm", "https://cdn.example/chart.wasm"},
		{"leading slash on entry", "https://cdn.example/", "/chart.wasm", "https://cdn.example/chart.wasm"},
		{"both slashes", "https://cdn.example", "/mods/chart.wasm", "https://cdn.example/mods/chart.wasm"},
		{"empty base", "", "chart.wasm", "chart.wasm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Manifest{BaseURL: tt.baseURL}
			assert.Equal(t, tt.want, m.ResolveURL(Entry{URL: tt.url}))
		})
	}
}

func TestCacheKeyEmbedsVersion(t *testing.T) {
	e := Entry{ID: "chart", Version: "1.0.0"}
	assert.Equal(t, "chart@1.0.0", e.CacheKey())

	e.Version = "1.1.0"
	assert.Equal(t, "chart@1.1.0", e.CacheKey())
}

func TestHasCapability(t *testing.T) {
	e := Entry{Capabilities: []string{"chart-bar", "chart-pie"}}
	assert.True(t, e.HasCapability("chart-pie"))
	assert.False(t, e.HasCapability("chart-scatter"))
}

func TestSemVer(t *testing.T) {
	v, err := Entry{Version: "1.2.3-rc.1"}.SemVer()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v.Major())

	_, err = Entry{Version: "not-a-version"}.SemVer()
	assert.Error(t, err)
}

func TestValidateOK(t *testing.T) {
	assert.NoError(t, testManifest().Validate())
}

func TestValidateErrors(t *testing.T) {
	m := &Manifest{Modules: []Entry{
		{ID: "", URL: "a.wasm", Version: "1.0.0"},
		{ID: "dup", URL: "b.wasm", Version: "1.0.0"},
		{ID: "dup", URL: "c.wasm", Version: "1.0.0"},
		{ID: "nourl", URL: "", Version: "1.0.0"},
		{ID: "badsize", URL: "d.wasm", Size: -1, Version: "1.0.0"},
		{ID: "badver", URL: "e.wasm", Version: "one-point-oh"},
	}}

	err := m.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "empty id")
	assert.ErrorContains(t, err, "duplicate id")
	assert.ErrorContains(t, err, "empty url")
	assert.ErrorContains(t, err, "negative size")
	assert.ErrorContains(t, err, "invalid version")
}

func TestParseJSON(t *testing.T) {
	data := []byte(`{
		"baseUrl": "https://cdn.example/",
		"modules": [
			{"id": "chart", "url": "chart.wasm", "size": 1000,
			 "capabilities": ["chart-bar"], "version": "1.0.0"}
		]
	}`)

	m, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/", m.BaseURL)
	require.Len(t, m.Modules, 1)
	assert.Equal(t, "chart", m.Modules[0].ID)
	assert.Equal(t, int64(1000), m.Modules[0].Size)
}

func TestParseJSONInvalid(t *testing.T) {
	_, err := Parse([]byte(`{`))
	assert.Error(t, err)
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
baseUrl: https://cdn.example/
modules:
  - id: chart
    url: chart.wasm
    size: 1000
    capabilities: [chart-bar]
    version: 1.0.0
`)

	m, err := ParseYAML(data)
	require.NoError(t, err)
	require.Len(t, m.Modules, 1)
	assert.Equal(t, "chart", m.Modules[0].ID)
	assert.True(t, m.Modules[0].HasCapability("chart-bar"))
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "m.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"baseUrl":"x/","modules":[]}`), 0o644))
	m, err := Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "x/", m.BaseURL)

	yamlPath := filepath.Join(dir, "m.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("baseUrl: y/\nmodules: []\n"), 0o644))
	m, err = Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "y/", m.BaseURL)

	tomlPath := filepath.Join(dir, "m.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("baseUrl = \"z/\"\n"), 0o644))
	_, err = Load(tomlPath)
	assert.ErrorContains(t, err, "unsupported manifest extension")

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
