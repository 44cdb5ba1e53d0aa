package host

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlSpec = `
name: wasm-filter
code: plugin.wasm
maxConcurrency: 2
timeout: 250ms
parameters:
  zeta: "1"
  alpha: two
  port: 8080
`

const tomlSpec = `
name = "wasm-filter"
code = "plugin.wasm"
maxConcurrency = 2
timeout = "250ms"

[parameters]
zeta = "1"
alpha = "two"
port = 8080
`

const jsonSpec = `{
  "name": "wasm-filter",
  "code": "plugin.wasm",
  "maxConcurrency": 2,
  "timeout": "250ms",
  "parameters": {"zeta": "1", "alpha": "two", "port": "8080"}
}`

func TestParseSpec_Formats(t *testing.T) {
	tests := []struct {
		format string
		data   string
	}{
		{"yaml", yamlSpec},
		{"toml", tomlSpec},
		{"json", jsonSpec},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			spec, err := ParseSpec([]byte(tt.data), tt.format)
			require.NoError(t, err)

			assert.Equal(t, "wasm-filter", spec.Name)
			assert.Equal(t, "plugin.wasm", spec.Code)
			assert.Equal(t, 2, spec.MaxConcurrency)
			assert.Equal(t, 250*time.Millisecond, time.Duration(spec.Timeout))
			assert.Equal(t, []string{"zeta", "1", "alpha", "two", "port", "8080"}, spec.Parameters.Pairs(),
				"parameters keep document order")
		})
	}
}

func TestParseSpec_Defaults(t *testing.T) {
	spec, err := ParseSpec([]byte("name: f\ncode: p.wasm\n"), "yaml")
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxConcurrency, spec.MaxConcurrency)
	assert.Equal(t, DefaultTimeout, time.Duration(spec.Timeout))
	require.NotNil(t, spec.Parameters)
	assert.Equal(t, 0, spec.Parameters.Len())
}

func TestParseSpec_Errors(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		data    string
		wantErr string
	}{
		{"missing name", "yaml", "code: p.wasm\n", "invalid spec"},
		{"missing code", "yaml", "name: f\n", "invalid spec"},
		{"negative concurrency", "yaml", "name: f\ncode: p\nmaxConcurrency: -1\n", "invalid spec"},
		{"bad timeout", "yaml", "name: f\ncode: p\ntimeout: soon\n", "invalid duration"},
		{"nested toml parameter", "toml", "name = \"f\"\ncode = \"p\"\n[parameters.sub]\nx = 1\n", "nested tables"},
		{"unknown format", "ini", "", "unknown spec format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSpec([]byte(tt.data), tt.format)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadSpec_ResolvesCodePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "filter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlSpec), 0o600))

	spec, err := LoadSpec(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "plugin.wasm"), spec.Code)

	_, err = LoadSpec(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "read spec")
}

func TestSpecSchema(t *testing.T) {
	out, err := SpecSchema()
	require.NoError(t, err)

	var schema struct {
		Properties map[string]struct {
			Type                 string         `json:"type"`
			AdditionalProperties map[string]any `json:"additionalProperties"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	require.NoError(t, json.Unmarshal(out, &schema))

	assert.Equal(t, "string", schema.Properties["name"].Type)
	assert.Equal(t, "string", schema.Properties["timeout"].Type)
	assert.Equal(t, "integer", schema.Properties["maxConcurrency"].Type)
	assert.Equal(t, "object", schema.Properties["parameters"].Type)
	assert.Equal(t, "string", schema.Properties["parameters"].AdditionalProperties["type"])
	assert.ElementsMatch(t, []string{"name", "code"}, schema.Required)
}
