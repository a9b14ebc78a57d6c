package cli

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/plugin-manifest-tool/pkg/manifest"
	"github.com/platinummonkey/plugin-manifest-tool/pkg/validation"
)

func TestValidate_Clean(t *testing.T) {
	path := writeManifest(t, "manifest.json", validManifest)

	stdout, _, err := execute(t, "validate", path)

	require.NoError(t, err)
	assert.Equal(t, validation.SuccessMessage+"\n", stdout)
}

func TestValidate_Failures(t *testing.T) {
	path := writeManifest(t, "manifest.json", brokenManifest)

	stdout, _, err := execute(t, "validate", path)

	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, ExitValidationFailed, ExitCode(err))

	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], `Plugin "Broken": invalid GUID`))
	assert.Contains(t, lines[1], "invalid source URL")
	assert.Contains(t, lines[2], "invalid target ABI")
	assert.Contains(t, lines[2], "invalid version")
	assert.Contains(t, lines[3], "invalid checksum")
	assert.Contains(t, lines[4], "invalid timestamp")
}

func TestValidate_YAML(t *testing.T) {
	path := writeManifest(t, "manifest.yaml", `
- guid: 550e8400-e29b-41d4-a716-446655440000
  name: Playback Reporting
  versions:
    - version: 1.0.0.0
      targetAbi: 10.8.0
      sourceUrl: https://example.com/pkg.zip
      checksum: d41d8cd98f00b204e9800998ecf8427e
      timestamp: "2021-01-01T00:00:00Z"
`)

	stdout, _, err := execute(t, "validate", path)

	require.NoError(t, err)
	assert.Equal(t, validation.SuccessMessage+"\n", stdout)
}

func TestValidate_JSONFormat(t *testing.T) {
	path := writeManifest(t, "manifest.json", brokenManifest)

	stdout, _, err := execute(t, "validate", path, "--format", "json")
	require.ErrorIs(t, err, ErrValidationFailed)

	var report struct {
		Valid    bool `json:"valid"`
		Failures []struct {
			Category string `json:"category"`
			Plugin   string `json:"plugin"`
		} `json:"failures"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.False(t, report.Valid)
	require.Len(t, report.Failures, 5)
	assert.Equal(t, "guid", report.Failures[0].Category)
	assert.Equal(t, "Broken", report.Failures[0].Plugin)
}

func TestValidate_LoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		missing bool
		wantIs  error
	}{
		{name: "missing file", missing: true, wantIs: manifest.ErrReadManifest},
		{name: "invalid json", content: `[{"guid": `, wantIs: manifest.ErrDecodeManifest},
		{name: "object instead of array", content: `{"guid": "x"}`, wantIs: manifest.ErrDecodeManifest},
		{name: "empty document", content: "", wantIs: manifest.ErrDecodeManifest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing.json")
			if !tt.missing {
				path = writeManifest(t, "manifest.json", tt.content)
			}

			stdout, _, err := execute(t, "validate", path)

			require.ErrorIs(t, err, tt.wantIs)
			assert.Equal(t, ExitError, ExitCode(err))
			assert.Empty(t, stdout, "no report when the manifest cannot be loaded")
		})
	}
}

func TestValidate_EmptyArrayIsValid(t *testing.T) {
	path := writeManifest(t, "manifest.json", "[]")

	stdout, _, err := execute(t, "validate", path)

	require.NoError(t, err)
	assert.Equal(t, validation.SuccessMessage+"\n", stdout)
}

func TestValidate_InvalidUsage(t *testing.T) {
	path := writeManifest(t, "manifest.json", validManifest)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no source", []string{"validate"}, "accepts 1 arg"},
		{"two sources", []string{"validate", path, path}, "accepts 1 arg"},
		{"bad format", []string{"validate", path, "--format", "xml"}, "invalid --format"},
		{"zero parallel", []string{"validate", path, "--parallel", "0"}, "--parallel must be at least 1"},
		{"watch remote", []string{"validate", "https://example.com/m.json", "--watch"}, "--watch requires a local manifest file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, ExitError, ExitCode(err))
		})
	}
}

func TestValidate_Parallel(t *testing.T) {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < 20; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		if i%2 == 0 {
			b.WriteString(strings.TrimSuffix(strings.TrimPrefix(brokenManifest, "["), "]"))
		} else {
			b.WriteString(strings.TrimSuffix(strings.TrimPrefix(validManifest, "["), "]"))
		}
	}
	b.WriteString("]")
	path := writeManifest(t, "manifest.json", b.String())

	sequential, _, err := execute(t, "validate", path)
	require.ErrorIs(t, err, ErrValidationFailed)

	parallel, _, err := execute(t, "validate", path, "--parallel", "4")
	require.ErrorIs(t, err, ErrValidationFailed)

	assert.Equal(t, sequential, parallel)
	assert.Len(t, strings.Split(strings.TrimRight(parallel, "\n"), "\n"), 50)
}

func TestValidate_HTTPSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/manifest.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(validManifest))
	}))
	defer server.Close()

	stdout, _, err := execute(t, "validate", server.URL+"/manifest.json")
	require.NoError(t, err)
	assert.Equal(t, validation.SuccessMessage+"\n", stdout)

	_, _, err = execute(t, "validate", server.URL+"/missing.json")
	require.ErrorIs(t, err, manifest.ErrReadManifest)
	assert.Contains(t, err.Error(), "404")
}

func TestValidate_MetricsFile(t *testing.T) {
	path := writeManifest(t, "manifest.json", brokenManifest)
	metricsPath := filepath.Join(t.TempDir(), "manifest.prom")

	_, _, err := execute(t, "validate", path, "--metrics-file", metricsPath)
	require.ErrorIs(t, err, ErrValidationFailed)

	content, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, `manifest_validation_runs_total{result="failed"} 1`)
	assert.Contains(t, text, `manifest_validation_failures_total{category="checksum"} 1`)
	assert.Contains(t, text, "manifest_plugins_validated_total 1")
	assert.Contains(t, text, `manifest_load_duration_seconds_count{source="file"} 1`)
}

func TestValidate_MetricsFileOnLoadError(t *testing.T) {
	path := writeManifest(t, "manifest.json", "not json at all: [")
	metricsPath := filepath.Join(t.TempDir(), "manifest.prom")

	_, _, err := execute(t, "validate", path, "--metrics-file", metricsPath)
	require.Error(t, err)

	content, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), `manifest_load_errors_total{kind="decode",source="file"} 1`)
	assert.Contains(t, string(content), `manifest_validation_runs_total{result="error"} 1`)
}

func TestValidate_LogsGoToStderr(t *testing.T) {
	path := writeManifest(t, "manifest.json", validManifest)

	stdout, stderr, err := execute(t, "validate", path, "--log-level", "debug")

	require.NoError(t, err)
	assert.Equal(t, validation.SuccessMessage+"\n", stdout)
	assert.Contains(t, stderr, "Loaded manifest")
	assert.Contains(t, stderr, "Validated manifest")
}

func TestRunner_ContextLoggerIsUsed(t *testing.T) {
	path := writeManifest(t, "manifest.json", validManifest)
	isolateEnv(t)
	t.Setenv("MANIFEST_TOOL_LOG_FORMAT", "json")
	t.Setenv("MANIFEST_TOOL_LOG_LEVEL", "debug")

	root := NewRootCommand()
	var stdout, stderr strings.Builder
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"validate", path})

	err := root.ExecuteContext(context.Background())
	require.NoError(t, err)

	var entry map[string]any
	firstLine, _, _ := strings.Cut(stderr.String(), "\n")
	require.NoError(t, json.Unmarshal([]byte(firstLine), &entry))
	assert.Contains(t, entry, "msg")
	assert.False(t, errors.Is(err, ErrValidationFailed))
}
