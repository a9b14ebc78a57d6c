package validation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/platinummonkey/plugin-manifest-tool/pkg/manifest"
	"github.com/platinummonkey/plugin-manifest-tool/pkg/observability"
)

func validVersion(version string) manifest.PluginVersion {
	return manifest.PluginVersion{
		Version:   version,
		Changelog: "Initial release",
		TargetABI: "10.8.0",
		SourceURL: "https://example.com/pkg.zip",
		Checksum:  "d41d8cd98f00b204e9800998ecf8427e",
		Timestamp: "2021-01-01T00:00:00Z",
		Filename:  "pkg.zip",
		Name:      "Release " + version,
	}
}

func validPlugin(name string) manifest.Plugin {
	return manifest.Plugin{
		GUID:        "550e8400-e29b-41d4-a716-446655440000",
		Name:        name,
		Description: "A plugin",
		Overview:    "Does things",
		Owner:       "someone",
		Category:    "General",
		Versions:    []manifest.PluginVersion{validVersion("1.0.0.0")},
	}
}

func brokenPlugin() manifest.Plugin {
	return manifest.Plugin{
		GUID: "not-a-guid",
		Name: "Broken",
		Versions: []manifest.PluginVersion{{
			Version:   "1.0.0",
			TargetABI: "1.0",
			SourceURL: "not a url",
			Checksum:  "abc",
			Timestamp: "not-a-time",
		}},
	}
}

func TestValidator_AllInvalidScenario(t *testing.T) {
	report := NewValidator().Validate(context.Background(), manifest.Manifest{brokenPlugin()})

	require.False(t, report.Clean())
	assert.Equal(t, 5, report.Len())
	for _, c := range Categories() {
		assert.Len(t, report.Failures(c), 1, c.String())
	}

	var cerr *ChecksumFormatError
	require.ErrorAs(t, report.Failures(CategoryChecksum)[0].Err, &cerr)
	assert.True(t, cerr.WrongLength)
	assert.Empty(t, cerr.InvalidChars, "abc is valid hex")

	var verr *VersionFormatError
	require.ErrorAs(t, report.Failures(CategoryVersion)[0].Err, &verr)
	assert.NotNil(t, verr.ABI)
	assert.NotNil(t, verr.Release)

	want := strings.Join([]string{
		`Plugin "Broken": invalid GUID "not-a-guid": invalid UUID length: 10`,
		`Plugin "Broken" version "1.0.0": invalid source URL "not a url": relative URL without a base`,
		`Plugin "Broken" version "1.0.0": invalid target ABI "1.0": expected 3 parts but got 2; invalid version "1.0.0": expected 4 parts but got 3`,
		`Plugin "Broken" version "1.0.0": invalid checksum "abc": expected 32 characters but got 3`,
		`Plugin "Broken" version "1.0.0": invalid timestamp "not-a-time": cannot parse "not-a-time" as year`,
	}, "\n")
	assert.Equal(t, want, report.String())
}

func TestValidator_AllValidScenario(t *testing.T) {
	report := NewValidator().Validate(context.Background(), manifest.Manifest{validPlugin("Good")})

	assert.True(t, report.Clean())
	assert.Equal(t, 0, report.Len())
	assert.Equal(t, SuccessMessage, report.String())
}

func TestValidator_EmptyManifest(t *testing.T) {
	tests := []struct {
		name     string
		manifest manifest.Manifest
	}{
		{"nil manifest", nil},
		{"no plugins", manifest.Manifest{}},
		{"plugin without versions", manifest.Manifest{{GUID: "550e8400-e29b-41d4-a716-446655440000", Name: "Empty"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := NewValidator().Validate(context.Background(), tt.manifest)
			assert.Equal(t, SuccessMessage, report.String())
		})
	}
}

func TestValidator_NoShortCircuit(t *testing.T) {
	bad := validPlugin("Mixed")
	bad.GUID = ""
	v1 := validVersion("1.0.0.0")
	v1.Checksum = "short"
	v2 := validVersion("2.0")
	v2.Timestamp = "2021-13-01T00:00:00Z"
	bad.Versions = []manifest.PluginVersion{v1, v2}

	report := NewValidator().Validate(context.Background(), manifest.Manifest{bad, validPlugin("Fine")})

	assert.Len(t, report.Failures(CategoryGUID), 1)
	assert.Empty(t, report.Failures(CategoryURL))
	require.Len(t, report.Failures(CategoryVersion), 1)
	assert.Equal(t, "2.0", report.Failures(CategoryVersion)[0].Version, "attributed by raw version string")
	require.Len(t, report.Failures(CategoryChecksum), 1)
	assert.Equal(t, "1.0.0.0", report.Failures(CategoryChecksum)[0].Version)
	require.Len(t, report.Failures(CategoryTimestamp), 1)
	assert.Equal(t, "2.0", report.Failures(CategoryTimestamp)[0].Version)
}

func TestValidator_EncounterOrder(t *testing.T) {
	m := manifest.Manifest{
		validPlugin("A"),
		brokenPlugin(),
		validPlugin("C"),
		brokenPlugin(),
	}
	m[1].Name = "B"
	m[3].Name = "D"

	report := NewValidator().Validate(context.Background(), m)

	for _, c := range Categories() {
		failures := report.Failures(c)
		require.Len(t, failures, 2, c.String())
		assert.Equal(t, "B", failures[0].Plugin)
		assert.Equal(t, "D", failures[1].Plugin)
	}

	lines := strings.Split(report.String(), "\n")
	require.Len(t, lines, 10)
	assert.True(t, strings.HasPrefix(lines[0], `Plugin "B": invalid GUID`))
	assert.True(t, strings.HasPrefix(lines[1], `Plugin "D": invalid GUID`))
	assert.Contains(t, lines[9], `invalid timestamp`)
}

func TestValidator_Idempotent(t *testing.T) {
	m := manifest.Manifest{brokenPlugin(), validPlugin("Good"), brokenPlugin()}
	v := NewValidator()

	first := v.Validate(context.Background(), m).String()
	second := v.Validate(context.Background(), m).String()

	assert.Equal(t, first, second)
}

func TestValidator_ParallelMatchesSequential(t *testing.T) {
	var m manifest.Manifest
	for i := 0; i < 50; i++ {
		p := validPlugin(fmt.Sprintf("plugin-%02d", i))
		if i%3 == 0 {
			p = brokenPlugin()
			p.Name = fmt.Sprintf("broken-%02d", i)
		}
		if i%7 == 0 {
			p.Versions = append(p.Versions, validVersion("x.1.2.3"))
		}
		m = append(m, p)
	}

	sequential := NewValidator().Validate(context.Background(), m)

	for _, workers := range []int{2, 4, 16, 100} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			parallel := NewValidator(WithParallelism(workers)).Validate(context.Background(), m)
			assert.Equal(t, sequential.String(), parallel.String())
			assert.Equal(t, sequential.Len(), parallel.Len())
		})
	}
}

func TestValidator_DoesNotMutateManifest(t *testing.T) {
	m := manifest.Manifest{brokenPlugin(), validPlugin("Good")}
	before := fmt.Sprintf("%+v", m)

	NewValidator(WithParallelism(2)).Validate(context.Background(), m)

	assert.Equal(t, before, fmt.Sprintf("%+v", m))
}

func TestValidator_Metrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	v := NewValidator(WithMetrics(metrics))

	v.Validate(context.Background(), manifest.Manifest{brokenPlugin(), validPlugin("Good")})
	v.Validate(context.Background(), manifest.Manifest{validPlugin("Good")})

	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.PluginsValidatedTotal))
	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.VersionsValidatedTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RunsTotal.WithLabelValues(observability.ResultClean)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RunsTotal.WithLabelValues(observability.ResultFailed)))
	assert.Equal(t, 5, testutil.CollectAndCount(metrics.FailuresTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.FailuresTotal.WithLabelValues("checksum")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.ValidationDuration))
}

func TestValidator_Tracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	v := NewValidator(WithTracer(tp.Tracer("test")))
	v.Validate(context.Background(), manifest.Manifest{validPlugin("Good")})
	v.Validate(context.Background(), manifest.Manifest{brokenPlugin()})

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "validation.Validate", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)

	attrs := map[string]int64{}
	for _, kv := range spans[1].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInt64()
	}
	assert.Equal(t, int64(1), attrs["manifest.plugins"])
	assert.Equal(t, int64(5), attrs["validation.failures"])
}

func TestValidator_LogsSummary(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	NewValidator(WithLogger(logger)).Validate(context.Background(), manifest.Manifest{brokenPlugin()})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Validated manifest", entry.Message)
	assert.Equal(t, 5, entry.Data["failures"])
	assert.Equal(t, 1, entry.Data["plugins"])
}

func TestReport_RenderSkipsEmptyCategories(t *testing.T) {
	r := NewReport()
	r.Add(Failure{Category: CategoryTimestamp, Plugin: "P", Version: "1.0.0.0", Err: errors.New("bad time  ")})
	r.Add(Failure{Category: CategoryGUID, Plugin: "P", Err: errors.New("bad guid")})

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf))

	assert.Equal(t,
		"Plugin \"P\": bad guid\nPlugin \"P\" version \"1.0.0.0\": bad time\n",
		buf.String())
}

func TestReport_Merge(t *testing.T) {
	a := NewReport()
	a.add(CategoryURL, "A", "1", errors.New("a"))
	a.add(CategoryURL, "A", "2", nil)

	b := NewReport()
	b.add(CategoryURL, "B", "1", errors.New("b"))
	b.add(CategoryChecksum, "B", "1", errors.New("c"))

	a.Merge(b)
	a.Merge(nil)

	require.Len(t, a.Failures(CategoryURL), 2)
	assert.Equal(t, "A", a.Failures(CategoryURL)[0].Plugin)
	assert.Equal(t, "B", a.Failures(CategoryURL)[1].Plugin)
	assert.Len(t, a.Failures(CategoryChecksum), 1)
	assert.Nil(t, a.Failures(CategoryGUID))
	assert.Equal(t, 3, a.Len())
}

func TestReport_MarshalJSON(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		data, err := json.Marshal(NewReport())
		require.NoError(t, err)
		assert.JSONEq(t, `{"valid":true,"failures":[]}`, string(data))
	})

	t.Run("failures", func(t *testing.T) {
		report := NewValidator().Validate(context.Background(), manifest.Manifest{brokenPlugin()})

		data, err := json.Marshal(report)
		require.NoError(t, err)

		var decoded struct {
			Valid    bool `json:"valid"`
			Failures []struct {
				Category string `json:"category"`
				Plugin   string `json:"plugin"`
				Version  string `json:"version"`
				Message  string `json:"message"`
			} `json:"failures"`
		}
		require.NoError(t, json.Unmarshal(data, &decoded))

		assert.False(t, decoded.Valid)
		require.Len(t, decoded.Failures, 5)
		assert.Equal(t, "guid", decoded.Failures[0].Category)
		assert.Empty(t, decoded.Failures[0].Version)
		assert.Equal(t, "timestamp", decoded.Failures[4].Category)
		assert.Equal(t, "1.0.0", decoded.Failures[4].Version)
	})
}

func TestCategory_String(t *testing.T) {
	var names []string
	for _, c := range Categories() {
		names = append(names, c.String())
	}
	assert.Equal(t, []string{"guid", "url", "version", "checksum", "timestamp"}, names)
}
