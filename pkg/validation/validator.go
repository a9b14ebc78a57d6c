package validation

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/plugin-manifest-tool/pkg/manifest"
	"github.com/platinummonkey/plugin-manifest-tool/pkg/observability"
)

const tracerName = "github.com/platinummonkey/plugin-manifest-tool/pkg/validation"

// Validator runs every field validator across a manifest
type Validator struct {
	logger      logrus.FieldLogger
	metrics     *observability.Metrics
	tracer      trace.Tracer
	parallelism int
}

// Option configures a Validator
type Option func(*Validator)

// WithLogger sets the logger used for run summaries
func WithLogger(logger logrus.FieldLogger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithMetrics records run results into m
func WithMetrics(m *observability.Metrics) Option {
	return func(v *Validator) {
		v.metrics = m
	}
}

// WithParallelism validates up to n plugins concurrently. Values below 2
// validate sequentially.
func WithParallelism(n int) Option {
	return func(v *Validator) {
		v.parallelism = n
	}
}

// WithTracer overrides the tracer taken from the global provider
func WithTracer(tracer trace.Tracer) Option {
	return func(v *Validator) {
		v.tracer = tracer
	}
}

// NewValidator creates a validator. It holds no state between runs.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		logger:      observability.NewDiscardLogger(),
		tracer:      otel.Tracer(tracerName),
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks every plugin and version of m and returns the complete
// report. It never stops at the first failure.
func (v *Validator) Validate(ctx context.Context, m manifest.Manifest) *Report {
	_, span := v.tracer.Start(ctx, "validation.Validate",
		trace.WithAttributes(
			attribute.Int("manifest.plugins", len(m)),
			attribute.Int("manifest.versions", m.VersionCount()),
			attribute.Int("validation.parallelism", v.parallelism),
		),
	)
	defer span.End()

	start := time.Now()

	var report *Report
	if v.parallelism > 1 && len(m) > 1 {
		report = v.validateParallel(m)
	} else {
		report = NewReport()
		for i := range m {
			validatePlugin(report, &m[i])
		}
	}

	duration := time.Since(start)
	span.SetAttributes(attribute.Int("validation.failures", report.Len()))
	if !report.Clean() {
		span.SetStatus(codes.Error, "manifest has validation failures")
	}

	v.recordMetrics(m, report, duration)

	v.logger.WithFields(logrus.Fields{
		"plugins":  len(m),
		"versions": m.VersionCount(),
		"failures": report.Len(),
		"duration": duration,
	}).Debug("Validated manifest")

	return report
}

// validateParallel validates each plugin into its own partial report and
// merges them in manifest order so the result matches a sequential run.
func (v *Validator) validateParallel(m manifest.Manifest) *Report {
	partials := make([]*Report, len(m))

	var g errgroup.Group
	g.SetLimit(v.parallelism)
	for i := range m {
		g.Go(func() error {
			partial := NewReport()
			validatePlugin(partial, &m[i])
			partials[i] = partial
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	report := NewReport()
	for _, partial := range partials {
		report.Merge(partial)
	}
	return report
}

func validatePlugin(r *Report, p *manifest.Plugin) {
	r.add(CategoryGUID, p.Name, "", ValidateGUID(p.GUID))

	for i := range p.Versions {
		pv := &p.Versions[i]
		r.add(CategoryURL, p.Name, pv.Version, ValidateURL(pv.SourceURL))
		r.add(CategoryVersion, p.Name, pv.Version, ValidateVersions(pv.TargetABI, pv.Version))
		r.add(CategoryChecksum, p.Name, pv.Version, ValidateChecksum(pv.Checksum))
		r.add(CategoryTimestamp, p.Name, pv.Version, ValidateTimestamp(pv.Timestamp))
	}
}

func (v *Validator) recordMetrics(m manifest.Manifest, r *Report, duration time.Duration) {
	if v.metrics == nil {
		return
	}

	v.metrics.ValidationDuration.Observe(duration.Seconds())
	v.metrics.PluginsValidatedTotal.Add(float64(len(m)))
	v.metrics.VersionsValidatedTotal.Add(float64(m.VersionCount()))

	for _, c := range Categories() {
		if n := len(r.Failures(c)); n > 0 {
			v.metrics.FailuresTotal.WithLabelValues(c.String()).Add(float64(n))
		}
	}

	result := observability.ResultClean
	if !r.Clean() {
		result = observability.ResultFailed
	}
	v.metrics.RunsTotal.WithLabelValues(result).Inc()
}
