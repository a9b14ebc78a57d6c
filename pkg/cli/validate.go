package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/platinummonkey/plugin-manifest-tool/pkg/manifest"
	"github.com/platinummonkey/plugin-manifest-tool/pkg/observability"
	"github.com/platinummonkey/plugin-manifest-tool/pkg/validation"
)

// Report output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

type validateOptions struct {
	*rootOptions
	format      string
	parallel    int
	watch       bool
	metricsFile string
}

func newValidateCommand(root *rootOptions) *cobra.Command {
	opts := &validateOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "validate <file|url>",
		Short: "Validate a plugin manifest",
		Long: `Validate checks every plugin and version in a manifest and prints one line
per malformed field. The manifest may be a local file, an http(s):// URL or an
s3://bucket/key object, encoded as JSON or YAML.

Exit status is 0 when the manifest is valid, 1 when it has validation
failures and 2 when it cannot be read or decoded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.format, "format", "f", FormatText, "report format: text, json")
	flags.IntVarP(&opts.parallel, "parallel", "p", 0, "plugins validated concurrently (default from MANIFEST_TOOL_PARALLELISM)")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "re-validate the manifest file whenever it changes")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after each run")

	return cmd
}

func (o *validateOptions) run(cmd *cobra.Command, source string) error {
	if o.format != FormatText && o.format != FormatJSON {
		return fmt.Errorf("invalid --format %q (must be text or json)", o.format)
	}
	if cmd.Flags().Changed("parallel") && o.parallel < 1 {
		return fmt.Errorf("--parallel must be at least 1, got %d", o.parallel)
	}
	if o.watch && manifest.SourceKind(source) != manifest.SourceFile {
		return fmt.Errorf("--watch requires a local manifest file, got %s", source)
	}

	env, err := o.setup(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	parallelism := env.cfg.Validation.Parallelism
	if cmd.Flags().Changed("parallel") {
		parallelism = o.parallel
	}

	ctx := cmd.Context()
	logger := observability.FromContext(ctx)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	r := &runner{
		loader: manifest.NewLoader(
			manifest.WithHTTPTimeout(env.cfg.Source.HTTPTimeout),
			manifest.WithS3Config(env.cfg.Source.S3),
			manifest.WithLogger(logger),
		),
		validator: validation.NewValidator(
			validation.WithLogger(logger),
			validation.WithMetrics(metrics),
			validation.WithParallelism(parallelism),
		),
		metrics:     metrics,
		registry:    registry,
		metricsFile: o.metricsFile,
		format:      o.format,
		out:         cmd.OutOrStdout(),
		logger:      logger,
	}

	if o.watch {
		return r.watch(ctx, source)
	}
	return r.run(ctx, source)
}

// runner loads, validates and reports one manifest source
type runner struct {
	loader      *manifest.Loader
	validator   *validation.Validator
	metrics     *observability.Metrics
	registry    *prometheus.Registry
	metricsFile string
	format      string
	out         io.Writer
	logger      logrus.FieldLogger
}

// run performs a single load and validation pass. It returns
// ErrValidationFailed when the report has failures.
func (r *runner) run(ctx context.Context, source string) error {
	defer r.writeMetrics()

	kind := manifest.SourceKind(source)
	start := time.Now()
	m, err := r.loader.Load(ctx, source)
	r.metrics.ManifestLoadDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		errKind := "read"
		if errors.Is(err, manifest.ErrDecodeManifest) {
			errKind = "decode"
		}
		r.metrics.ManifestLoadErrors.WithLabelValues(kind, errKind).Inc()
		r.metrics.RunsTotal.WithLabelValues(observability.ResultError).Inc()
		return fmt.Errorf("failed to load manifest %s: %w", source, err)
	}

	report := r.validator.Validate(ctx, m)
	if err := r.render(report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if !report.Clean() {
		return ErrValidationFailed
	}
	return nil
}

func (r *runner) render(report *validation.Report) error {
	if r.format == FormatJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(r.out, string(data))
		return err
	}
	return report.Render(r.out)
}

func (r *runner) writeMetrics() {
	if r.metricsFile == "" {
		return
	}
	if err := observability.WriteTextfile(r.metricsFile, r.registry); err != nil {
		r.logger.WithError(err).WithField("path", r.metricsFile).Warn("Failed to write metrics file")
	}
}
