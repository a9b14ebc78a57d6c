package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/platinummonkey/plugin-manifest-tool/pkg/config"
	"github.com/platinummonkey/plugin-manifest-tool/pkg/observability"
)

// Version is the tool version, overridden at build time with
// -ldflags "-X github.com/platinummonkey/plugin-manifest-tool/pkg/cli.Version=..."
var Version = "dev"

// ErrValidationFailed is returned when a manifest was loaded but has field failures
var ErrValidationFailed = errors.New("manifest failed validation")

// Process exit codes
const (
	ExitOK               = 0
	ExitValidationFailed = 1
	ExitError            = 2
)

const tracingShutdownTimeout = 5 * time.Second

// ExitCode maps an error returned by the root command to a process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrValidationFailed):
		return ExitValidationFailed
	default:
		return ExitError
	}
}

// rootOptions holds the persistent flags shared by all subcommands
type rootOptions struct {
	logLevel  string
	logFormat string
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "manifest-tool",
		Short:         "Plugin manifest validation tool",
		Long:          "manifest-tool validates plugin manifests and reports every malformed field in one pass.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (default from MANIFEST_TOOL_LOG_LEVEL)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: text, json (default from MANIFEST_TOOL_LOG_FORMAT)")

	root.AddCommand(newValidateCommand(opts))
	root.AddCommand(newVersionCommand())

	return root
}

// environment is the configured runtime of a single command invocation
type environment struct {
	cfg    *config.Config
	logger *logrus.Logger
	tp     *sdktrace.TracerProvider
}

// setup loads configuration, applies flag overrides and starts logging and
// tracing. The returned environment must be closed.
func (o *rootOptions) setup(cmd *cobra.Command) (*environment, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if o.logLevel != "" {
		cfg.Observability.LogLevel = observability.ParseLogLevel(o.logLevel)
	}
	if o.logFormat != "" {
		cfg.Observability.LogFormat = observability.LogFormat(o.logFormat)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --log-format: %w", err)
		}
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat, cmd.ErrOrStderr())
	cmd.SetContext(observability.WithLogger(cmd.Context(), logger))

	tp, err := observability.InitTracing(cmd.Context(), cfg.OTel(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	return &environment{cfg: cfg, logger: logger, tp: tp}, nil
}

func (e *environment) close() {
	ctx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
	defer cancel()
	_ = observability.ShutdownTracing(ctx, e.tp, e.logger) // logs its own failure
}
