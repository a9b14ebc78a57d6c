// Package observability provides logrus logging, Prometheus metrics, and OpenTelemetry tracing.
//
// # Overview
//
// This package centralizes the ambient infrastructure shared by the loader, the validation
// engine and the CLI. Logs go to stderr so that reports written to stdout stay machine
// readable.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, observability.TextFormat, os.Stderr)
//	logger.WithField("source", path).Info("Validating manifest")
//
// Carry it through a context:
//
//	ctx = observability.WithLogger(ctx, logger)
//	observability.FromContext(ctx).Debug("Loaded manifest")
//
// # Prometheus Metrics
//
// Initialize metrics:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.FailuresTotal.WithLabelValues("checksum").Inc()
//
// CI jobs can hand the result to node_exporter:
//
//	observability.WriteTextfile("/var/lib/node_exporter/manifest.prom", registry)
//
// # OpenTelemetry
//
// Initialize tracing:
//
//	tp, err := observability.InitTracing(ctx, observability.OTelConfig{
//		Enabled:     true,
//		Endpoint:    "otel-collector:4317",
//		ServiceName: "manifest-tool",
//	}, logger)
//	defer observability.ShutdownTracing(ctx, tp, logger)
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/validation: Emits validation metrics and spans
package observability
