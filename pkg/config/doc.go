// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings. Command-line flags override these values.
//
// # Configuration Structure
//
// Validation settings:
//
//	MANIFEST_TOOL_PARALLELISM="1"  # plugins validated concurrently
//
// Source settings:
//
//	MANIFEST_TOOL_HTTP_TIMEOUT="30s"
//	MANIFEST_TOOL_S3_REGION="us-east-1"
//	MANIFEST_TOOL_S3_ENDPOINT="http://localhost:9000"
//	MANIFEST_TOOL_S3_ACCESS_KEY="minio"
//	MANIFEST_TOOL_S3_SECRET_KEY="minio123"
//	MANIFEST_TOOL_S3_USE_PATH_STYLE="true"
//
// Observability settings:
//
//	MANIFEST_TOOL_LOG_LEVEL="warn"  # debug, info, warn, error
//	MANIFEST_TOOL_LOG_FORMAT="text" # text, json
//	MANIFEST_TOOL_OTEL_ENABLED="true"
//	MANIFEST_TOOL_OTEL_ENDPOINT="otel-collector:4317"
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Parallelism: %d\n", cfg.Validation.Parallelism)
//
// # Related Packages
//
//   - pkg/manifest: Uses source configuration
//   - pkg/observability: Uses observability configuration
package config
