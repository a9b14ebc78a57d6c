package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/plugin-manifest-tool/pkg/manifest"
	"github.com/platinummonkey/plugin-manifest-tool/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Validation configuration
	Validation ValidationConfig

	// Manifest source configuration
	Source SourceConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ValidationConfig holds validation engine settings
type ValidationConfig struct {
	// Parallelism is the number of plugins validated concurrently (1 = sequential)
	Parallelism int
}

// SourceConfig holds settings for fetching remote manifests
type SourceConfig struct {
	HTTPTimeout time.Duration
	S3          manifest.S3Config
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel  observability.LogLevel
	LogFormat observability.LogFormat

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Validation:    loadValidationConfig(),
		Source:        loadSourceConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadValidationConfig loads validation configuration from environment
func loadValidationConfig() ValidationConfig {
	return ValidationConfig{
		Parallelism: getEnvInt("MANIFEST_TOOL_PARALLELISM", 1),
	}
}

// loadSourceConfig loads manifest source configuration from environment
func loadSourceConfig() SourceConfig {
	return SourceConfig{
		HTTPTimeout: getEnvDuration("MANIFEST_TOOL_HTTP_TIMEOUT", 30*time.Second),
		S3: manifest.S3Config{
			Region:       getEnv("MANIFEST_TOOL_S3_REGION", "us-east-1"),
			Endpoint:     getEnv("MANIFEST_TOOL_S3_ENDPOINT", ""),
			AccessKey:    getEnv("MANIFEST_TOOL_S3_ACCESS_KEY", ""),
			SecretKey:    getEnv("MANIFEST_TOOL_S3_SECRET_KEY", ""),
			UsePathStyle: getEnvBool("MANIFEST_TOOL_S3_USE_PATH_STYLE", false),
		},
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           observability.ParseLogLevel(getEnv("MANIFEST_TOOL_LOG_LEVEL", "warn")),
		LogFormat:          observability.LogFormat(strings.ToLower(getEnv("MANIFEST_TOOL_LOG_FORMAT", "text"))),
		OTelEnabled:        getEnvBool("MANIFEST_TOOL_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("MANIFEST_TOOL_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("MANIFEST_TOOL_OTEL_SERVICE_NAME", "manifest-tool"),
		OTelServiceVersion: getEnv("MANIFEST_TOOL_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("MANIFEST_TOOL_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Validation.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Validation.Parallelism)
	}

	if c.Source.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP timeout must be positive")
	}

	switch c.Observability.LogFormat {
	case observability.TextFormat, observability.JSONFormat:
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Observability.LogFormat)
	}

	if (c.Source.S3.AccessKey == "") != (c.Source.S3.SecretKey == "") {
		return fmt.Errorf("S3 access key and secret key must be set together")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// OTel returns the tracing settings in the form observability expects
func (c *Config) OTel() observability.OTelConfig {
	return observability.OTelConfig{
		Enabled:        c.Observability.OTelEnabled,
		Endpoint:       c.Observability.OTelEndpoint,
		ServiceName:    c.Observability.OTelServiceName,
		ServiceVersion: c.Observability.OTelServiceVersion,
		Insecure:       c.Observability.OTelInsecure,
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
