// Package cli provides the manifest-tool command-line interface.
//
// # Overview
//
// This package implements the `manifest-tool` commands used to check plugin
// manifests locally, in CI, or continuously while a manifest is being edited.
//
// # Commands
//
// validate: Validate a manifest and print every failure
//
//	manifest-tool validate manifest.json
//	manifest-tool validate https://plugins.example.com/manifest.json
//	manifest-tool validate s3://plugin-repo/manifest.yaml
//
// Machine-readable report:
//
//	manifest-tool validate manifest.json --format json
//
// Large manifests:
//
//	manifest-tool validate manifest.json --parallel 8
//
// Re-validate on every save, exporting metrics for node_exporter:
//
//	manifest-tool validate manifest.json \
//		--watch \
//		--metrics-file /var/lib/node_exporter/manifest.prom
//
// version: Print the tool version
//
//	manifest-tool version
//
// # Exit Codes
//
//   - 0: manifest is valid
//   - 1: manifest has validation failures
//   - 2: manifest could not be read or decoded, or invalid usage
//
// # Configuration
//
// Defaults come from MANIFEST_TOOL_* environment variables (see pkg/config).
// Flags override them. Logs go to stderr; the report goes to stdout.
//
// # Related Packages
//
//   - pkg/manifest: Manifest loading
//   - pkg/validation: Field validators and report
//   - pkg/config: Environment configuration
package cli
