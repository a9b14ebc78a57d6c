// Package manifest defines the plugin repository manifest and loads it from disk or remote storage.
//
// # Overview
//
// A manifest is a JSON (or YAML) array of plugins, each carrying one or more released
// versions. This package only decodes documents; field formats are checked by pkg/validation.
//
// # Sources
//
//	manifest.json                          local file
//	https://repo.example.com/manifest.json HTTP(S) download
//	s3://plugin-repo/stable/manifest.json  S3 or S3-compatible object storage
//
// # Usage Example
//
//	loader := manifest.NewLoader(manifest.WithHTTPTimeout(10 * time.Second))
//	m, err := loader.Load(ctx, "manifest.json")
//	if errors.Is(err, manifest.ErrDecodeManifest) {
//		log.Fatalf("manifest is not valid JSON: %v", err)
//	}
package manifest
