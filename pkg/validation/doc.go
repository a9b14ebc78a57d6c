// Package validation checks the fields of a plugin manifest and collects
// every violation into a single report.
//
// # Overview
//
// Five independent field validators cover the formatted fields of a
// manifest. Each takes the raw string and returns nil or a typed error:
//
//   - ValidateGUID: UUID in any standard textual form (GUIDFormatError)
//   - ValidateURL: absolute URL, network schemes need a host (URLFormatError)
//   - ValidateVersions: 3-part target ABI and 4-part release version, checked
//     separately (VersionFormatError)
//   - ValidateChecksum: 32 hex characters, length and characters flagged
//     separately (ChecksumFormatError)
//   - ValidateTimestamp: lenient RFC 3339 (TimestampFormatError)
//
// The Validator runs the GUID check once per plugin and the other four once
// per version. Nothing short-circuits: a run always visits every plugin and
// version.
//
// # Report
//
// A Report keeps one ordered failure list per Category. Text rendering
// prints categories in a fixed order (guid, url, version, checksum,
// timestamp), failures in manifest order within each category, and the
// SuccessMessage when nothing failed.
//
// # Usage Example
//
//	m, err := manifest.LoadManifest("manifest.json")
//	if err != nil {
//		return err
//	}
//
//	report := validation.NewValidator(
//		validation.WithParallelism(4),
//	).Validate(ctx, m)
//	fmt.Println(report)
//
// # Related Packages
//
//   - pkg/manifest: Loads the manifest being validated
//   - pkg/observability: Metrics recorded per run
package validation
