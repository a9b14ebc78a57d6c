package validation

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// VersionKind tags a dotted numeric version with its required arity
type VersionKind int

const (
	// KindABI is a target ABI version: major.minor.patch
	KindABI VersionKind = iota
	// KindRelease is a plugin release version: major.minor.patch.build
	KindRelease
)

// Arity returns the number of dot-separated parts the kind requires
func (k VersionKind) Arity() int {
	if k == KindRelease {
		return 4
	}
	return 3
}

func (k VersionKind) String() string {
	if k == KindRelease {
		return "version"
	}
	return "target ABI"
}

// DottedVersion is a parsed numeric version of a fixed arity
type DottedVersion struct {
	Kind     VersionKind
	Segments []uint
}

// ParseDottedVersion parses value as a version of the given kind. The part
// count must match the kind exactly; nothing is padded or truncated.
func ParseDottedVersion(kind VersionKind, value string) (DottedVersion, error) {
	parts := strings.Split(value, ".")
	if len(parts) != kind.Arity() {
		return DottedVersion{}, &VersionParseError{
			Kind:   kind,
			Value:  value,
			Reason: ReasonSegmentCount,
			Got:    len(parts),
		}
	}

	segments := make([]uint, len(parts))
	for i, part := range parts {
		if !isDigits(part) {
			return DottedVersion{}, &VersionParseError{
				Kind:    kind,
				Value:   value,
				Reason:  ReasonNotNumeric,
				Segment: part,
			}
		}
		n, err := strconv.ParseUint(part, 10, strconv.IntSize)
		if err != nil {
			return DottedVersion{}, &VersionParseError{
				Kind:    kind,
				Value:   value,
				Reason:  ReasonOverflow,
				Segment: part,
			}
		}
		segments[i] = uint(n)
	}

	return DottedVersion{Kind: kind, Segments: segments}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (v DottedVersion) String() string {
	parts := make([]string, len(v.Segments))
	for i, s := range v.Segments {
		parts[i] = strconv.FormatUint(uint64(s), 10)
	}
	return strings.Join(parts, ".")
}

// Compare orders two versions part by part. Versions of different kinds
// compare by arity first.
func (v DottedVersion) Compare(other DottedVersion) int {
	if c := cmp.Compare(len(v.Segments), len(other.Segments)); c != 0 {
		return c
	}
	return slices.Compare(v.Segments, other.Segments)
}

// ValidateVersions checks the target ABI and release version of one plugin
// version independently and reports both failures together.
func ValidateVersions(targetABI, release string) error {
	var verr VersionFormatError
	if _, err := ParseDottedVersion(KindABI, targetABI); err != nil {
		verr.ABI = err.(*VersionParseError)
	}
	if _, err := ParseDottedVersion(KindRelease, release); err != nil {
		verr.Release = err.(*VersionParseError)
	}
	if verr.ABI == nil && verr.Release == nil {
		return nil
	}
	return &verr
}
