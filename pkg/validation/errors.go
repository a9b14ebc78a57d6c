package validation

import (
	"fmt"
	"strings"
)

// GUIDFormatError is reported when a plugin GUID is not a valid UUID
type GUIDFormatError struct {
	Value string
	Err   error
}

func (e *GUIDFormatError) Error() string {
	return fmt.Sprintf("invalid GUID %q: %v", e.Value, e.Err)
}

func (e *GUIDFormatError) Unwrap() error {
	return e.Err
}

// URLFormatError is reported when a source URL is not an absolute URL
type URLFormatError struct {
	Value string
	Err   error
}

func (e *URLFormatError) Error() string {
	return fmt.Sprintf("invalid source URL %q: %v", e.Value, e.Err)
}

func (e *URLFormatError) Unwrap() error {
	return e.Err
}

// VersionReason identifies why a dotted version failed to parse
type VersionReason int

const (
	// ReasonSegmentCount means the value had the wrong number of parts
	ReasonSegmentCount VersionReason = iota
	// ReasonNotNumeric means a part contained something other than ASCII digits
	ReasonNotNumeric
	// ReasonOverflow means a part does not fit a machine word
	ReasonOverflow
)

// VersionParseError describes a single dotted version that failed to parse
type VersionParseError struct {
	Kind    VersionKind
	Value   string
	Reason  VersionReason
	Segment string // offending part, for ReasonNotNumeric and ReasonOverflow
	Got     int    // part count, for ReasonSegmentCount
}

func (e *VersionParseError) Error() string {
	var reason string
	switch e.Reason {
	case ReasonSegmentCount:
		reason = fmt.Sprintf("expected %d parts but got %d", e.Kind.Arity(), e.Got)
	case ReasonNotNumeric:
		reason = fmt.Sprintf("part %q is not numeric", e.Segment)
	case ReasonOverflow:
		reason = fmt.Sprintf("part %q is out of range", e.Segment)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.Value, reason)
}

// VersionFormatError groups the target ABI and release version failures of
// one plugin version. Either or both of ABI and Release is set.
type VersionFormatError struct {
	ABI     *VersionParseError
	Release *VersionParseError
}

func (e *VersionFormatError) Error() string {
	parts := make([]string, 0, 2)
	for _, err := range e.Unwrap() {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}

func (e *VersionFormatError) Unwrap() []error {
	var errs []error
	if e.ABI != nil {
		errs = append(errs, e.ABI)
	}
	if e.Release != nil {
		errs = append(errs, e.Release)
	}
	return errs
}

// ChecksumFormatError reports a wrong length and non-hex characters
// independently. At least one of WrongLength or InvalidChars is set.
type ChecksumFormatError struct {
	Value        string
	Length       int
	WrongLength  bool
	InvalidChars []rune
}

func (e *ChecksumFormatError) Error() string {
	var reasons []string
	if e.WrongLength {
		reasons = append(reasons, fmt.Sprintf("expected %d characters but got %d", ChecksumLength, e.Length))
	}
	if len(e.InvalidChars) > 0 {
		reasons = append(reasons, fmt.Sprintf("contains non-hex characters %q", string(e.InvalidChars)))
	}
	return fmt.Sprintf("invalid checksum %q: %s", e.Value, strings.Join(reasons, "; "))
}

// TimestampFormatError is reported when a timestamp is not lenient RFC 3339
type TimestampFormatError struct {
	Value  string
	Reason string
	Err    error
}

func (e *TimestampFormatError) Error() string {
	return fmt.Sprintf("invalid timestamp %q: %s", e.Value, e.Reason)
}

func (e *TimestampFormatError) Unwrap() error {
	return e.Err
}
