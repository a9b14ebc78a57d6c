package validation

import (
	"github.com/google/uuid"
)

// ValidateGUID checks that value is a UUID in any of its standard textual
// forms: hyphenated, 32 bare hex digits, braced or urn:uuid prefixed.
func ValidateGUID(value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return &GUIDFormatError{Value: value, Err: err}
	}
	return nil
}
