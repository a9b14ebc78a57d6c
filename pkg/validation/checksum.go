package validation

import (
	"slices"
	"unicode/utf8"
)

// ChecksumLength is the required checksum length in characters (an MD5 hex digest)
const ChecksumLength = 32

// ValidateChecksum checks the checksum length and that every character is an
// ASCII hex digit. Both checks always run.
func ValidateChecksum(value string) error {
	length := utf8.RuneCountInString(value)

	var invalid []rune
	for _, r := range value {
		if !isHexDigit(r) && !slices.Contains(invalid, r) {
			invalid = append(invalid, r)
		}
	}

	if length == ChecksumLength && len(invalid) == 0 {
		return nil
	}
	return &ChecksumFormatError{
		Value:        value,
		Length:       length,
		WrongLength:  length != ChecksumLength,
		InvalidChars: invalid,
	}
}

func isHexDigit(r rune) bool {
	return ('0' <= r && r <= '9') || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}
