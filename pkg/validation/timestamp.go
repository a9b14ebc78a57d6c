package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const localTimestampLayout = "2006-01-02T15:04:05"

// layoutElements names the parts of the layouts used by ParseTimestamp
var layoutElements = map[string]string{
	"2006":   "year",
	"01":     "month",
	"02":     "day",
	"15":     "hour",
	"04":     "minute",
	"05":     "second",
	"Z07:00": "time zone",
	"T":      "date/time separator",
	"-":      "date separator",
	":":      "time separator",
}

// ParseTimestamp parses value as a lenient RFC 3339 timestamp. The date/time
// separator may be 'T', 't' or a space, fractional seconds are optional and
// a missing zone means UTC.
func ParseTimestamp(value string) (time.Time, error) {
	s := normalizeTimestamp(value)

	var (
		t   time.Time
		err error
	)
	if hasZone(s) {
		t, err = time.Parse(time.RFC3339, s)
	} else {
		t, err = time.ParseInLocation(localTimestampLayout, s, time.UTC)
	}
	if err != nil {
		return time.Time{}, &TimestampFormatError{
			Value:  value,
			Reason: timestampReason(err),
			Err:    err,
		}
	}
	return t, nil
}

// ValidateTimestamp checks that value is a lenient RFC 3339 timestamp
func ValidateTimestamp(value string) error {
	_, err := ParseTimestamp(value)
	return err
}

func normalizeTimestamp(value string) string {
	if len(value) <= 10 {
		return value
	}
	b := []byte(value)
	if b[10] == ' ' || b[10] == 't' {
		b[10] = 'T'
	}
	if last := len(b) - 1; b[last] == 'z' {
		b[last] = 'Z'
	}
	return string(b)
}

// hasZone reports whether anything follows the seconds and an optional
// fractional part.
func hasZone(s string) bool {
	const secondsEnd = len(localTimestampLayout)
	if len(s) <= secondsEnd {
		return false
	}
	i := secondsEnd
	if s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	}
	return i < len(s)
}

func timestampReason(err error) string {
	var pe *time.ParseError
	if !errors.As(err, &pe) {
		return err.Error()
	}
	if pe.Message != "" {
		return strings.TrimPrefix(pe.Message, ": ")
	}
	if pe.ValueElem == "" {
		if name, ok := layoutElements[pe.LayoutElem]; ok {
			return "missing " + name
		}
		return "input is too short"
	}
	if pe.LayoutElem == "" {
		return fmt.Sprintf("unexpected trailing text %q", pe.ValueElem)
	}
	if name, ok := layoutElements[pe.LayoutElem]; ok {
		return fmt.Sprintf("cannot parse %q as %s", pe.ValueElem, name)
	}
	return fmt.Sprintf("cannot parse %q as %q", pe.ValueElem, pe.LayoutElem)
}
