package validation

import (
	"errors"
	"net/url"
	"strings"
)

var (
	errRelativeURL = errors.New("relative URL without a base")
	errEmptyHost   = errors.New("empty host")
)

// networkSchemes must carry an authority with a host
var networkSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ftp":   true,
	"ws":    true,
	"wss":   true,
}

// ValidateURL checks that value is an absolute URL. Network schemes also
// need a non-empty host.
func ValidateURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return &URLFormatError{Value: value, Err: err}
	}

	if u.Scheme == "" {
		return &URLFormatError{Value: value, Err: errRelativeURL}
	}

	if networkSchemes[strings.ToLower(u.Scheme)] && u.Hostname() == "" {
		return &URLFormatError{Value: value, Err: errEmptyHost}
	}

	return nil
}
