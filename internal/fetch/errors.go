package fetch

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrSourceUnavailable means every attempt failed.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrInvalidRequest means the request could not be built. It is never retried.
	ErrInvalidRequest = errors.New("invalid request")
)

// StatusError is a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned HTTP %d: %s", e.StatusCode, e.Body)
}

// StatusCode extracts the upstream status from err, if any.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}

// Truncate cuts s to at most n bytes for logging without splitting a rune.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
