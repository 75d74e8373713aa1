package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork wraps transport failures: the request never produced a response.
	ErrNetwork = errors.New("network failure")
	// ErrDecode wraps a 2xx response whose body is not the expected JSON.
	ErrDecode = errors.New("malformed response")
)

// HTTPError is returned for any non-2xx response. The status code value is
// informational only; callers treat every HTTPError the same way.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	StatusText string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.StatusText)
}

// IsHTTPError reports whether err carries a non-2xx response.
func IsHTTPError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}
