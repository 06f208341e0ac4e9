package httpclient

import (
	"errors"
	"fmt"
)

// ErrHostNotAllowed is returned before any request is made to a URL the
// allow-list rejects, and when a redirect leads to one.
var ErrHostNotAllowed = errors.New("host not allowed")

// HTTPError is returned for non-2xx responses
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Message)
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(statusCode int, url, message string) error {
	return &HTTPError{
		StatusCode: statusCode,
		URL:        url,
		Message:    message,
	}
}

// IsStatus reports whether err is an HTTPError with the given status code
func IsStatus(err error, statusCode int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == statusCode
}
