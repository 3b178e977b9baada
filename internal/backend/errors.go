package backend

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a 2xx response whose body could not be decoded.
var ErrMalformedResponse = errors.New("malformed response")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API %d", e.StatusCode)
	}
	return fmt.Sprintf("API %d: %s", e.StatusCode, e.Body)
}

// TransportError is a failure to reach the backend at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err came from the network or the HTTP status.
func IsTransport(err error) bool {
	var apiErr *APIError
	var tErr *TransportError
	return errors.As(err, &apiErr) || errors.As(err, &tErr)
}
