package registry

import (
	"errors"
	"fmt"
)

// ErrUnknownRegistry is returned when a caller names a registry that has no
// adapter. It is a programming or usage error, not a network condition.
var ErrUnknownRegistry = errors.New("unknown registry")

// TransportError covers connection failures and non-2xx responses
type TransportError struct {
	URL string
	// Status is the HTTP status code, zero when no response was received
	Status  int
	Wrapped error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Wrapped)
}

func (e *TransportError) Unwrap() error { return e.Wrapped }

// DecodeError reports a body that is not the JSON the caller expected
type DecodeError struct {
	URL     string
	Wrapped error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.URL, e.Wrapped)
}

func (e *DecodeError) Unwrap() error { return e.Wrapped }
