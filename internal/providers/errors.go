package providers

import (
	"errors"
	"fmt"
)

var ErrUnsupportedProvider = errors.New("unsupported provider")

// UnsupportedProviderError is returned before any I/O when the identifier is
// outside the closed set of kinds.
type UnsupportedProviderError struct {
	ID string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("Unsupported provider: %s", e.ID)
}

func (e *UnsupportedProviderError) Is(target error) bool {
	return target == ErrUnsupportedProvider
}

// APIError carries the raw body of a non-2xx response. Status codes are not
// classified.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return "API Error: " + e.Body
}

type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Outcome names the terminal state of one exchange for logs and metrics.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	var (
		apiErr       *APIError
		transportErr *TransportError
		parseErr     *ParseError
	)
	switch {
	case errors.Is(err, ErrUnsupportedProvider):
		return "unsupported_provider"
	case errors.As(err, &apiErr):
		return "api_error"
	case errors.As(err, &transportErr):
		return "transport_error"
	case errors.As(err, &parseErr):
		return "parse_error"
	default:
		return "error"
	}
}
