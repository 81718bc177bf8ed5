package resilience

import (
	"errors"
	"net"
	"net/http"
	"syscall"

	"github.com/rotisserie/eris"
)

// TransientError marks a failure that may succeed on retry.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// NewTransientError wraps err as retryable. statusCode is 0 for
// network-level failures.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// CheckStatus converts an HTTP status into an error: nil for 2xx, a
// TransientError for 408, 429 and 5xx, a plain error otherwise.
func CheckStatus(service string, code int) error {
	if code >= 200 && code < 300 {
		return nil
	}
	err := eris.Errorf("%s: unexpected status %d", service, code)
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500 {
		return NewTransientError(err, code)
	}
	return err
}

// IsTransient reports whether err is a TransientError, a network timeout or
// a refused/reset connection.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED)
}
