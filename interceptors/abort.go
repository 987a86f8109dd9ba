package interceptors

import (
	"errors"

	"github.com/quorate/mediate-go/contracts"
)

// Abort returns the error an interceptor uses to stop the chain before the
// terminal handler runs.
func Abort(interceptorName, reason string) error {
	return &contracts.MiddlewareAbortedError{Interceptor: interceptorName, Reason: reason}
}

// AbortWith is Abort carrying an underlying cause.
func AbortWith(interceptorName, reason string, cause error) error {
	return &contracts.MiddlewareAbortedError{Interceptor: interceptorName, Reason: reason, Err: cause}
}

// IsAborted reports whether an error came from a deliberate chain abort.
func IsAborted(err error) bool {
	return errors.Is(err, contracts.ErrMiddlewareAborted)
}
