package contracts

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the dispatch taxonomy. Callers match them with
// errors.Is; the typed errors below carry the details.
var (
	// ErrHandlerNotFound indicates a request type has no registered handler.
	ErrHandlerNotFound = errors.New("no handler registered for request type")

	// ErrAmbiguousHandler indicates a request type has more than one registered handler.
	ErrAmbiguousHandler = errors.New("multiple handlers registered for request type")

	// ErrMiddlewareAborted indicates an interceptor deliberately stopped the
	// chain before the handler ran.
	ErrMiddlewareAborted = errors.New("interceptor aborted the pipeline")

	// ErrHandlerFailed indicates the terminal handler returned an error or panicked.
	ErrHandlerFailed = errors.New("handler failed")

	// ErrListenerFailed indicates one or more notification listeners failed.
	ErrListenerFailed = errors.New("one or more listeners failed")
)

// HandlerNotFoundError reports a dispatch against a request type with zero handlers.
type HandlerNotFoundError struct {
	MessageType string
}

// Error implements the error interface
func (e *HandlerNotFoundError) Error() string {
	return fmt.Sprintf("no handler registered for request type %s", e.MessageType)
}

// Is reports whether the error matches ErrHandlerNotFound
func (e *HandlerNotFoundError) Is(target error) bool {
	return target == ErrHandlerNotFound
}

// AmbiguousHandlerError reports a dispatch against a request type with more
// than one handler.
type AmbiguousHandlerError struct {
	MessageType string
	Count       int
}

// Error implements the error interface
func (e *AmbiguousHandlerError) Error() string {
	return fmt.Sprintf("%d handlers registered for request type %s, expected exactly one", e.Count, e.MessageType)
}

// Is reports whether the error matches ErrAmbiguousHandler
func (e *AmbiguousHandlerError) Is(target error) bool {
	return target == ErrAmbiguousHandler
}

// MiddlewareAbortedError is returned when an interceptor short-circuits the
// chain, for example on a failed validation.
type MiddlewareAbortedError struct {
	Interceptor string
	Reason      string
	Err         error
}

// Error implements the error interface
func (e *MiddlewareAbortedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("interceptor %s aborted the pipeline: %s", e.Interceptor, e.Reason)
	}
	return fmt.Sprintf("interceptor %s aborted the pipeline", e.Interceptor)
}

// Unwrap returns the underlying cause, if any
func (e *MiddlewareAbortedError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches ErrMiddlewareAborted
func (e *MiddlewareAbortedError) Is(target error) bool {
	return target == ErrMiddlewareAborted
}

// HandlerFailedError wraps an error raised by the terminal handler of a request.
type HandlerFailedError struct {
	MessageType string
	Err         error
}

// Error implements the error interface
func (e *HandlerFailedError) Error() string {
	return fmt.Sprintf("handler for %s failed: %v", e.MessageType, e.Err)
}

// Unwrap returns the handler's error
func (e *HandlerFailedError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches ErrHandlerFailed
func (e *HandlerFailedError) Is(target error) bool {
	return target == ErrHandlerFailed
}

// ListenerFailure records a single failed listener during a publish.
type ListenerFailure struct {
	Listener string
	Err      error
}

// ListenerFailedError aggregates every listener failure from one publish call.
// It is raised once, after every listener has had a chance to run.
type ListenerFailedError struct {
	MessageType string
	Failures    []ListenerFailure
}

// Error implements the error interface
func (e *ListenerFailedError) Error() string {
	names := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		names = append(names, f.Listener)
	}
	return fmt.Sprintf("%d of the listeners for %s failed: %s", len(e.Failures), e.MessageType, strings.Join(names, ", "))
}

// Unwrap returns the underlying listener errors
func (e *ListenerFailedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Is reports whether the error matches ErrListenerFailed
func (e *ListenerFailedError) Is(target error) bool {
	return target == ErrListenerFailed
}

// IsCancellation reports whether err represents deliberate cancellation or a
// deadline rather than a failure. Cancellation propagates through the
// pipeline unwrapped so callers can tell it apart from errors.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
