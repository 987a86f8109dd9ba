package interceptors

import (
	"context"
	"errors"
	"log/slog"

	"github.com/quorate/mediate-go/contracts"
	"github.com/quorate/mediate-go/internal/reliability"
)

// RetryInterceptor retries failed handler invocations according to a policy.
// Cancellation, deliberate chain aborts, and handler-resolution failures are
// never retried: retrying cannot change their outcome.
type RetryInterceptor struct {
	retryPolicy reliability.RetryPolicy
	logger      *slog.Logger
}

// NewRetryInterceptor creates a new retry interceptor
func NewRetryInterceptor(retryPolicy reliability.RetryPolicy) *RetryInterceptor {
	return &RetryInterceptor{
		retryPolicy: retryPolicy,
		logger:      slog.Default(),
	}
}

// WithLogger sets the logger for the retry interceptor
func (r *RetryInterceptor) WithLogger(logger *slog.Logger) *RetryInterceptor {
	r.logger = logger
	return r
}

// Intercept implements Interceptor
func (r *RetryInterceptor) Intercept(ctx context.Context, msg contracts.Message, next Handler) (interface{}, error) {
	var result interface{}

	err := reliability.Retry(ctx, r.retryPolicy, func() error {
		var attemptErr error
		result, attemptErr = next.Handle(ctx, msg)
		if attemptErr != nil && !retryableDispatchError(attemptErr) {
			return reliability.RetryableError{Err: attemptErr, Retryable: false}
		}
		return attemptErr
	})
	if err != nil {
		var re reliability.RetryableError
		if errors.As(err, &re) {
			return nil, re.Err
		}
		return nil, err
	}

	return result, nil
}

// Name implements Interceptor
func (r *RetryInterceptor) Name() string {
	return "RetryInterceptor"
}

func retryableDispatchError(err error) bool {
	if contracts.IsCancellation(err) || IsAborted(err) {
		return false
	}
	if errors.Is(err, contracts.ErrHandlerNotFound) || errors.Is(err, contracts.ErrAmbiguousHandler) {
		return false
	}
	return true
}
