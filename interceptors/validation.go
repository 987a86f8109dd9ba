package interceptors

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/quorate/mediate-go/contracts"
)

// ValidationInterceptor validates messages before processing using
// go-playground struct tags. A failed validation aborts the chain; the
// terminal handler never runs.
type ValidationInterceptor struct {
	validate *validator.Validate
}

// NewValidationInterceptor creates a new validation interceptor. Passing nil
// uses a validator with required-struct checking enabled.
func NewValidationInterceptor(validate *validator.Validate) *ValidationInterceptor {
	if validate == nil {
		validate = validator.New(validator.WithRequiredStructEnabled())
	}

	return &ValidationInterceptor{validate: validate}
}

// Intercept implements Interceptor
func (i *ValidationInterceptor) Intercept(ctx context.Context, msg contracts.Message, next Handler) (interface{}, error) {
	if err := i.validate.StructCtx(ctx, msg); err != nil {
		return nil, AbortWith(i.Name(), "message validation failed", err)
	}

	return next.Handle(ctx, msg)
}

// Name implements Interceptor
func (i *ValidationInterceptor) Name() string {
	return "ValidationInterceptor"
}
