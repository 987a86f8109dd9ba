package interceptors

import (
	"context"

	"github.com/quorate/mediate-go/contracts"
)

// Handler represents the next link of an interceptor chain: either the next
// interceptor or the terminal handler invocation. For notification pipelines
// the result value is always nil.
type Handler interface {
	Handle(ctx context.Context, msg contracts.Message) (interface{}, error)
}

// HandlerFunc is a function adapter for Handler
type HandlerFunc func(ctx context.Context, msg contracts.Message) (interface{}, error)

// Handle implements Handler
func (f HandlerFunc) Handle(ctx context.Context, msg contracts.Message) (interface{}, error) {
	return f(ctx, msg)
}

// Interceptor processes messages before they reach the terminal handler. An
// interceptor decides whether and when to call next, so it may short-circuit
// the chain, transform the result, or observe timing around the whole call.
type Interceptor interface {
	// Intercept processes a message and calls the next link in the chain
	Intercept(ctx context.Context, msg contracts.Message, next Handler) (interface{}, error)

	// Name returns the interceptor name for logging and inspection
	Name() string
}

// InterceptorFunc is a function-based interceptor
type InterceptorFunc struct {
	name string
	fn   func(ctx context.Context, msg contracts.Message, next Handler) (interface{}, error)
}

// NewInterceptorFunc creates a new function-based interceptor
func NewInterceptorFunc(name string, fn func(ctx context.Context, msg contracts.Message, next Handler) (interface{}, error)) *InterceptorFunc {
	return &InterceptorFunc{name: name, fn: fn}
}

// Intercept implements Interceptor
func (i *InterceptorFunc) Intercept(ctx context.Context, msg contracts.Message, next Handler) (interface{}, error) {
	return i.fn(ctx, msg, next)
}

// Name implements Interceptor
func (i *InterceptorFunc) Name() string {
	return i.name
}

// Chain wraps terminal with the given interceptors, outermost first. The
// chain is built in reverse so that interceptors[0] runs first.
func Chain(interceptors []Interceptor, terminal Handler) Handler {
	handler := terminal
	for i := len(interceptors) - 1; i >= 0; i-- {
		interceptor := interceptors[i]
		currentHandler := handler
		handler = HandlerFunc(func(ctx context.Context, msg contracts.Message) (interface{}, error) {
			return interceptor.Intercept(ctx, msg, currentHandler)
		})
	}
	return handler
}
