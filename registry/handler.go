package registry

import (
	"context"

	"github.com/quorate/mediate-go/contracts"
)

// RequestHandler fulfills a command or query. Handlers that produce no result
// return nil for the value.
type RequestHandler interface {
	Handle(ctx context.Context, req contracts.Message) (interface{}, error)
}

// RequestHandlerFunc is a function adapter for RequestHandler
type RequestHandlerFunc func(ctx context.Context, req contracts.Message) (interface{}, error)

// Handle implements RequestHandler
func (f RequestHandlerFunc) Handle(ctx context.Context, req contracts.Message) (interface{}, error) {
	return f(ctx, req)
}

// StreamItem is one element of a streamed result sequence. A non-nil Err
// terminates the sequence from the consumer's point of view.
type StreamItem struct {
	Value interface{}
	Err   error
}

// StreamHandler fulfills a streaming request by lazily producing a sequence.
// The handler owns the returned channel and must close it when the sequence
// ends or the context is cancelled.
type StreamHandler interface {
	HandleStream(ctx context.Context, req contracts.Message) (<-chan StreamItem, error)
}

// StreamHandlerFunc is a function adapter for StreamHandler
type StreamHandlerFunc func(ctx context.Context, req contracts.Message) (<-chan StreamItem, error)

// HandleStream implements StreamHandler
func (f StreamHandlerFunc) HandleStream(ctx context.Context, req contracts.Message) (<-chan StreamItem, error) {
	return f(ctx, req)
}

// NotificationListener reacts to a published notification. Many listeners may
// exist for one notification type; each is invoked independently.
type NotificationListener interface {
	Handle(ctx context.Context, notification contracts.Message) error
}

// NotificationListenerFunc is a function adapter for NotificationListener
type NotificationListenerFunc func(ctx context.Context, notification contracts.Message) error

// Handle implements NotificationListener
func (f NotificationListenerFunc) Handle(ctx context.Context, notification contracts.Message) error {
	return f(ctx, notification)
}
