package dispatch

import (
	"context"
	"fmt"

	"github.com/quorate/mediate-go/contracts"
	"github.com/quorate/mediate-go/registry"
)

// Send dispatches a request and asserts the result to TRes. It is a typed
// convenience over Sender.Send for callers that know the handler's result
// type.
func Send[TRes any](ctx context.Context, s *Sender, req contracts.Message) (TRes, error) {
	var zero TRes

	result, err := s.Send(ctx, req)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}

	typed, ok := result.(TRes)
	if !ok {
		return zero, fmt.Errorf("handler for %s returned %T, expected %T", req.GetType(), result, zero)
	}
	return typed, nil
}

// SendStream dispatches a streaming request and asserts each produced value
// to TItem. Items whose value has the wrong type surface as an item error.
func SendStream[TItem any](ctx context.Context, s *Sender, req contracts.Message) (<-chan TypedItem[TItem], error) {
	stream, err := s.SendStream(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make(chan TypedItem[TItem])
	go func() {
		defer close(out)
		for item := range stream {
			select {
			case out <- typedItem[TItem](req, item):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// TypedItem is one element of a typed stream.
type TypedItem[T any] struct {
	Value T
	Err   error
}

func typedItem[T any](req contracts.Message, item registry.StreamItem) TypedItem[T] {
	if item.Err != nil {
		return TypedItem[T]{Err: item.Err}
	}
	typed, ok := item.Value.(T)
	if !ok {
		var zero T
		return TypedItem[T]{Err: fmt.Errorf("stream for %s produced %T, expected %T", req.GetType(), item.Value, zero)}
	}
	return TypedItem[T]{Value: typed}
}

// RegisterHandlerFunc registers a typed handler function for the request type
// of the TReq zero value's pointer. TReq must embed one of the contracts base
// structs.
func RegisterHandlerFunc[TReq any, TRes any](reg *registry.TypeRegistry, fn func(ctx context.Context, req *TReq) (TRes, error)) error {
	proto, err := prototype[TReq]()
	if err != nil {
		return err
	}

	handler := registry.RequestHandlerFunc(func(ctx context.Context, msg contracts.Message) (interface{}, error) {
		typed, ok := any(msg).(*TReq)
		if !ok {
			return nil, fmt.Errorf("handler received %T, expected %T", msg, proto)
		}
		return fn(ctx, typed)
	})
	return reg.RegisterHandler(proto, handler, registry.ResultValue)
}

// RegisterListenerFunc registers a typed listener function for the
// notification type of the TNote zero value's pointer.
func RegisterListenerFunc[TNote any](reg *registry.TypeRegistry, fn func(ctx context.Context, notification *TNote) error) error {
	proto, err := prototype[TNote]()
	if err != nil {
		return err
	}

	listener := registry.NotificationListenerFunc(func(ctx context.Context, msg contracts.Message) error {
		typed, ok := any(msg).(*TNote)
		if !ok {
			return fmt.Errorf("listener received %T, expected %T", msg, proto)
		}
		return fn(ctx, typed)
	})
	return reg.RegisterListener(proto, listener)
}

func prototype[T any]() (contracts.Message, error) {
	var zero T
	proto, ok := any(&zero).(contracts.Message)
	if !ok {
		return nil, fmt.Errorf("%T does not implement contracts.Message", &zero)
	}
	return proto, nil
}
