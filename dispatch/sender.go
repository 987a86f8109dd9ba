package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/quorate/mediate-go/contracts"
	"github.com/quorate/mediate-go/interceptors"
	"github.com/quorate/mediate-go/registry"
)

// Sender dispatches commands and queries to their single registered handler
// through the request interceptor pipeline.
type Sender struct {
	registry *registry.TypeRegistry
	catalog  *interceptors.Catalog
	resolver registry.Resolver
	logger   *slog.Logger

	// pipelines cached per message type. Concurrent first builds race
	// benignly: construction is pure, the last write wins.
	values  sync.Map // string -> interceptors.Handler
	streams sync.Map // string -> interceptors.Handler
}

// SenderOption configures the Sender
type SenderOption func(*Sender)

// WithSenderLogger sets the logger
func WithSenderLogger(logger *slog.Logger) SenderOption {
	return func(s *Sender) {
		s.logger = logger
	}
}

// WithSenderResolver sets the instance resolver used for type-registered handlers
func WithSenderResolver(resolver registry.Resolver) SenderOption {
	return func(s *Sender) {
		s.resolver = resolver
	}
}

// NewSender creates a new sender over the given registry and request catalog
func NewSender(reg *registry.TypeRegistry, catalog *interceptors.Catalog, options ...SenderOption) *Sender {
	s := &Sender{
		registry: reg,
		catalog:  catalog,
		resolver: registry.ZeroValueResolver{},
		logger:   slog.Default(),
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// Send dispatches a request to its single handler and returns the handler's
// result. Fire-and-forget handlers return a nil result. Requests whose
// handler streams must use SendStream instead.
//
// Resolution failures surface here, not at registration time:
// HandlerNotFoundError for zero handlers, AmbiguousHandlerError for more than
// one. Handler errors are wrapped in HandlerFailedError; cancellation
// propagates unwrapped.
func (s *Sender) Send(ctx context.Context, req contracts.Message) (interface{}, error) {
	mt, err := requestTypeOf(req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pipeline := s.pipeline(&s.values, mt, s.valueTerminal(mt))
	return pipeline.Handle(ctx, req)
}

// SendStream dispatches a streaming request and returns its lazily produced
// sequence. The interceptor chain wraps the production of the sequence, not
// each element: an interceptor observes the start and can replace or suppress
// the whole stream, but never sees individual items.
func (s *Sender) SendStream(ctx context.Context, req contracts.Message) (<-chan registry.StreamItem, error) {
	mt, err := requestTypeOf(req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pipeline := s.pipeline(&s.streams, mt, s.streamTerminal(mt))
	result, err := pipeline.Handle(ctx, req)
	if err != nil {
		return nil, err
	}
	if result == nil {
		// An interceptor suppressed the stream; deliver an empty sequence.
		ch := make(chan registry.StreamItem)
		close(ch)
		return ch, nil
	}

	stream, ok := result.(<-chan registry.StreamItem)
	if !ok {
		return nil, fmt.Errorf("pipeline for %s produced %T, expected a stream", mt, result)
	}
	return stream, nil
}

// InvalidatePipelines drops every cached pipeline. Expected only when the
// catalog changes, which is a startup-time event.
func (s *Sender) InvalidatePipelines() {
	s.values.Range(func(key, _ interface{}) bool {
		s.values.Delete(key)
		return true
	})
	s.streams.Range(func(key, _ interface{}) bool {
		s.streams.Delete(key)
		return true
	})
}

func (s *Sender) pipeline(cache *sync.Map, mt registry.MessageType, terminal interceptors.Handler) interceptors.Handler {
	if cached, ok := cache.Load(mt.Key()); ok {
		return cached.(interceptors.Handler)
	}

	built := s.catalog.Build(mt, terminal)
	cache.Store(mt.Key(), built)
	return built
}

// valueTerminal resolves and invokes the single handler at dispatch time, so
// handlers registered after the pipeline was cached are still honored and
// resolution health is re-checked on every send.
func (s *Sender) valueTerminal(mt registry.MessageType) interceptors.Handler {
	return interceptors.HandlerFunc(func(ctx context.Context, msg contracts.Message) (interface{}, error) {
		desc, err := s.registry.Resolve(mt)
		if err != nil {
			return nil, err
		}
		if desc.ResultKind == registry.ResultStream {
			return nil, fmt.Errorf("request type %s has a streaming handler, use SendStream", mt)
		}

		handler, err := desc.Request(s.resolver)
		if err != nil {
			return nil, &contracts.HandlerFailedError{MessageType: mt.String(), Err: err}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := invokeHandler(ctx, handler, msg)
		if err != nil {
			if contracts.IsCancellation(err) {
				return nil, err
			}
			return nil, &contracts.HandlerFailedError{MessageType: mt.String(), Err: err}
		}
		return result, nil
	})
}

func (s *Sender) streamTerminal(mt registry.MessageType) interceptors.Handler {
	return interceptors.HandlerFunc(func(ctx context.Context, msg contracts.Message) (interface{}, error) {
		desc, err := s.registry.Resolve(mt)
		if err != nil {
			return nil, err
		}
		if desc.ResultKind != registry.ResultStream {
			return nil, fmt.Errorf("request type %s does not have a streaming handler, use Send", mt)
		}

		handler, err := desc.Stream(s.resolver)
		if err != nil {
			return nil, &contracts.HandlerFailedError{MessageType: mt.String(), Err: err}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stream, err := invokeStreamHandler(ctx, handler, msg)
		if err != nil {
			if contracts.IsCancellation(err) {
				return nil, err
			}
			return nil, &contracts.HandlerFailedError{MessageType: mt.String(), Err: err}
		}
		return stream, nil
	})
}

// invokeHandler shields the pipeline from handler panics.
func invokeHandler(ctx context.Context, handler registry.RequestHandler, msg contracts.Message) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, msg)
}

func invokeStreamHandler(ctx context.Context, handler registry.StreamHandler, msg contracts.Message) (stream <-chan registry.StreamItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			stream = nil
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.HandleStream(ctx, msg)
}

func requestTypeOf(req contracts.Message) (registry.MessageType, error) {
	if req == nil {
		return registry.MessageType{}, fmt.Errorf("request cannot be nil")
	}
	mt := registry.TypeOf(req)
	if !mt.IsRequest() {
		return registry.MessageType{}, fmt.Errorf("message type %s is not a command or query", mt)
	}
	return mt, nil
}
