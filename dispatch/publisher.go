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

// Publisher fans a notification out to every registered and subscribed
// listener through the notification interceptor pipeline.
//
// The interceptor chain wraps the whole fan-out, so a logging or statistics
// interceptor sees one notification dispatched to N listeners as a single
// unit of work. Listeners run in listener order: statically registered first,
// then runtime subscriptions.
type Publisher struct {
	registry *registry.TypeRegistry
	catalog  *interceptors.Catalog
	resolver registry.Resolver
	logger   *slog.Logger

	// abortOnFailure stops the fan-out at the first failing listener instead
	// of letting the remaining listeners run.
	abortOnFailure bool

	pipelines sync.Map // string -> interceptors.Handler
}

// PublisherOption configures the Publisher
type PublisherOption func(*Publisher)

// WithPublisherLogger sets the logger
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithPublisherResolver sets the instance resolver used for type-registered listeners
func WithPublisherResolver(resolver registry.Resolver) PublisherOption {
	return func(p *Publisher) {
		p.resolver = resolver
	}
}

// WithAbortOnListenerFailure stops the fan-out at the first failing listener.
// The default lets every listener run and aggregates the failures.
func WithAbortOnListenerFailure(abort bool) PublisherOption {
	return func(p *Publisher) {
		p.abortOnFailure = abort
	}
}

// NewPublisher creates a new publisher over the given registry and
// notification catalog
func NewPublisher(reg *registry.TypeRegistry, catalog *interceptors.Catalog, options ...PublisherOption) *Publisher {
	p := &Publisher{
		registry: reg,
		catalog:  catalog,
		resolver: registry.ZeroValueResolver{},
		logger:   slog.Default(),
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

// Publish delivers a notification to every listener for its type. Publishing
// with no listeners is a successful no-op. A failing listener does not stop
// the others; all failures are collected and raised once as a
// ListenerFailedError after every listener has run. Cancellation between
// listeners stops the fan-out and propagates unwrapped.
func (p *Publisher) Publish(ctx context.Context, notification contracts.Message) error {
	if notification == nil {
		return fmt.Errorf("notification cannot be nil")
	}
	mt := registry.TypeOf(notification)
	if mt.Kind != registry.KindNotification {
		return fmt.Errorf("message type %s is not a notification", mt)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	pipeline := p.pipeline(mt)
	_, err := pipeline.Handle(ctx, notification)
	return err
}

// InvalidatePipelines drops every cached pipeline. Expected only when the
// catalog changes, which is a startup-time event.
func (p *Publisher) InvalidatePipelines() {
	p.pipelines.Range(func(key, _ interface{}) bool {
		p.pipelines.Delete(key)
		return true
	})
}

func (p *Publisher) pipeline(mt registry.MessageType) interceptors.Handler {
	if cached, ok := p.pipelines.Load(mt.Key()); ok {
		return cached.(interceptors.Handler)
	}

	built := p.catalog.Build(mt, p.fanOutTerminal(mt))
	p.pipelines.Store(mt.Key(), built)
	return built
}

// fanOutTerminal is the innermost pipeline link: it snapshots the listener
// set and invokes each listener inside an isolating boundary.
func (p *Publisher) fanOutTerminal(mt registry.MessageType) interceptors.Handler {
	return interceptors.HandlerFunc(func(ctx context.Context, msg contracts.Message) (interface{}, error) {
		subscribers := p.registry.ListSubscribers(mt)

		p.logger.Debug("publishing notification",
			"messageType", mt.String(),
			"messageId", msg.GetID(),
			"listenerCount", len(subscribers),
		)

		var failures []contracts.ListenerFailure
		for _, desc := range subscribers {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			if err := p.invokeListener(ctx, desc, msg); err != nil {
				if contracts.IsCancellation(err) {
					return nil, err
				}

				p.logger.Error("listener failed",
					"messageType", mt.String(),
					"messageId", msg.GetID(),
					"listener", desc.Name(),
					"error", err,
				)
				failures = append(failures, contracts.ListenerFailure{
					Listener: desc.Name(),
					Err:      err,
				})
				if p.abortOnFailure {
					break
				}
			}
		}

		if len(failures) > 0 {
			return nil, &contracts.ListenerFailedError{
				MessageType: mt.String(),
				Failures:    failures,
			}
		}
		return nil, nil
	})
}

func (p *Publisher) invokeListener(ctx context.Context, desc *registry.SubscriberDescriptor, msg contracts.Message) error {
	listener, err := desc.Listener(p.resolver)
	if err != nil {
		return err
	}
	return invokeListenerSafely(ctx, listener, msg)
}

// invokeListenerSafely shields the fan-out from listener panics.
func invokeListenerSafely(ctx context.Context, listener registry.NotificationListener, msg contracts.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panicked: %v", r)
		}
	}()
	return listener.Handle(ctx, msg)
}
