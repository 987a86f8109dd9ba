package registry

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/quorate/mediate-go/contracts"
)

// TypeRegistry maps request types to their handler descriptors and
// notification types to their subscriber descriptors.
//
// Handler registration is expected at configuration time only. Duplicate
// handler registrations are accepted silently; the ambiguity surfaces when a
// dispatch is attempted, and the inspector reports it before that.
type TypeRegistry struct {
	mu sync.RWMutex

	// request and notification types known to the registry, keyed by
	// MessageType.Key(). Declared types without handlers stay here so the
	// inspector can report them as missing.
	requests      map[string]MessageType
	notifications map[string]MessageType

	handlers   map[string][]*HandlerDescriptor
	registered map[string][]*SubscriberDescriptor
	subscribed map[string][]*SubscriberDescriptor

	logger *slog.Logger
}

// RegistryOption configures the TypeRegistry
type RegistryOption func(*TypeRegistry)

// WithRegistryLogger sets the logger
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *TypeRegistry) {
		r.logger = logger
	}
}

// NewTypeRegistry creates an empty type registry
func NewTypeRegistry(options ...RegistryOption) *TypeRegistry {
	r := &TypeRegistry{
		requests:      make(map[string]MessageType),
		notifications: make(map[string]MessageType),
		handlers:      make(map[string][]*HandlerDescriptor),
		registered:    make(map[string][]*SubscriberDescriptor),
		subscribed:    make(map[string][]*SubscriberDescriptor),
		logger:        slog.Default(),
	}

	for _, opt := range options {
		opt(r)
	}

	return r
}

// DeclareRequestType makes a request type known to the registry without
// attaching a handler. Declared types with no handler are reported as missing
// by the inspector but cause no error until a dispatch is attempted.
func (r *TypeRegistry) DeclareRequestType(proto contracts.Message) error {
	mt, err := requestType(proto)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[mt.Key()] = mt
	return nil
}

// DeclareNotificationType makes a notification type known to the registry
// without attaching a listener. Publishing a declared type with no listeners
// is a no-op success.
func (r *TypeRegistry) DeclareNotificationType(proto contracts.Message) error {
	mt, err := notificationType(proto)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications[mt.Key()] = mt
	return nil
}

// RegisterHandler registers a handler instance for the request type of proto.
func (r *TypeRegistry) RegisterHandler(proto contracts.Message, handler RequestHandler, resultKind ResultKind) error {
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}
	if resultKind == ResultStream {
		return fmt.Errorf("use RegisterStreamHandler for streaming handlers")
	}
	mt, err := requestType(proto)
	if err != nil {
		return err
	}

	r.addHandler(&HandlerDescriptor{
		MessageType: mt,
		ResultKind:  resultKind,
		Source:      SourceManual,
		handler:     handler,
	})
	return nil
}

// RegisterStreamHandler registers a streaming handler instance for the
// request type of proto.
func (r *TypeRegistry) RegisterStreamHandler(proto contracts.Message, handler StreamHandler) error {
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}
	mt, err := requestType(proto)
	if err != nil {
		return err
	}

	r.addHandler(&HandlerDescriptor{
		MessageType: mt,
		ResultKind:  ResultStream,
		Source:      SourceManual,
		stream:      handler,
	})
	return nil
}

// RegisterHandlerType registers a handler by type, as supplied by the
// discovery collaborator. Instances are materialized per dispatch through the
// configured Resolver.
func (r *TypeRegistry) RegisterHandlerType(proto contracts.Message, handlerType reflect.Type, resultKind ResultKind) error {
	if handlerType == nil {
		return fmt.Errorf("handlerType cannot be nil")
	}
	mt, err := requestType(proto)
	if err != nil {
		return err
	}

	r.addHandler(&HandlerDescriptor{
		MessageType: mt,
		ResultKind:  resultKind,
		Source:      SourceDiscovered,
		handlerType: handlerType,
	})
	return nil
}

// RegisterListener registers a listener instance for the notification type of
// proto. Registered listeners are resolved once at startup and invoked on
// every publish.
func (r *TypeRegistry) RegisterListener(proto contracts.Message, listener NotificationListener) error {
	if listener == nil {
		return fmt.Errorf("listener cannot be nil")
	}
	mt, err := notificationType(proto)
	if err != nil {
		return err
	}

	r.addSubscriber(&SubscriberDescriptor{
		MessageType: mt,
		Source:      SourceManual,
		listener:    listener,
		identity:    listenerIdentity(listener),
	})
	return nil
}

// RegisterSubscriberType registers a listener by type, as supplied by the
// discovery collaborator.
func (r *TypeRegistry) RegisterSubscriberType(proto contracts.Message, listenerType reflect.Type) error {
	if listenerType == nil {
		return fmt.Errorf("listenerType cannot be nil")
	}
	mt, err := notificationType(proto)
	if err != nil {
		return err
	}

	r.addSubscriber(&SubscriberDescriptor{
		MessageType:  mt,
		Source:       SourceDiscovered,
		listenerType: listenerType,
	})
	return nil
}

// Subscribe adds a runtime subscription for the notification type of proto.
// Subscribing the same listener identity twice is idempotent: the second call
// is a no-op and the listener is invoked once per publish.
func (r *TypeRegistry) Subscribe(proto contracts.Message, listener NotificationListener) error {
	if listener == nil {
		return fmt.Errorf("listener cannot be nil")
	}
	mt, err := notificationType(proto)
	if err != nil {
		return err
	}

	identity := listenerIdentity(listener)

	r.mu.Lock()
	defer r.mu.Unlock()

	key := mt.Key()
	r.notifications[key] = mt
	if identity != nil {
		for _, d := range r.subscribed[key] {
			if d.identity == identity {
				r.logger.Debug("duplicate subscription ignored", "messageType", mt.String())
				return nil
			}
		}
	}

	r.subscribed[key] = append(r.subscribed[key], &SubscriberDescriptor{
		MessageType: mt,
		Source:      SourceSubscribed,
		listener:    listener,
		identity:    identity,
	})

	r.logger.Debug("listener subscribed", "messageType", mt.String())
	return nil
}

// Unsubscribe removes a runtime subscription previously added by Subscribe.
// Removing a listener that is not subscribed returns an error.
func (r *TypeRegistry) Unsubscribe(proto contracts.Message, listener NotificationListener) error {
	if listener == nil {
		return fmt.Errorf("listener cannot be nil")
	}
	mt, err := notificationType(proto)
	if err != nil {
		return err
	}

	identity := listenerIdentity(listener)
	if identity == nil {
		return fmt.Errorf("listener %T has no comparable identity and cannot be unsubscribed", listener)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := mt.Key()
	subs := r.subscribed[key]
	for i, d := range subs {
		if d.identity == identity {
			r.subscribed[key] = append(subs[:i], subs[i+1:]...)
			r.logger.Debug("listener unsubscribed", "messageType", mt.String())
			return nil
		}
	}

	return fmt.Errorf("listener not subscribed for notification type %s", mt)
}

// Resolve returns the single handler descriptor for a request type. Zero
// matches fail with HandlerNotFoundError, more than one with
// AmbiguousHandlerError.
func (r *TypeRegistry) Resolve(mt MessageType) (*HandlerDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descs := r.handlers[mt.Key()]
	switch len(descs) {
	case 0:
		return nil, &contracts.HandlerNotFoundError{MessageType: mt.String()}
	case 1:
		return descs[0], nil
	default:
		return nil, &contracts.AmbiguousHandlerError{MessageType: mt.String(), Count: len(descs)}
	}
}

// ListSubscribers returns a fixed-point snapshot of every subscriber for a
// notification type: statically registered descriptors first in registration
// order, then runtime subscriptions in subscription order. The returned slice
// is a copy; an in-flight publish is unaffected by concurrent mutation.
func (r *TypeRegistry) ListSubscribers(mt MessageType) []*SubscriberDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := mt.Key()
	registered := r.registered[key]
	subscribed := r.subscribed[key]

	out := make([]*SubscriberDescriptor, 0, len(registered)+len(subscribed))
	out = append(out, registered...)
	out = append(out, subscribed...)
	return out
}

// HandlerCount returns the number of handlers registered for a request type.
func (r *TypeRegistry) HandlerCount(mt MessageType) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[mt.Key()])
}

// RequestTypes returns every request type known to the registry.
func (r *TypeRegistry) RequestTypes() []MessageType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]MessageType, 0, len(r.requests))
	for _, mt := range r.requests {
		out = append(out, mt)
	}
	return out
}

// NotificationTypes returns every notification type known to the registry.
func (r *TypeRegistry) NotificationTypes() []MessageType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]MessageType, 0, len(r.notifications))
	for _, mt := range r.notifications {
		out = append(out, mt)
	}
	return out
}

func (r *TypeRegistry) addHandler(d *HandlerDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := d.MessageType.Key()
	r.requests[key] = d.MessageType
	r.handlers[key] = append(r.handlers[key], d)

	r.logger.Info("registered request handler",
		"messageType", d.MessageType.String(),
		"handler", d.Name(),
		"resultKind", d.ResultKind.String(),
		"source", d.Source.String(),
	)
}

func (r *TypeRegistry) addSubscriber(d *SubscriberDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := d.MessageType.Key()
	r.notifications[key] = d.MessageType
	r.registered[key] = append(r.registered[key], d)

	r.logger.Info("registered notification listener",
		"messageType", d.MessageType.String(),
		"listener", d.Name(),
		"source", d.Source.String(),
	)
}

func requestType(proto contracts.Message) (MessageType, error) {
	if proto == nil {
		return MessageType{}, fmt.Errorf("message prototype cannot be nil")
	}
	mt := TypeOf(proto)
	if !mt.IsRequest() {
		return MessageType{}, fmt.Errorf("message type %s is not a command or query", mt)
	}
	return mt, nil
}

func notificationType(proto contracts.Message) (MessageType, error) {
	if proto == nil {
		return MessageType{}, fmt.Errorf("message prototype cannot be nil")
	}
	mt := TypeOf(proto)
	if mt.Kind != KindNotification {
		return MessageType{}, fmt.Errorf("message type %s is not a notification", mt)
	}
	return mt, nil
}
