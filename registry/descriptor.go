package registry

import (
	"fmt"
	"reflect"
)

// ResultKind describes the result shape of a request handler.
type ResultKind int

const (
	// ResultNone is a fire-and-forget handler with no result value.
	ResultNone ResultKind = iota
	// ResultValue is a handler returning a single value.
	ResultValue
	// ResultStream is a handler returning a lazy sequence of values.
	ResultStream
)

// String returns the lowercase result kind name
func (k ResultKind) String() string {
	switch k {
	case ResultValue:
		return "value"
	case ResultStream:
		return "stream"
	default:
		return "none"
	}
}

// Source describes how a descriptor entered the registry.
type Source int

const (
	// SourceDiscovered entries come from the startup discovery pass.
	SourceDiscovered Source = iota
	// SourceManual entries come from explicit registration calls.
	SourceManual
	// SourceSubscribed entries come from runtime Subscribe calls.
	SourceSubscribed
)

// String returns the lowercase source name
func (s Source) String() string {
	switch s {
	case SourceManual:
		return "manual"
	case SourceSubscribed:
		return "subscribed"
	default:
		return "discovered"
	}
}

// HandlerDescriptor binds a request MessageType to its handler. The handler
// is either an instance or a type materialized per call through a Resolver.
type HandlerDescriptor struct {
	MessageType MessageType
	ResultKind  ResultKind
	Source      Source

	handler     RequestHandler
	stream      StreamHandler
	handlerType reflect.Type
}

// Name returns a display name for the handler implementation.
func (d *HandlerDescriptor) Name() string {
	if d.handlerType != nil {
		return typeName(d.handlerType)
	}
	if d.stream != nil {
		return typeName(reflect.TypeOf(d.stream))
	}
	return typeName(reflect.TypeOf(d.handler))
}

// Request materializes the request handler, resolving type-registered
// descriptors through r.
func (d *HandlerDescriptor) Request(r Resolver) (RequestHandler, error) {
	if d.handler != nil {
		return d.handler, nil
	}
	if d.handlerType == nil || d.ResultKind == ResultStream {
		return nil, fmt.Errorf("descriptor for %s does not provide a request handler", d.MessageType)
	}
	inst, err := resolveInstance(r, d.handlerType)
	if err != nil {
		return nil, err
	}
	h, ok := inst.(RequestHandler)
	if !ok {
		return nil, fmt.Errorf("resolved instance %T does not implement RequestHandler", inst)
	}
	return h, nil
}

// Stream materializes the stream handler, resolving type-registered
// descriptors through r.
func (d *HandlerDescriptor) Stream(r Resolver) (StreamHandler, error) {
	if d.stream != nil {
		return d.stream, nil
	}
	if d.handlerType == nil || d.ResultKind != ResultStream {
		return nil, fmt.Errorf("descriptor for %s does not provide a stream handler", d.MessageType)
	}
	inst, err := resolveInstance(r, d.handlerType)
	if err != nil {
		return nil, err
	}
	h, ok := inst.(StreamHandler)
	if !ok {
		return nil, fmt.Errorf("resolved instance %T does not implement StreamHandler", inst)
	}
	return h, nil
}

// SubscriberDescriptor binds a notification MessageType to one listener.
// Registered and subscribed descriptors share this shape and are invoked
// identically during publish; only the Source tag differs.
type SubscriberDescriptor struct {
	MessageType MessageType
	Source      Source

	listener     NotificationListener
	listenerType reflect.Type
	identity     interface{}
}

// Name returns a display name for the listener implementation.
func (d *SubscriberDescriptor) Name() string {
	if d.listenerType != nil {
		return typeName(d.listenerType)
	}
	return typeName(reflect.TypeOf(d.listener))
}

// Listener materializes the notification listener, resolving type-registered
// descriptors through r.
func (d *SubscriberDescriptor) Listener(r Resolver) (NotificationListener, error) {
	if d.listener != nil {
		return d.listener, nil
	}
	inst, err := resolveInstance(r, d.listenerType)
	if err != nil {
		return nil, err
	}
	l, ok := inst.(NotificationListener)
	if !ok {
		return nil, fmt.Errorf("resolved instance %T does not implement NotificationListener", inst)
	}
	return l, nil
}

func resolveInstance(r Resolver, t reflect.Type) (interface{}, error) {
	if r == nil {
		r = ZeroValueResolver{}
	}
	inst, err := r.Resolve(t)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve instance of %s: %w", typeName(t), err)
	}
	return inst, nil
}

// listenerIdentity derives a comparable identity for a listener so duplicate
// Subscribe calls with the same listener can be de-duplicated. Pointer and
// function listeners compare by address, comparable values by value. A nil
// identity means the listener has no usable identity and is never
// de-duplicated.
func listenerIdentity(l NotificationListener) interface{} {
	v := reflect.ValueOf(l)
	switch v.Kind() {
	case reflect.Func, reflect.Ptr, reflect.Chan, reflect.Map, reflect.Slice, reflect.UnsafePointer:
		return v.Pointer()
	default:
		if v.Comparable() {
			return l
		}
		return nil
	}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
