package registry

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/quorate/mediate-go/contracts"
)

// Kind classifies a message by its dispatch semantics.
type Kind int

const (
	// KindUnknown is a message that implements none of the marker interfaces.
	KindUnknown Kind = iota
	// KindCommand is a state-mutating request with exactly one handler.
	KindCommand
	// KindQuery is a read-only request with exactly one handler.
	KindQuery
	// KindNotification is a broadcast with zero or more listeners.
	KindNotification
)

// String returns the lowercase kind name
func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindQuery:
		return "query"
	case KindNotification:
		return "notification"
	default:
		return "unknown"
	}
}

// MessageType identifies a message type. It is immutable once derived and is
// the key for handler resolution, pipeline caching and inspection.
type MessageType struct {
	// Name is the base type name without type arguments.
	Name string
	// PkgPath is the import path of the package declaring the type.
	PkgPath string
	// Kind classifies the message as command, query or notification.
	Kind Kind
	// TypeArgs holds the type arguments of an instantiated generic type, in
	// declaration order. Empty for non-generic types.
	TypeArgs []string

	rt reflect.Type
}

// TypeOf derives the MessageType identity for a message value.
func TypeOf(msg contracts.Message) MessageType {
	rt := reflect.TypeOf(msg)
	if rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}

	name := rt.Name()
	var args []string
	if i := strings.IndexByte(name, '['); i >= 0 {
		args = splitTypeArgs(name[i+1 : len(name)-1])
		name = name[:i]
	}

	return MessageType{
		Name:     name,
		PkgPath:  rt.PkgPath(),
		Kind:     kindOf(msg),
		TypeArgs: args,
		rt:       rt,
	}
}

// ReflectType returns the underlying struct type.
func (t MessageType) ReflectType() reflect.Type {
	return t.rt
}

// Arity returns the number of type arguments of an instantiated generic
// message type, or zero for non-generic types.
func (t MessageType) Arity() int {
	return len(t.TypeArgs)
}

// IsRequest reports whether the type is dispatched to a single handler.
func (t MessageType) IsRequest() bool {
	return t.Kind == KindCommand || t.Kind == KindQuery
}

// Key returns a stable unique identity string for the type.
func (t MessageType) Key() string {
	if t.PkgPath == "" {
		return t.String()
	}
	return t.PkgPath + "." + t.String()
}

// String returns the type name including any type arguments.
func (t MessageType) String() string {
	if len(t.TypeArgs) == 0 {
		return t.Name
	}
	return fmt.Sprintf("%s[%s]", t.Name, strings.Join(t.TypeArgs, ","))
}

func kindOf(msg contracts.Message) Kind {
	switch msg.(type) {
	case contracts.Command:
		return KindCommand
	case contracts.Query:
		return KindQuery
	case contracts.Notification:
		return KindNotification
	default:
		return KindUnknown
	}
}

// splitTypeArgs splits the bracketed argument list of an instantiated generic
// type name, respecting nested brackets such as Pair[int,Box[string]].
func splitTypeArgs(s string) []string {
	var args []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if start < len(s) {
		args = append(args, strings.TrimSpace(s[start:]))
	}
	return args
}
