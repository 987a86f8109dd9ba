package interceptors

import (
	"fmt"
	"reflect"

	"github.com/quorate/mediate-go/contracts"
	"github.com/quorate/mediate-go/registry"
)

// Constraint restricts an interceptor registration to a subset of message
// types. Matching happens once per message type when the pipeline is built,
// not per dispatch.
type Constraint interface {
	// Matches reports whether the interceptor applies to the message type
	Matches(mt registry.MessageType) bool

	// Describe returns a human-readable description for inspection
	Describe() string
}

// ConstraintFunc is a function adapter for Constraint
type ConstraintFunc struct {
	desc string
	fn   func(mt registry.MessageType) bool
}

// NewConstraintFunc creates a new function-based constraint
func NewConstraintFunc(desc string, fn func(mt registry.MessageType) bool) *ConstraintFunc {
	return &ConstraintFunc{desc: desc, fn: fn}
}

// Matches implements Constraint
func (c *ConstraintFunc) Matches(mt registry.MessageType) bool {
	return c.fn(mt)
}

// Describe implements Constraint
func (c *ConstraintFunc) Describe() string {
	return c.desc
}

// unconstrained matches every message type of the pipeline's category.
type unconstrained struct{}

func (unconstrained) Matches(registry.MessageType) bool { return true }
func (unconstrained) Describe() string                  { return "all message types" }

// Unconstrained returns a constraint that matches everything.
func Unconstrained() Constraint {
	return unconstrained{}
}

// exactType matches a single concrete message type.
type exactType struct {
	key  string
	name string
}

// ExactType returns a constraint matching only the concrete type of proto.
func ExactType(proto contracts.Message) Constraint {
	mt := registry.TypeOf(proto)
	return &exactType{key: mt.Key(), name: mt.String()}
}

func (c *exactType) Matches(mt registry.MessageType) bool { return mt.Key() == c.key }
func (c *exactType) Describe() string                     { return fmt.Sprintf("exact type %s", c.name) }

// implementsIface matches message types whose pointer type implements an
// interface, mirroring capability-based middleware constraints.
type implementsIface struct {
	iface reflect.Type
}

// Implements returns a constraint matching message types that implement the
// interface of ifacePtr, given as a nil interface pointer such as
// Implements((*Auditable)(nil)).
func Implements(ifacePtr interface{}) Constraint {
	t := reflect.TypeOf(ifacePtr)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Interface {
		panic("interceptors: Implements requires a nil interface pointer such as (*Auditable)(nil)")
	}
	return &implementsIface{iface: t.Elem()}
}

func (c *implementsIface) Matches(mt registry.MessageType) bool {
	rt := mt.ReflectType()
	if rt == nil {
		return false
	}
	return rt.Implements(c.iface) || reflect.PtrTo(rt).Implements(c.iface)
}

func (c *implementsIface) Describe() string {
	return fmt.Sprintf("types implementing %s", c.iface.Name())
}

// ofKind matches all commands, all queries, or all notifications.
type ofKind struct {
	kind registry.Kind
}

// OfKind returns a constraint matching every message of the given kind.
func OfKind(kind registry.Kind) Constraint {
	return &ofKind{kind: kind}
}

func (c *ofKind) Matches(mt registry.MessageType) bool { return mt.Kind == c.kind }
func (c *ofKind) Describe() string                     { return fmt.Sprintf("all %s messages", c.kind) }

// typeArity matches instantiated generic message types by their number of
// type arguments, the open-generic-shape constraint.
type typeArity struct {
	arity int
}

// TypeArity returns a constraint matching generic message types instantiated
// with exactly n type arguments.
func TypeArity(n int) Constraint {
	return &typeArity{arity: n}
}

func (c *typeArity) Matches(mt registry.MessageType) bool { return mt.Arity() == c.arity }

func (c *typeArity) Describe() string {
	return fmt.Sprintf("generic types with %d type parameters", c.arity)
}

// TypeParameters reports the arity this constraint selects, for inspection.
func (c *typeArity) TypeParameters() int { return c.arity }

// allOf combines constraints with AND logic.
type allOf struct {
	constraints []Constraint
}

// AllOf returns a constraint matching only when every given constraint matches.
func AllOf(constraints ...Constraint) Constraint {
	return &allOf{constraints: constraints}
}

func (c *allOf) Matches(mt registry.MessageType) bool {
	for _, constraint := range c.constraints {
		if !constraint.Matches(mt) {
			return false
		}
	}
	return true
}

func (c *allOf) Describe() string {
	if len(c.constraints) == 0 {
		return "all message types"
	}
	desc := c.constraints[0].Describe()
	for _, constraint := range c.constraints[1:] {
		desc += " and " + constraint.Describe()
	}
	return desc
}
