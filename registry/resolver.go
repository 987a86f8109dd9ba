package registry

import (
	"fmt"
	"reflect"
)

// Resolver materializes handler and listener instances from their type
// descriptors. It is supplied by the hosting collaborator; the registry never
// constructs instances itself beyond the zero-value fallback below.
type Resolver interface {
	Resolve(t reflect.Type) (interface{}, error)
}

// ResolverFunc is a function adapter for Resolver
type ResolverFunc func(t reflect.Type) (interface{}, error)

// Resolve implements Resolver
func (f ResolverFunc) Resolve(t reflect.Type) (interface{}, error) {
	return f(t)
}

// ZeroValueResolver constructs instances as zero values via reflection. It
// serves deployments without a dependency-injection container; handlers that
// need collaborators should be registered as instances instead.
type ZeroValueResolver struct{}

// Resolve implements Resolver
func (ZeroValueResolver) Resolve(t reflect.Type) (interface{}, error) {
	if t == nil {
		return nil, fmt.Errorf("cannot resolve nil type")
	}
	if t.Kind() == reflect.Ptr {
		return reflect.New(t.Elem()).Interface(), nil
	}
	return reflect.New(t).Elem().Interface(), nil
}
