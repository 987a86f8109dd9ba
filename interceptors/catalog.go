package interceptors

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/quorate/mediate-go/registry"
)

// Order sentinels. OrderFirst sorts before every ordinary order value and
// OrderLast after; interceptors sharing a sentinel keep registration order.
const (
	OrderFirst   = math.MinInt32
	OrderLast    = math.MaxInt32
	OrderDefault = 0
)

// Registration is one catalog entry: an interceptor plus its order and
// constraint. Registrations are immutable after the catalog is finalized.
type Registration struct {
	Interceptor Interceptor
	Order       int
	Constraint  Constraint

	seq int
}

// RegistrationOption configures a catalog registration
type RegistrationOption func(*Registration)

// WithOrder sets the registration's order value
func WithOrder(order int) RegistrationOption {
	return func(r *Registration) {
		r.Order = order
	}
}

// WithConstraint restricts the registration to matching message types
func WithConstraint(c Constraint) RegistrationOption {
	return func(r *Registration) {
		r.Constraint = c
	}
}

// Catalog is the ordered collection of interceptor registrations for one
// pipeline category (requests or notifications). Register at configuration
// time, then Finalize; a finalized catalog is read-only and safe for
// concurrent pipeline builds.
type Catalog struct {
	mu        sync.RWMutex
	regs      []Registration
	finalized bool
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Register adds an interceptor to the catalog. It fails once the catalog has
// been finalized.
func (c *Catalog) Register(interceptor Interceptor, options ...RegistrationOption) error {
	if interceptor == nil {
		return fmt.Errorf("interceptor cannot be nil")
	}

	reg := Registration{
		Interceptor: interceptor,
		Order:       OrderDefault,
		Constraint:  Unconstrained(),
	}
	for _, opt := range options {
		opt(&reg)
	}
	if reg.Constraint == nil {
		reg.Constraint = Unconstrained()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.finalized {
		return fmt.Errorf("catalog is finalized, cannot register %s", interceptor.Name())
	}

	reg.seq = len(c.regs)
	c.regs = append(c.regs, reg)
	return nil
}

// Finalize freezes the catalog and sorts registrations by (order, insertion
// index). Finalize is idempotent.
func (c *Catalog) Finalize() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.finalized {
		return
	}
	c.finalized = true
	sort.SliceStable(c.regs, func(i, j int) bool {
		if c.regs[i].Order != c.regs[j].Order {
			return c.regs[i].Order < c.regs[j].Order
		}
		return c.regs[i].seq < c.regs[j].seq
	})
}

// Finalized reports whether the catalog has been frozen.
func (c *Catalog) Finalized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.finalized
}

// Registrations returns the ordered registrations, sorted even when the
// catalog has not been finalized yet. The slice is a copy.
func (c *Catalog) Registrations() []Registration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Registration, len(c.regs))
	copy(out, c.regs)
	if !c.finalized {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Order != out[j].Order {
				return out[i].Order < out[j].Order
			}
			return out[i].seq < out[j].seq
		})
	}
	return out
}

// Select returns the ordered registrations whose constraint matches the
// message type.
func (c *Catalog) Select(mt registry.MessageType) []Registration {
	var out []Registration
	for _, reg := range c.Registrations() {
		if reg.Constraint.Matches(mt) {
			out = append(out, reg)
		}
	}
	return out
}

// Build filters the catalog for the message type, finalizes the catalog if
// the caller has not done so yet, and wraps terminal with the matching
// interceptors in order. Building is a pure function of the finalized
// catalog, so built pipelines may be cached per message type.
func (c *Catalog) Build(mt registry.MessageType, terminal Handler) Handler {
	c.Finalize()

	regs := c.Select(mt)
	if len(regs) == 0 {
		return terminal
	}

	chain := make([]Interceptor, 0, len(regs))
	for _, reg := range regs {
		chain = append(chain, reg.Interceptor)
	}
	return Chain(chain, terminal)
}

// FormatOrder renders an order value for display, mapping the sentinels to
// their names.
func FormatOrder(order int) string {
	switch order {
	case OrderFirst:
		return "first"
	case OrderLast:
		return "last"
	default:
		return fmt.Sprintf("%d", order)
	}
}
