// Package inspect provides read-only reporting over the configured
// interceptor catalogs and the type registry. The inspector never executes a
// handler and never fails on unhealthy configuration; the classification is
// its output.
package inspect

import (
	"sort"

	"github.com/quorate/mediate-go/interceptors"
	"github.com/quorate/mediate-go/registry"
)

// Category labels which pipeline a middleware summary belongs to.
type Category string

const (
	// CategoryRequest is the command/query pipeline.
	CategoryRequest Category = "request"
	// CategoryNotification is the publish pipeline.
	CategoryNotification Category = "notification"
)

// MiddlewareSummary describes one configured interceptor.
type MiddlewareSummary struct {
	Name string
	// Category names the pipeline the interceptor is registered in.
	Category Category
	// Order is the raw order value, sentinels included.
	Order int
	// OrderDisplay renders the order with sentinel names ("first", "last").
	OrderDisplay string
	// Constraint describes which message types the interceptor applies to.
	Constraint string
	// TypeParameters is the type-argument arity the constraint selects, when
	// it is an open-generic-shape constraint. Zero otherwise.
	TypeParameters int
}

// HandlerStatus classifies a request type's handler-resolution health.
type HandlerStatus int

const (
	// StatusSingle means exactly one handler: dispatch will succeed.
	StatusSingle HandlerStatus = iota
	// StatusMissing means no handler: dispatch would fail with HandlerNotFound.
	StatusMissing
	// StatusMultiple means more than one handler: dispatch would fail with
	// AmbiguousHandler.
	StatusMultiple
)

// String returns the status display name
func (s HandlerStatus) String() string {
	switch s {
	case StatusMissing:
		return "Missing"
	case StatusMultiple:
		return "Multiple"
	default:
		return "Single"
	}
}

// HandlerReport classifies one known request type.
type HandlerReport struct {
	MessageType  registry.MessageType
	Status       HandlerStatus
	HandlerCount int
}

// ListenerReport counts the listeners of one known notification type. Any
// count including zero is healthy.
type ListenerReport struct {
	MessageType   registry.MessageType
	ListenerCount int
}

// Inspector reports over the catalogs and registry without executing anything.
type Inspector struct {
	registry            *registry.TypeRegistry
	requestCatalog      *interceptors.Catalog
	notificationCatalog *interceptors.Catalog
}

// NewInspector creates a new inspector
func NewInspector(reg *registry.TypeRegistry, requestCatalog, notificationCatalog *interceptors.Catalog) *Inspector {
	return &Inspector{
		registry:            reg,
		requestCatalog:      requestCatalog,
		notificationCatalog: notificationCatalog,
	}
}

// AnalyzeMiddleware returns a summary of every configured interceptor in
// resolved execution order, request pipeline first. Safe to call at any time,
// including before any dispatch.
func (i *Inspector) AnalyzeMiddleware() []MiddlewareSummary {
	var out []MiddlewareSummary
	out = append(out, summarize(i.requestCatalog, CategoryRequest)...)
	out = append(out, summarize(i.notificationCatalog, CategoryNotification)...)
	return out
}

// AnalyzeHandlers classifies every known request type by handler-resolution
// health, sorted by type name for stable reports.
func (i *Inspector) AnalyzeHandlers() []HandlerReport {
	types := i.registry.RequestTypes()
	sort.Slice(types, func(a, b int) bool { return types[a].Key() < types[b].Key() })

	out := make([]HandlerReport, 0, len(types))
	for _, mt := range types {
		count := i.registry.HandlerCount(mt)
		status := StatusSingle
		switch {
		case count == 0:
			status = StatusMissing
		case count > 1:
			status = StatusMultiple
		}
		out = append(out, HandlerReport{
			MessageType:  mt,
			Status:       status,
			HandlerCount: count,
		})
	}
	return out
}

// AnalyzeListeners counts the listeners of every known notification type,
// sorted by type name.
func (i *Inspector) AnalyzeListeners() []ListenerReport {
	types := i.registry.NotificationTypes()
	sort.Slice(types, func(a, b int) bool { return types[a].Key() < types[b].Key() })

	out := make([]ListenerReport, 0, len(types))
	for _, mt := range types {
		out = append(out, ListenerReport{
			MessageType:   mt,
			ListenerCount: len(i.registry.ListSubscribers(mt)),
		})
	}
	return out
}

func summarize(catalog *interceptors.Catalog, category Category) []MiddlewareSummary {
	if catalog == nil {
		return nil
	}

	regs := catalog.Registrations()
	out := make([]MiddlewareSummary, 0, len(regs))
	for _, reg := range regs {
		summary := MiddlewareSummary{
			Name:         reg.Interceptor.Name(),
			Category:     category,
			Order:        reg.Order,
			OrderDisplay: interceptors.FormatOrder(reg.Order),
			Constraint:   reg.Constraint.Describe(),
		}
		if arity, ok := reg.Constraint.(interface{ TypeParameters() int }); ok {
			summary.TypeParameters = arity.TypeParameters()
		}
		out = append(out, summary)
	}
	return out
}
