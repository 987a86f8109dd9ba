// Package registry maps message types to their handlers and listeners.
//
// The registry is populated once at startup, either by a discovery pass that
// feeds candidate handler types through RegisterHandlerType, or by explicit
// RegisterHandler calls. After startup the only mutable part is the runtime
// subscription set managed by Subscribe and Unsubscribe.
//
// Request types resolve to exactly one handler. Zero or multiple handlers is
// a reportable health condition; it only becomes a hard failure when a
// dispatch is actually attempted.
package registry
