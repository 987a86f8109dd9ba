// Package dispatch executes the mediator's two delivery paths.
//
// The Sender routes a command or query through the request pipeline to its
// single handler and returns the handler's result: nothing, one value, or a
// lazily produced stream. The Publisher routes a notification through the
// notification pipeline and fans it out to every registered and subscribed
// listener, collecting listener failures into one aggregate error.
//
// Both paths build their pipeline once per message type and cache it; the
// cache is safe for concurrent first build because pipeline construction is a
// pure function of the finalized catalog.
package dispatch
