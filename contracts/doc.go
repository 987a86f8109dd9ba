// Package contracts provides the core message types and interfaces for the mediate framework.
//
// This package defines the contracts for messages that flow through the mediator:
//   - Message: Base interface for all messages
//   - Command: Represents an action that mutates state, handled by exactly one handler
//   - Query: Represents a read-only request for information, handled by exactly one handler
//   - Notification: Represents a broadcast to zero or more listeners
//
// It also defines the error taxonomy shared by the dispatch and publish paths
// and the session identity helpers used to scope statistics to a logical caller.
package contracts
