package contracts

import (
	"time"
)

// Message is the base interface for all messages
type Message interface {
	GetID() string
	GetTimestamp() time.Time
	GetType() string
	GetCorrelationID() string
	SetCorrelationID(correlationID string)
}

// Command represents an action that mutates state. A command is dispatched to
// exactly one handler and may return a result.
type Command interface {
	Message
	IsCommand()
}

// Query represents a read-only request for information. A query is dispatched
// to exactly one handler and returns a result.
type Query interface {
	Message
	IsQuery()
}

// Notification represents something that has happened. A notification is
// broadcast to zero or more independent listeners.
type Notification interface {
	Message
	IsNotification()
}
