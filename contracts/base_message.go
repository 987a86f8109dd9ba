package contracts

import (
	"time"

	"github.com/google/uuid"
)

// BaseMessage provides common fields for all message types
type BaseMessage struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Type          string    `json:"type"`
	CorrelationID string    `json:"correlationId,omitempty"`
}

// NewBaseMessage creates a new base message with generated ID and current timestamp
func NewBaseMessage(messageType string) BaseMessage {
	return BaseMessage{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Type:      messageType,
	}
}

// GetID returns the message ID
func (m BaseMessage) GetID() string {
	return m.ID
}

// GetTimestamp returns the message timestamp
func (m BaseMessage) GetTimestamp() time.Time {
	return m.Timestamp
}

// GetType returns the message type
func (m BaseMessage) GetType() string {
	return m.Type
}

// GetCorrelationID returns the correlation ID
func (m BaseMessage) GetCorrelationID() string {
	return m.CorrelationID
}

// SetCorrelationID sets the correlation ID
func (m *BaseMessage) SetCorrelationID(correlationID string) {
	m.CorrelationID = correlationID
}

// BaseCommand provides common fields for command messages. Embed it to mark a
// struct as a Command.
type BaseCommand struct {
	BaseMessage
}

// IsCommand marks the message as a command
func (c BaseCommand) IsCommand() {}

// NewBaseCommand creates a new command with generated ID and current timestamp
func NewBaseCommand(messageType string) BaseCommand {
	return BaseCommand{
		BaseMessage: NewBaseMessage(messageType),
	}
}

// BaseQuery provides common fields for query messages. Embed it to mark a
// struct as a Query.
type BaseQuery struct {
	BaseMessage
}

// IsQuery marks the message as a query
func (q BaseQuery) IsQuery() {}

// NewBaseQuery creates a new query with generated ID and current timestamp
func NewBaseQuery(messageType string) BaseQuery {
	return BaseQuery{
		BaseMessage: NewBaseMessage(messageType),
	}
}

// BaseNotification provides common fields for notification messages. Embed it
// to mark a struct as a Notification.
type BaseNotification struct {
	BaseMessage
	Source string `json:"source,omitempty"`
}

// IsNotification marks the message as a notification
func (n BaseNotification) IsNotification() {}

// NewBaseNotification creates a new notification with generated ID and current timestamp
func NewBaseNotification(messageType string) BaseNotification {
	return BaseNotification{
		BaseMessage: NewBaseMessage(messageType),
	}
}
