package contracts

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomy(t *testing.T) {
	t.Run("typed errors match their sentinels", func(t *testing.T) {
		assert.ErrorIs(t, &HandlerNotFoundError{MessageType: "GetOrder"}, ErrHandlerNotFound)
		assert.ErrorIs(t, &AmbiguousHandlerError{MessageType: "GetOrder", Count: 2}, ErrAmbiguousHandler)
		assert.ErrorIs(t, &MiddlewareAbortedError{Interceptor: "gate"}, ErrMiddlewareAborted)
		assert.ErrorIs(t, &HandlerFailedError{MessageType: "GetOrder", Err: errors.New("boom")}, ErrHandlerFailed)
		assert.ErrorIs(t, &ListenerFailedError{MessageType: "OrderCreated"}, ErrListenerFailed)
	})

	t.Run("sentinels do not match each other", func(t *testing.T) {
		err := &HandlerNotFoundError{MessageType: "GetOrder"}

		assert.NotErrorIs(t, err, ErrAmbiguousHandler)
		assert.NotErrorIs(t, err, ErrHandlerFailed)
	})

	t.Run("wrapped typed errors still match through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("sending: %w", &HandlerNotFoundError{MessageType: "GetOrder"})

		assert.ErrorIs(t, err, ErrHandlerNotFound)
		var notFound *HandlerNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "GetOrder", notFound.MessageType)
	})

	t.Run("middleware abort unwraps to its cause", func(t *testing.T) {
		cause := errors.New("field required")
		err := &MiddlewareAbortedError{Interceptor: "ValidationInterceptor", Reason: "invalid", Err: cause}

		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "ValidationInterceptor")
		assert.Contains(t, err.Error(), "invalid")
	})

	t.Run("handler failure unwraps to the handler's error", func(t *testing.T) {
		cause := errors.New("inventory unavailable")
		err := &HandlerFailedError{MessageType: "CreateOrder", Err: cause}

		assert.ErrorIs(t, err, cause)
	})
}

func TestListenerFailedError(t *testing.T) {
	t.Run("names every failed listener", func(t *testing.T) {
		err := &ListenerFailedError{
			MessageType: "OrderCreated",
			Failures: []ListenerFailure{
				{Listener: "emailListener", Err: errors.New("smtp down")},
				{Listener: "inventoryListener", Err: errors.New("out of stock")},
			},
		}

		assert.Contains(t, err.Error(), "emailListener")
		assert.Contains(t, err.Error(), "inventoryListener")
		assert.Contains(t, err.Error(), "2 of the listeners")
	})

	t.Run("unwraps to each listener error", func(t *testing.T) {
		smtpDown := errors.New("smtp down")
		outOfStock := errors.New("out of stock")
		err := &ListenerFailedError{
			MessageType: "OrderCreated",
			Failures: []ListenerFailure{
				{Listener: "email", Err: smtpDown},
				{Listener: "inventory", Err: outOfStock},
			},
		}

		assert.ErrorIs(t, err, smtpDown)
		assert.ErrorIs(t, err, outOfStock)
	})
}

func TestIsCancellation(t *testing.T) {
	assert.True(t, IsCancellation(context.Canceled))
	assert.True(t, IsCancellation(context.DeadlineExceeded))
	assert.True(t, IsCancellation(fmt.Errorf("dispatch: %w", context.Canceled)))
	assert.False(t, IsCancellation(errors.New("boom")))
	assert.False(t, IsCancellation(nil))
}

func TestSessionContext(t *testing.T) {
	t.Run("round-trips the session identifier", func(t *testing.T) {
		ctx := WithSession(context.Background(), "session-1")

		assert.Equal(t, "session-1", SessionFromContext(ctx))
	})

	t.Run("empty identifiers leave the context untouched", func(t *testing.T) {
		ctx := context.Background()

		assert.Equal(t, ctx, WithSession(ctx, ""))
		assert.Equal(t, "", SessionFromContext(ctx))
	})
}

func TestBaseMessages(t *testing.T) {
	t.Run("constructors assign an id and timestamp", func(t *testing.T) {
		cmd := NewBaseCommand("CreateOrder")

		assert.NotEmpty(t, cmd.GetID())
		assert.False(t, cmd.GetTimestamp().IsZero())
		assert.Equal(t, "CreateOrder", cmd.GetType())
	})

	t.Run("ids are unique per message", func(t *testing.T) {
		a := NewBaseQuery("GetOrder")
		b := NewBaseQuery("GetOrder")

		assert.NotEqual(t, a.GetID(), b.GetID())
	})

	t.Run("correlation id is settable through the pointer receiver", func(t *testing.T) {
		n := NewBaseNotification("OrderCreated")
		n.SetCorrelationID("corr-1")

		assert.Equal(t, "corr-1", n.GetCorrelationID())
	})
}
