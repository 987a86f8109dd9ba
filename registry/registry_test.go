package registry

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorate/mediate-go/contracts"
)

func echoHandler(result interface{}) RequestHandler {
	return RequestHandlerFunc(func(ctx context.Context, req contracts.Message) (interface{}, error) {
		return result, nil
	})
}

func noopListener() NotificationListener {
	return NotificationListenerFunc(func(ctx context.Context, n contracts.Message) error {
		return nil
	})
}

type countingListener struct {
	calls int
}

func (l *countingListener) Handle(ctx context.Context, n contracts.Message) error {
	l.calls++
	return nil
}

type userQueryHandler struct{}

func (userQueryHandler) Handle(ctx context.Context, req contracts.Message) (interface{}, error) {
	return "user", nil
}

func TestRegisterHandler(t *testing.T) {
	t.Run("registers a handler for a query type", func(t *testing.T) {
		reg := NewTypeRegistry()

		err := reg.RegisterHandler(&GetUser{}, echoHandler("user"), ResultValue)

		require.NoError(t, err)
		assert.Equal(t, 1, reg.HandlerCount(TypeOf(&GetUser{})))
	})

	t.Run("rejects nil handlers", func(t *testing.T) {
		reg := NewTypeRegistry()

		err := reg.RegisterHandler(&GetUser{}, nil, ResultValue)

		assert.Error(t, err)
	})

	t.Run("rejects notification prototypes", func(t *testing.T) {
		reg := NewTypeRegistry()

		err := reg.RegisterHandler(&UserCreated{}, echoHandler(nil), ResultValue)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not a command or query")
	})

	t.Run("rejects the stream result kind", func(t *testing.T) {
		reg := NewTypeRegistry()

		err := reg.RegisterHandler(&GetUser{}, echoHandler(nil), ResultStream)

		assert.Error(t, err)
	})

	t.Run("accepts duplicate registrations silently", func(t *testing.T) {
		reg := NewTypeRegistry()

		require.NoError(t, reg.RegisterHandler(&GetUser{}, echoHandler("a"), ResultValue))
		require.NoError(t, reg.RegisterHandler(&GetUser{}, echoHandler("b"), ResultValue))

		assert.Equal(t, 2, reg.HandlerCount(TypeOf(&GetUser{})))
	})
}

func TestResolve(t *testing.T) {
	t.Run("returns the single registered handler", func(t *testing.T) {
		reg := NewTypeRegistry()
		require.NoError(t, reg.RegisterHandler(&GetUser{}, echoHandler("user"), ResultValue))

		desc, err := reg.Resolve(TypeOf(&GetUser{}))

		require.NoError(t, err)
		assert.Equal(t, ResultValue, desc.ResultKind)
		assert.Equal(t, SourceManual, desc.Source)
	})

	t.Run("fails with HandlerNotFound for unregistered types", func(t *testing.T) {
		reg := NewTypeRegistry()

		_, err := reg.Resolve(TypeOf(&GetUser{}))

		assert.ErrorIs(t, err, contracts.ErrHandlerNotFound)
		var notFound *contracts.HandlerNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "GetUser", notFound.MessageType)
	})

	t.Run("fails with AmbiguousHandler when two handlers exist", func(t *testing.T) {
		reg := NewTypeRegistry()
		require.NoError(t, reg.RegisterHandler(&GetUser{}, echoHandler("a"), ResultValue))
		require.NoError(t, reg.RegisterHandler(&GetUser{}, echoHandler("b"), ResultValue))

		_, err := reg.Resolve(TypeOf(&GetUser{}))

		assert.ErrorIs(t, err, contracts.ErrAmbiguousHandler)
		var ambiguous *contracts.AmbiguousHandlerError
		require.ErrorAs(t, err, &ambiguous)
		assert.Equal(t, 2, ambiguous.Count)
	})
}

func TestRegisterHandlerType(t *testing.T) {
	t.Run("materializes instances through the resolver", func(t *testing.T) {
		reg := NewTypeRegistry()
		err := reg.RegisterHandlerType(&GetUser{}, reflect.TypeOf(userQueryHandler{}), ResultValue)
		require.NoError(t, err)

		desc, err := reg.Resolve(TypeOf(&GetUser{}))
		require.NoError(t, err)
		assert.Equal(t, SourceDiscovered, desc.Source)

		handler, err := desc.Request(ZeroValueResolver{})
		require.NoError(t, err)

		result, err := handler.Handle(context.Background(), &GetUser{})
		require.NoError(t, err)
		assert.Equal(t, "user", result)
	})
}

func TestDeclareTypes(t *testing.T) {
	t.Run("declared request types are known without a handler", func(t *testing.T) {
		reg := NewTypeRegistry()

		require.NoError(t, reg.DeclareRequestType(&GetUser{}))

		assert.Len(t, reg.RequestTypes(), 1)
		assert.Equal(t, 0, reg.HandlerCount(TypeOf(&GetUser{})))
	})

	t.Run("declared notification types are known without listeners", func(t *testing.T) {
		reg := NewTypeRegistry()

		require.NoError(t, reg.DeclareNotificationType(&UserCreated{}))

		assert.Len(t, reg.NotificationTypes(), 1)
		assert.Empty(t, reg.ListSubscribers(TypeOf(&UserCreated{})))
	})
}

func TestSubscribe(t *testing.T) {
	t.Run("subscribes a listener for a notification type", func(t *testing.T) {
		reg := NewTypeRegistry()

		err := reg.Subscribe(&UserCreated{}, noopListener())

		require.NoError(t, err)
		assert.Len(t, reg.ListSubscribers(TypeOf(&UserCreated{})), 1)
	})

	t.Run("rejects request prototypes", func(t *testing.T) {
		reg := NewTypeRegistry()

		err := reg.Subscribe(&GetUser{}, noopListener())

		assert.Error(t, err)
	})

	t.Run("subscribing the same listener twice is a no-op", func(t *testing.T) {
		reg := NewTypeRegistry()
		listener := &countingListener{}

		require.NoError(t, reg.Subscribe(&UserCreated{}, listener))
		require.NoError(t, reg.Subscribe(&UserCreated{}, listener))

		assert.Len(t, reg.ListSubscribers(TypeOf(&UserCreated{})), 1)
	})

	t.Run("distinct listeners subscribe independently", func(t *testing.T) {
		reg := NewTypeRegistry()

		require.NoError(t, reg.Subscribe(&UserCreated{}, &countingListener{}))
		require.NoError(t, reg.Subscribe(&UserCreated{}, &countingListener{}))

		assert.Len(t, reg.ListSubscribers(TypeOf(&UserCreated{})), 2)
	})
}

func TestUnsubscribe(t *testing.T) {
	t.Run("removes a subscribed listener", func(t *testing.T) {
		reg := NewTypeRegistry()
		listener := &countingListener{}
		require.NoError(t, reg.Subscribe(&UserCreated{}, listener))

		err := reg.Unsubscribe(&UserCreated{}, listener)

		require.NoError(t, err)
		assert.Empty(t, reg.ListSubscribers(TypeOf(&UserCreated{})))
	})

	t.Run("fails for a listener that is not subscribed", func(t *testing.T) {
		reg := NewTypeRegistry()

		err := reg.Unsubscribe(&UserCreated{}, &countingListener{})

		assert.Error(t, err)
	})

	t.Run("does not remove statically registered listeners", func(t *testing.T) {
		reg := NewTypeRegistry()
		listener := &countingListener{}
		require.NoError(t, reg.RegisterListener(&UserCreated{}, listener))

		err := reg.Unsubscribe(&UserCreated{}, listener)

		assert.Error(t, err)
		assert.Len(t, reg.ListSubscribers(TypeOf(&UserCreated{})), 1)
	})
}

func TestListSubscribers(t *testing.T) {
	t.Run("registered listeners come before runtime subscriptions", func(t *testing.T) {
		reg := NewTypeRegistry()
		registered := &countingListener{}
		subscribed := &countingListener{}

		require.NoError(t, reg.Subscribe(&UserCreated{}, subscribed))
		require.NoError(t, reg.RegisterListener(&UserCreated{}, registered))

		subs := reg.ListSubscribers(TypeOf(&UserCreated{}))
		require.Len(t, subs, 2)
		assert.Equal(t, SourceManual, subs[0].Source)
		assert.Equal(t, SourceSubscribed, subs[1].Source)
	})

	t.Run("returns a snapshot unaffected by later mutation", func(t *testing.T) {
		reg := NewTypeRegistry()
		listener := &countingListener{}
		require.NoError(t, reg.Subscribe(&UserCreated{}, listener))

		subs := reg.ListSubscribers(TypeOf(&UserCreated{}))
		require.NoError(t, reg.Unsubscribe(&UserCreated{}, listener))

		assert.Len(t, subs, 1)
	})
}
