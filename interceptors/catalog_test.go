package interceptors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorate/mediate-go/contracts"
	"github.com/quorate/mediate-go/registry"
)

// Test message types
type PingCommand struct {
	contracts.BaseCommand
}

type PingQuery struct {
	contracts.BaseQuery
}

type PingNotification struct {
	contracts.BaseNotification
}

func tracingInterceptor(name string, log *[]string) Interceptor {
	return NewInterceptorFunc(name, func(ctx context.Context, msg contracts.Message, next Handler) (interface{}, error) {
		*log = append(*log, "before:"+name)
		result, err := next.Handle(ctx, msg)
		*log = append(*log, "after:"+name)
		return result, err
	})
}

func terminal(result interface{}) Handler {
	return HandlerFunc(func(ctx context.Context, msg contracts.Message) (interface{}, error) {
		return result, nil
	})
}

func names(regs []Registration) []string {
	out := make([]string, 0, len(regs))
	for _, reg := range regs {
		out = append(out, reg.Interceptor.Name())
	}
	return out
}

func TestCatalogRegister(t *testing.T) {
	t.Run("rejects nil interceptors", func(t *testing.T) {
		catalog := NewCatalog()

		err := catalog.Register(nil)

		assert.Error(t, err)
	})

	t.Run("defaults to order zero and no constraint", func(t *testing.T) {
		catalog := NewCatalog()
		var log []string

		require.NoError(t, catalog.Register(tracingInterceptor("a", &log)))

		regs := catalog.Registrations()
		require.Len(t, regs, 1)
		assert.Equal(t, OrderDefault, regs[0].Order)
		assert.True(t, regs[0].Constraint.Matches(registry.TypeOf(&PingCommand{})))
	})

	t.Run("fails after the catalog is finalized", func(t *testing.T) {
		catalog := NewCatalog()
		var log []string
		catalog.Finalize()

		err := catalog.Register(tracingInterceptor("late", &log))

		assert.Error(t, err)
	})
}

func TestCatalogOrdering(t *testing.T) {
	t.Run("sorts by ascending order value", func(t *testing.T) {
		catalog := NewCatalog()
		var log []string
		require.NoError(t, catalog.Register(tracingInterceptor("second", &log), WithOrder(10)))
		require.NoError(t, catalog.Register(tracingInterceptor("first", &log), WithOrder(-10)))
		require.NoError(t, catalog.Register(tracingInterceptor("third", &log), WithOrder(20)))

		catalog.Finalize()

		assert.Equal(t, []string{"first", "second", "third"}, names(catalog.Registrations()))
	})

	t.Run("equal orders keep registration order", func(t *testing.T) {
		catalog := NewCatalog()
		var log []string
		require.NoError(t, catalog.Register(tracingInterceptor("a", &log), WithOrder(5)))
		require.NoError(t, catalog.Register(tracingInterceptor("b", &log), WithOrder(5)))
		require.NoError(t, catalog.Register(tracingInterceptor("c", &log), WithOrder(5)))

		catalog.Finalize()

		assert.Equal(t, []string{"a", "b", "c"}, names(catalog.Registrations()))
	})

	t.Run("first and last sentinels bracket ordinary orders", func(t *testing.T) {
		catalog := NewCatalog()
		var log []string
		require.NoError(t, catalog.Register(tracingInterceptor("middle", &log), WithOrder(0)))
		require.NoError(t, catalog.Register(tracingInterceptor("closing", &log), WithOrder(OrderLast)))
		require.NoError(t, catalog.Register(tracingInterceptor("opening", &log), WithOrder(OrderFirst)))

		catalog.Finalize()

		assert.Equal(t, []string{"opening", "middle", "closing"}, names(catalog.Registrations()))
	})

	t.Run("interceptors sharing a sentinel keep registration order", func(t *testing.T) {
		catalog := NewCatalog()
		var log []string
		require.NoError(t, catalog.Register(tracingInterceptor("first-a", &log), WithOrder(OrderFirst)))
		require.NoError(t, catalog.Register(tracingInterceptor("first-b", &log), WithOrder(OrderFirst)))

		catalog.Finalize()

		assert.Equal(t, []string{"first-a", "first-b"}, names(catalog.Registrations()))
	})
}

func TestCatalogSelect(t *testing.T) {
	t.Run("filters registrations by constraint", func(t *testing.T) {
		catalog := NewCatalog()
		var log []string
		require.NoError(t, catalog.Register(tracingInterceptor("everything", &log)))
		require.NoError(t, catalog.Register(tracingInterceptor("commands-only", &log),
			WithConstraint(OfKind(registry.KindCommand))))

		forCommand := catalog.Select(registry.TypeOf(&PingCommand{}))
		forQuery := catalog.Select(registry.TypeOf(&PingQuery{}))

		assert.Equal(t, []string{"everything", "commands-only"}, names(forCommand))
		assert.Equal(t, []string{"everything"}, names(forQuery))
	})
}

func TestCatalogBuild(t *testing.T) {
	t.Run("returns the terminal when nothing matches", func(t *testing.T) {
		catalog := NewCatalog()

		pipeline := catalog.Build(registry.TypeOf(&PingCommand{}), terminal("done"))

		result, err := pipeline.Handle(context.Background(), &PingCommand{})
		require.NoError(t, err)
		assert.Equal(t, "done", result)
	})

	t.Run("executes interceptors in resolved order around the terminal", func(t *testing.T) {
		catalog := NewCatalog()
		var log []string
		require.NoError(t, catalog.Register(tracingInterceptor("inner", &log), WithOrder(10)))
		require.NoError(t, catalog.Register(tracingInterceptor("outer", &log), WithOrder(-10)))

		pipeline := catalog.Build(registry.TypeOf(&PingCommand{}), terminal("done"))
		result, err := pipeline.Handle(context.Background(), &PingCommand{})

		require.NoError(t, err)
		assert.Equal(t, "done", result)
		assert.Equal(t, []string{"before:outer", "before:inner", "after:inner", "after:outer"}, log)
	})

	t.Run("finalizes the catalog on first build", func(t *testing.T) {
		catalog := NewCatalog()

		catalog.Build(registry.TypeOf(&PingCommand{}), terminal(nil))

		assert.True(t, catalog.Finalized())
	})

	t.Run("interceptors can transform the result", func(t *testing.T) {
		catalog := NewCatalog()
		doubler := NewInterceptorFunc("doubler", func(ctx context.Context, msg contracts.Message, next Handler) (interface{}, error) {
			result, err := next.Handle(ctx, msg)
			if err != nil {
				return nil, err
			}
			return result.(int) * 2, nil
		})
		require.NoError(t, catalog.Register(doubler))

		pipeline := catalog.Build(registry.TypeOf(&PingQuery{}), terminal(21))
		result, err := pipeline.Handle(context.Background(), &PingQuery{})

		require.NoError(t, err)
		assert.Equal(t, 42, result)
	})

	t.Run("an aborting interceptor keeps the terminal from running", func(t *testing.T) {
		catalog := NewCatalog()
		aborter := NewInterceptorFunc("aborter", func(ctx context.Context, msg contracts.Message, next Handler) (interface{}, error) {
			return nil, Abort("aborter", "not today")
		})
		require.NoError(t, catalog.Register(aborter))

		ran := false
		pipeline := catalog.Build(registry.TypeOf(&PingCommand{}), HandlerFunc(func(ctx context.Context, msg contracts.Message) (interface{}, error) {
			ran = true
			return nil, nil
		}))
		_, err := pipeline.Handle(context.Background(), &PingCommand{})

		assert.ErrorIs(t, err, contracts.ErrMiddlewareAborted)
		assert.True(t, IsAborted(err))
		assert.False(t, ran)
	})
}

func TestFormatOrder(t *testing.T) {
	assert.Equal(t, "first", FormatOrder(OrderFirst))
	assert.Equal(t, "last", FormatOrder(OrderLast))
	assert.Equal(t, "0", FormatOrder(0))
	assert.Equal(t, "-100", FormatOrder(-100))
}
