package interceptors

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/quorate/mediate-go/contracts"
)

// RateLimitingInterceptor limits message throughput per message type using a
// token bucket. Messages over the limit abort the chain rather than queue.
type RateLimitingInterceptor struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRateLimitingInterceptor creates a new rate limiting interceptor with the
// given sustained rate and burst per message type.
func NewRateLimitingInterceptor(limit rate.Limit, burst int) *RateLimitingInterceptor {
	return &RateLimitingInterceptor{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Intercept implements Interceptor
func (i *RateLimitingInterceptor) Intercept(ctx context.Context, msg contracts.Message, next Handler) (interface{}, error) {
	if !i.limiter(msg.GetType()).Allow() {
		return nil, Abort(i.Name(), "rate limit exceeded for message type "+msg.GetType())
	}

	return next.Handle(ctx, msg)
}

// Name implements Interceptor
func (i *RateLimitingInterceptor) Name() string {
	return "RateLimitingInterceptor"
}

func (i *RateLimitingInterceptor) limiter(messageType string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	l, ok := i.limiters[messageType]
	if !ok {
		l = rate.NewLimiter(i.limit, i.burst)
		i.limiters[messageType] = l
	}
	return l
}
