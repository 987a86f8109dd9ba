package interceptors

import (
	"context"

	"github.com/quorate/mediate-go/contracts"
	"github.com/quorate/mediate-go/registry"
)

// StatisticsRecorder receives one call per dispatched message. The stats
// package provides the canonical implementation; the interceptor never owns
// counter state itself.
type StatisticsRecorder interface {
	TrackCommand(typeName, sessionID string)
	TrackQuery(typeName, sessionID string)
	TrackNotification(typeName, sessionID string)
}

// StatisticsInterceptor feeds the statistics recorder with the message type
// and the caller's session identity taken from the context. Counting happens
// on the return path: handler failures count as dispatches, but a chain
// aborted by an inner interceptor does not.
type StatisticsInterceptor struct {
	recorder StatisticsRecorder
}

// NewStatisticsInterceptor creates a new statistics interceptor
func NewStatisticsInterceptor(recorder StatisticsRecorder) *StatisticsInterceptor {
	return &StatisticsInterceptor{recorder: recorder}
}

// Intercept implements Interceptor
func (i *StatisticsInterceptor) Intercept(ctx context.Context, msg contracts.Message, next Handler) (interface{}, error) {
	result, err := next.Handle(ctx, msg)
	if err != nil && IsAborted(err) {
		return result, err
	}

	mt := registry.TypeOf(msg)
	sessionID := contracts.SessionFromContext(ctx)

	switch mt.Kind {
	case registry.KindCommand:
		i.recorder.TrackCommand(mt.String(), sessionID)
	case registry.KindQuery:
		i.recorder.TrackQuery(mt.String(), sessionID)
	case registry.KindNotification:
		i.recorder.TrackNotification(mt.String(), sessionID)
	}

	return result, err
}

// Name implements Interceptor
func (i *StatisticsInterceptor) Name() string {
	return "StatisticsInterceptor"
}
