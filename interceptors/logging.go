package interceptors

import (
	"context"
	"log/slog"
	"time"

	"github.com/quorate/mediate-go/contracts"
)

// LoggingInterceptor logs message processing
type LoggingInterceptor struct {
	logger *slog.Logger
}

// NewLoggingInterceptor creates a new logging interceptor
func NewLoggingInterceptor(logger *slog.Logger) *LoggingInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return &LoggingInterceptor{logger: logger}
}

// Intercept implements Interceptor
func (i *LoggingInterceptor) Intercept(ctx context.Context, msg contracts.Message, next Handler) (interface{}, error) {
	start := time.Now()

	i.logger.Info("processing message",
		"messageId", msg.GetID(),
		"messageType", msg.GetType(),
		"correlationId", msg.GetCorrelationID(),
	)

	result, err := next.Handle(ctx, msg)
	duration := time.Since(start)

	switch {
	case err == nil:
		i.logger.Info("message processed successfully",
			"messageId", msg.GetID(),
			"messageType", msg.GetType(),
			"duration", duration,
		)
	case contracts.IsCancellation(err):
		i.logger.Warn("message processing cancelled",
			"messageId", msg.GetID(),
			"messageType", msg.GetType(),
			"duration", duration,
		)
	case IsAborted(err):
		i.logger.Warn("message processing aborted",
			"messageId", msg.GetID(),
			"messageType", msg.GetType(),
			"duration", duration,
			"reason", err,
		)
	default:
		i.logger.Error("message processing failed",
			"messageId", msg.GetID(),
			"messageType", msg.GetType(),
			"duration", duration,
			"error", err,
		)
	}

	return result, err
}

// Name implements Interceptor
func (i *LoggingInterceptor) Name() string {
	return "LoggingInterceptor"
}
