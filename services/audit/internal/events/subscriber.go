package events

import (
	"context"
	"errors"
	"fmt"

	"jobconsole/common/telemetry"
	"jobconsole/services/audit/internal/config"
	"jobconsole/services/audit/internal/processor"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const ActivitySubject = "console.activity"

// Processor stores one raw activity message.
type Processor interface {
	ProcessActivity(ctx context.Context, rawData []byte) error
}

type Handler struct {
	logger     *zap.Logger
	nc         *nats.Conn
	tracer     trace.Tracer
	processor  Processor
	queueGroup string
	sub        *nats.Subscription
}

func NewHandler(logger *zap.Logger, nc *nats.Conn, cfg *config.Config, activityProcessor *processor.ActivityProcessor) *Handler {
	return &Handler{
		logger:     logger,
		nc:         nc,
		tracer:     telemetry.GetTracer("jobconsole/audit/events"),
		processor:  activityProcessor,
		queueGroup: cfg.QueueGroup,
	}
}

func (h *Handler) RegisterSubscriptions(lc fx.Lifecycle) error {
	sub, err := h.nc.QueueSubscribe(ActivitySubject, h.queueGroup, h.handleActivity)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", ActivitySubject, err)
	}

	h.sub = sub
	h.logger.Info("Registered NATS subscriptions",
		zap.String("subject", ActivitySubject),
		zap.String("queue", h.queueGroup))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return h.sub.Drain()
		},
	})

	return nil
}

func (h *Handler) handleActivity(msg *nats.Msg) {
	ctx, span := h.tracer.Start(context.Background(), "handleActivity")
	defer span.End()
	span.SetAttributes(telemetry.String("messaging.subject", msg.Subject))

	err := h.processor.ProcessActivity(ctx, msg.Data)
	switch {
	case errors.Is(err, processor.ErrInvalidActivity):
		// already logged by the processor
	case err != nil:
		h.logger.Error("Failed to process activity",
			zap.Error(err),
			zap.String("subject", msg.Subject),
		)
	default:
		h.logger.Debug("Processed activity", zap.String("subject", msg.Subject))
	}
}
