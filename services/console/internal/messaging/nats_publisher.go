package messaging

import (
	"context"
	"encoding/json"
	"time"

	"jobconsole/common/telemetry"
	"jobconsole/services/console/internal/config"
	"jobconsole/services/console/internal/errors"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobconsole/console/messaging")

const (
	ActivitySubject = "console.activity"
)

type Kind string

const (
	KindJobCreated       Kind = "job.created"
	KindJobUpdated       Kind = "job.updated"
	KindJobDeleted       Kind = "job.deleted"
	KindJobStatusChanged Kind = "job.status_changed"
	KindPasswordReset    Kind = "password.reset"
)

// Activity records one mutation the console completed against the backend.
type Activity struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	JobID      string    `json:"jobId,omitempty"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	SessionID  string    `json:"sessionId,omitempty"`
}

type Publisher interface {
	PublishActivity(ctx context.Context, activity Activity) error
	Close()
}

type natsPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

// NewPublisher connects to NATS. Without a NATS_URL activity is only logged.
func NewPublisher(logger *zap.Logger, config *config.Config) (Publisher, error) {
	if config.NATSURL == "" {
		logger.Info("NATS_URL not set, activity events disabled")
		return &logPublisher{logger: logger}, nil
	}

	opts := []nats.Option{
		nats.Name(config.ServiceName),
		nats.Timeout(config.NATSConnTimeout),
		nats.ReconnectWait(time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	}

	conn, err := nats.Connect(config.NATSURL, opts...)
	if err != nil {
		return nil, errors.Unavailable("connecting to NATS", err)
	}

	return &natsPublisher{
		conn:   conn,
		logger: logger,
	}, nil
}

func (p *natsPublisher) PublishActivity(ctx context.Context, activity Activity) error {
	_, span := tracer.Start(ctx, "PublishActivity")
	defer span.End()

	data, err := json.Marshal(activity)
	if err != nil {
		span.RecordError(err)
		return errors.Internal("marshaling activity", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", ActivitySubject),
		telemetry.String("activity.kind", string(activity.Kind)),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.conn.Publish(ActivitySubject, data); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish activity",
			zap.String("id", activity.ID),
			zap.String("kind", string(activity.Kind)),
			zap.Error(err))
		return errors.Unavailable("publishing to NATS", err)
	}

	p.logger.Debug("published activity",
		zap.String("id", activity.ID),
		zap.String("kind", string(activity.Kind)),
		zap.String("subject", ActivitySubject))
	return nil
}

func (p *natsPublisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("failed to drain NATS connection", zap.Error(err))
		p.conn.Close()
	}
}

type logPublisher struct {
	logger *zap.Logger
}

func (p *logPublisher) PublishActivity(ctx context.Context, activity Activity) error {
	p.logger.Debug("activity",
		zap.String("id", activity.ID),
		zap.String("kind", string(activity.Kind)),
		zap.String("job_id", activity.JobID))
	return nil
}

func (p *logPublisher) Close() {}
