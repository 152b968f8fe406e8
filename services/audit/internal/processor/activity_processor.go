package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jobconsole/common/telemetry"
	"jobconsole/services/audit/internal/config"
	"jobconsole/services/audit/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrInvalidActivity marks messages that can never be stored; redelivery
// will not help.
var ErrInvalidActivity = errors.New("invalid activity")

type ActivityStore interface {
	InsertActivity(ctx context.Context, activity *models.Activity) error
}

type ActivityProcessor struct {
	logger  *zap.Logger
	store   ActivityStore
	tracer  trace.Tracer
	timeout time.Duration
}

func NewActivityProcessor(logger *zap.Logger, store ActivityStore, config *config.Config) *ActivityProcessor {
	return &ActivityProcessor{
		logger:  logger,
		store:   store,
		tracer:  telemetry.GetTracer("jobconsole/audit/processor"),
		timeout: config.InsertTimeout,
	}
}

func (p *ActivityProcessor) ProcessActivity(ctx context.Context, rawData []byte) error {
	ctx, span := p.tracer.Start(ctx, "ProcessActivity")
	defer span.End()

	activity, err := ParseActivity(rawData)
	if err != nil {
		span.RecordError(err)
		p.logger.Warn("Dropping malformed activity", zap.Error(err))
		return err
	}
	span.SetAttributes(
		telemetry.String("activity.id", activity.ID),
		telemetry.String("activity.kind", activity.Kind),
	)

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.store.InsertActivity(ctx, activity); err != nil {
		span.RecordError(err)
		p.logger.Error("Failed to store activity",
			zap.String("id", activity.ID),
			zap.Error(err))
		return fmt.Errorf("store activity: %w", err)
	}

	p.logger.Debug("Stored activity",
		zap.String("id", activity.ID),
		zap.String("kind", activity.Kind),
		zap.String("job_id", activity.JobID))
	return nil
}

// ParseActivity decodes and checks one console.activity message.
func ParseActivity(rawData []byte) (*models.Activity, error) {
	var activity models.Activity
	if err := json.Unmarshal(rawData, &activity); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidActivity, err)
	}

	if activity.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidActivity)
	}
	if _, err := uuid.Parse(activity.ID); err != nil {
		return nil, fmt.Errorf("%w: id %q is not a uuid", ErrInvalidActivity, activity.ID)
	}
	if activity.Kind == "" {
		return nil, fmt.Errorf("%w: missing kind", ErrInvalidActivity)
	}
	if !models.KnownKind(activity.Kind) {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidActivity, activity.Kind)
	}
	if models.JobScoped(activity.Kind) && activity.JobID == "" {
		return nil, fmt.Errorf("%w: %s without jobId", ErrInvalidActivity, activity.Kind)
	}
	if activity.OccurredAt.IsZero() {
		activity.OccurredAt = time.Now()
	}
	activity.OccurredAt = activity.OccurredAt.UTC()
	return &activity, nil
}

type clickHouseStore struct {
	db clickhouse.Conn
}

func NewClickHouseStore(db clickhouse.Conn) ActivityStore {
	return &clickHouseStore{db: db}
}

func (s *clickHouseStore) InsertActivity(ctx context.Context, activity *models.Activity) error {
	query := `
		INSERT INTO console_activity (
			id, kind, job_id, status, session_id, occurred_at
		) VALUES (
			?, ?, ?, ?, ?, ?
		)
	`

	id, err := uuid.Parse(activity.ID)
	if err != nil {
		return fmt.Errorf("parse activity id: %w", err)
	}

	if err := s.db.Exec(ctx, query,
		id,
		activity.Kind,
		activity.JobID,
		activity.Status,
		activity.SessionID,
		activity.OccurredAt,
	); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}
