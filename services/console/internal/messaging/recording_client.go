package messaging

import (
	"context"
	"time"

	"jobconsole/services/console/internal/api"
	"jobconsole/services/console/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type sessionKey struct{}

// WithSession tags ctx with the browser session performing the request.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

func SessionFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// recordingClient publishes an Activity after every mutation the backend
// accepts. Reads pass straight through.
type recordingClient struct {
	api.BackendClient
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewRecordingClient(next api.BackendClient, publisher Publisher, logger *zap.Logger) api.BackendClient {
	return &recordingClient{
		BackendClient: next,
		publisher:     publisher,
		logger:        logger,
		now:           time.Now,
	}
}

func (c *recordingClient) CreateJob(ctx context.Context, payload models.JobPayload) (*models.JobPosting, error) {
	job, err := c.BackendClient.CreateJob(ctx, payload)
	if err == nil {
		c.record(ctx, KindJobCreated, job.ID, string(job.Status))
	}
	return job, err
}

func (c *recordingClient) UpdateJob(ctx context.Context, id string, payload models.JobPayload) (*models.JobPosting, error) {
	job, err := c.BackendClient.UpdateJob(ctx, id, payload)
	if err == nil {
		c.record(ctx, KindJobUpdated, id, string(job.Status))
	}
	return job, err
}

func (c *recordingClient) DeleteJob(ctx context.Context, id string) error {
	err := c.BackendClient.DeleteJob(ctx, id)
	if err == nil {
		c.record(ctx, KindJobDeleted, id, "")
	}
	return err
}

func (c *recordingClient) UpdateJobStatus(ctx context.Context, id string, status models.Status) (*models.JobPosting, error) {
	job, err := c.BackendClient.UpdateJobStatus(ctx, id, status)
	if err == nil {
		c.record(ctx, KindJobStatusChanged, id, string(job.Status))
	}
	return job, err
}

func (c *recordingClient) ResetPassword(ctx context.Context, req models.PasswordResetRequest) (*models.PasswordResetResponse, error) {
	resp, err := c.BackendClient.ResetPassword(ctx, req)
	if err == nil && resp.Success {
		c.record(ctx, KindPasswordReset, "", "")
	}
	return resp, err
}

// record never fails the mutation it describes; publish errors are logged.
func (c *recordingClient) record(ctx context.Context, kind Kind, jobID, status string) {
	activity := Activity{
		ID:         uuid.NewString(),
		Kind:       kind,
		JobID:      jobID,
		Status:     status,
		OccurredAt: c.now().UTC(),
		SessionID:  SessionFromContext(ctx),
	}
	if err := c.publisher.PublishActivity(ctx, activity); err != nil {
		c.logger.Warn("failed to record activity",
			zap.String("kind", string(kind)),
			zap.String("job_id", jobID),
			zap.Error(err))
	}
}
