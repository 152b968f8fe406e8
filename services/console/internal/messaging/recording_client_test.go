package messaging

import (
	"context"
	"fmt"
	"testing"
	"time"

	"jobconsole/services/console/internal/config"
	"jobconsole/services/console/internal/errors"
	"jobconsole/services/console/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type stubBackend struct {
	err      error
	resetRes *models.PasswordResetResponse
}

func (s *stubBackend) ListDepartments(ctx context.Context) ([]models.Department, error) {
	return nil, s.err
}

func (s *stubBackend) ListJobs(ctx context.Context) ([]models.JobPosting, error) {
	return nil, s.err
}

func (s *stubBackend) CreateJob(ctx context.Context, payload models.JobPayload) (*models.JobPosting, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.JobPosting{ID: "new", Title: payload.Title, Status: models.StatusDraft}, nil
}

func (s *stubBackend) UpdateJob(ctx context.Context, id string, payload models.JobPayload) (*models.JobPosting, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.JobPosting{ID: id, Title: payload.Title, Status: models.StatusActive}, nil
}

func (s *stubBackend) DeleteJob(ctx context.Context, id string) error {
	return s.err
}

func (s *stubBackend) UpdateJobStatus(ctx context.Context, id string, status models.Status) (*models.JobPosting, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.JobPosting{ID: id, Status: status}, nil
}

func (s *stubBackend) ResetPassword(ctx context.Context, req models.PasswordResetRequest) (*models.PasswordResetResponse, error) {
	return s.resetRes, s.err
}

type capturePublisher struct {
	events []Activity
	err    error
}

func (p *capturePublisher) PublishActivity(ctx context.Context, activity Activity) error {
	p.events = append(p.events, activity)
	return p.err
}

func (p *capturePublisher) Close() {}

func TestRecordsSuccessfulMutations(t *testing.T) {
	pub := &capturePublisher{}
	backend := &stubBackend{resetRes: &models.PasswordResetResponse{Success: true}}
	client := NewRecordingClient(backend, pub, zaptest.NewLogger(t))
	client.(*recordingClient).now = func() time.Time {
		return time.Date(2026, 10, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	}
	ctx := WithSession(context.Background(), "sess-1")

	client.CreateJob(ctx, models.JobPayload{Title: "Engineer"})
	client.UpdateJob(ctx, "j1", models.JobPayload{Title: "Engineer"})
	client.UpdateJobStatus(ctx, "j1", models.StatusOnHold)
	client.DeleteJob(ctx, "j1")
	client.ResetPassword(ctx, models.PasswordResetRequest{Token: "t", NewPassword: "p"})
	client.ListJobs(ctx)
	client.ListDepartments(ctx)

	want := []struct {
		kind   Kind
		jobID  string
		status string
	}{
		{KindJobCreated, "new", "draft"},
		{KindJobUpdated, "j1", "active"},
		{KindJobStatusChanged, "j1", "on-hold"},
		{KindJobDeleted, "j1", ""},
		{KindPasswordReset, "", ""},
	}
	if len(pub.events) != len(want) {
		t.Fatalf("events = %+v", pub.events)
	}
	for i, w := range want {
		got := pub.events[i]
		if got.Kind != w.kind || got.JobID != w.jobID || got.Status != w.status {
			t.Errorf("event %d = %+v, want %+v", i, got, w)
		}
		if got.SessionID != "sess-1" {
			t.Errorf("event %d session = %q", i, got.SessionID)
		}
		if _, err := uuid.Parse(got.ID); err != nil {
			t.Errorf("event %d id %q: %v", i, got.ID, err)
		}
		if got.OccurredAt.Location() != time.UTC || got.OccurredAt.Hour() != 11 {
			t.Errorf("event %d occurredAt = %v", i, got.OccurredAt)
		}
	}
}

func TestFailedMutationsAreNotRecorded(t *testing.T) {
	pub := &capturePublisher{}
	backend := &stubBackend{err: errors.Unavailable("down", nil)}
	client := NewRecordingClient(backend, pub, zaptest.NewLogger(t))
	ctx := context.Background()

	client.CreateJob(ctx, models.JobPayload{})
	client.DeleteJob(ctx, "j1")
	client.UpdateJobStatus(ctx, "j1", models.StatusClosed)

	backend.err = nil
	backend.resetRes = &models.PasswordResetResponse{Success: false, Message: "Token expired"}
	client.ResetPassword(ctx, models.PasswordResetRequest{})

	if len(pub.events) != 0 {
		t.Fatalf("events = %+v", pub.events)
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	pub := &capturePublisher{err: fmt.Errorf("nats down")}
	client := NewRecordingClient(&stubBackend{}, pub, zap.New(core))

	if err := client.DeleteJob(context.Background(), "j1"); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if logs.FilterMessage("failed to record activity").Len() != 1 {
		t.Fatalf("logs = %v", logs.All())
	}
}

func TestNewPublisherWithoutURL(t *testing.T) {
	pub, err := NewPublisher(zaptest.NewLogger(t), &config.Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer pub.Close()
	if _, ok := pub.(*logPublisher); !ok {
		t.Fatalf("publisher = %T", pub)
	}
	if err := pub.PublishActivity(context.Background(), Activity{Kind: KindJobDeleted}); err != nil {
		t.Fatal(err)
	}
}

func TestSessionFromContext(t *testing.T) {
	if got := SessionFromContext(context.Background()); got != "" {
		t.Fatalf("got %q", got)
	}
	if got := SessionFromContext(WithSession(context.Background(), "abc")); got != "abc" {
		t.Fatalf("got %q", got)
	}
}
