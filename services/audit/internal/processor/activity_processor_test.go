package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"jobconsole/services/audit/internal/config"
	"jobconsole/services/audit/internal/models"

	"go.uber.org/zap/zaptest"
)

const activityID = "5f0c6f5e-3a9b-4c57-9b59-4b1f3f1e2a10"

type memoryStore struct {
	inserted []*models.Activity
	err      error
}

func (s *memoryStore) InsertActivity(ctx context.Context, activity *models.Activity) error {
	if s.err != nil {
		return s.err
	}
	s.inserted = append(s.inserted, activity)
	return nil
}

func TestParseActivity(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid job event", `{"id":"` + activityID + `","kind":"job.status_changed","jobId":"j1","status":"active","occurredAt":"2026-10-01T10:00:00+02:00"}`, false},
		{"valid reset event", `{"id":"` + activityID + `","kind":"password.reset","occurredAt":"2026-10-01T10:00:00Z"}`, false},
		{"not json", `job.created`, true},
		{"missing id", `{"kind":"job.created","jobId":"j1"}`, true},
		{"bad id", `{"id":"42","kind":"job.created","jobId":"j1"}`, true},
		{"missing kind", `{"id":"` + activityID + `","jobId":"j1"}`, true},
		{"unknown kind", `{"id":"` + activityID + `","kind":"job.archived","jobId":"j1"}`, true},
		{"job event without job", `{"id":"` + activityID + `","kind":"job.deleted"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			activity, err := ParseActivity([]byte(tt.raw))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidActivity) {
					t.Fatalf("err = %v, want ErrInvalidActivity", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if activity.OccurredAt.Location() != time.UTC {
				t.Errorf("occurredAt not normalised to UTC: %v", activity.OccurredAt)
			}
		})
	}
}

func TestParseActivityConvertsToUTC(t *testing.T) {
	activity, err := ParseActivity([]byte(`{"id":"` + activityID + `","kind":"job.created","jobId":"j1","occurredAt":"2026-10-01T10:00:00+02:00"}`))
	if err != nil {
		t.Fatal(err)
	}
	if activity.OccurredAt.Hour() != 8 {
		t.Fatalf("occurredAt = %v", activity.OccurredAt)
	}
}

func TestProcessActivityStores(t *testing.T) {
	store := &memoryStore{}
	p := NewActivityProcessor(zaptest.NewLogger(t), store, &config.Config{InsertTimeout: time.Second})

	raw := []byte(`{"id":"` + activityID + `","kind":"job.created","jobId":"j1","status":"draft","sessionId":"s1","occurredAt":"2026-10-01T10:00:00Z"}`)
	if err := p.ProcessActivity(context.Background(), raw); err != nil {
		t.Fatal(err)
	}
	if len(store.inserted) != 1 || store.inserted[0].JobID != "j1" || store.inserted[0].SessionID != "s1" {
		t.Fatalf("inserted = %+v", store.inserted)
	}
}

func TestProcessActivityErrors(t *testing.T) {
	store := &memoryStore{}
	p := NewActivityProcessor(zaptest.NewLogger(t), store, &config.Config{})

	if err := p.ProcessActivity(context.Background(), []byte(`{}`)); !errors.Is(err, ErrInvalidActivity) {
		t.Fatalf("err = %v", err)
	}

	store.err = errors.New("clickhouse down")
	raw := []byte(`{"id":"` + activityID + `","kind":"password.reset"}`)
	err := p.ProcessActivity(context.Background(), raw)
	if err == nil || errors.Is(err, ErrInvalidActivity) {
		t.Fatalf("err = %v, want store failure", err)
	}
}
