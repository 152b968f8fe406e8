package models

import "time"

const (
	KindJobCreated       = "job.created"
	KindJobUpdated       = "job.updated"
	KindJobDeleted       = "job.deleted"
	KindJobStatusChanged = "job.status_changed"
	KindPasswordReset    = "password.reset"
)

var knownKinds = map[string]bool{
	KindJobCreated:       true,
	KindJobUpdated:       true,
	KindJobDeleted:       true,
	KindJobStatusChanged: true,
	KindPasswordReset:    true,
}

// Activity is one console mutation as published on console.activity.
type Activity struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	JobID      string    `json:"jobId"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
	SessionID  string    `json:"sessionId"`
}

func KnownKind(kind string) bool {
	return knownKinds[kind]
}

// JobScoped reports whether kind refers to a single job posting.
func JobScoped(kind string) bool {
	return kind != KindPasswordReset && knownKinds[kind]
}
