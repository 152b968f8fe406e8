package notify

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestQueueDrain(t *testing.T) {
	var q Queue
	q.NotifySuccess("saved")
	q.NotifyError("failed")

	items := q.Drain()
	if len(items) != 2 || items[0].Kind != KindSuccess || items[1].Message != "failed" {
		t.Fatalf("items = %+v", items)
	}
	if len(q.Drain()) != 0 {
		t.Fatal("second drain should be empty")
	}
}

func TestWithLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	var q Queue
	r := WithLogging(&q, zap.New(core))

	r.NotifyError("Job not found")

	if len(q.Items) != 1 {
		t.Fatalf("queue = %+v", q.Items)
	}
	entries := logs.FilterMessage("notify error").All()
	if len(entries) != 1 || entries[0].ContextMap()["message"] != "Job not found" {
		t.Fatalf("entries = %+v", entries)
	}
}
