package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"hummatch/internal/domain"
)

func TestStatusMonitorReachableWithCatalog(t *testing.T) {
	t.Parallel()

	events := newFakeEventSink()
	monitor := NewStatusMonitor(&fakeRecognitionClient{count: 42}, events, nil, time.Second)

	status := monitor.Run(context.Background())
	if !status.Reachable || status.CatalogSize != 42 || !status.Checked {
		t.Fatalf("unexpected status: %+v", status)
	}

	events.mu.Lock()
	statuses := append([]domain.ServiceStatus(nil), events.statuses...)
	events.mu.Unlock()
	if len(statuses) != 3 {
		t.Fatalf("expected an event per probe plus completion, got %d", len(statuses))
	}
	if last := statuses[len(statuses)-1]; last != status {
		t.Fatalf("last event %+v does not match status %+v", last, status)
	}
}

func TestStatusMonitorLivenessFailure(t *testing.T) {
	t.Parallel()

	client := &fakeRecognitionClient{count: 5, liveErr: &domain.ServiceError{Message: "Health check failed", StatusCode: 503}}
	monitor := NewStatusMonitor(client, newFakeEventSink(), nil, time.Second)

	status := monitor.Run(context.Background())
	if status.Reachable {
		t.Fatalf("expected unreachable service")
	}
	if status.CatalogSize != 5 {
		t.Fatalf("catalog probe is independent of liveness, got %d", status.CatalogSize)
	}
}

func TestStatusMonitorCatalogFailureReportsZero(t *testing.T) {
	t.Parallel()

	client := &fakeRecognitionClient{count: 9, countErr: errors.New("Failed to fetch songs")}
	monitor := NewStatusMonitor(client, newFakeEventSink(), nil, time.Second)

	status := monitor.Run(context.Background())
	if !status.Reachable || status.CatalogSize != 0 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestStatusMonitorProbesOnce(t *testing.T) {
	t.Parallel()

	client := &fakeRecognitionClient{count: 1}
	events := newFakeEventSink()
	monitor := NewStatusMonitor(client, events, nil, time.Second)

	first := monitor.Run(context.Background())
	client.count = 100
	second := monitor.Run(context.Background())
	if first != second || second.CatalogSize != 1 {
		t.Fatalf("second run should reuse the first result: %+v vs %+v", first, second)
	}

	events.mu.Lock()
	n := len(events.statuses)
	events.mu.Unlock()
	if n != 3 {
		t.Fatalf("expected no events from second run, got %d total", n)
	}
}

func TestStatusMonitorTimeoutMarksUnreachable(t *testing.T) {
	t.Parallel()

	client := &fakeRecognitionClient{count: 3, liveWait: time.Minute}
	monitor := NewStatusMonitor(client, newFakeEventSink(), nil, 20*time.Millisecond)

	start := time.Now()
	status := monitor.Run(context.Background())
	if time.Since(start) > 5*time.Second {
		t.Fatalf("probe did not honor its timeout")
	}
	if status.Reachable || !status.Checked {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestStatusMonitorStatusBeforeRun(t *testing.T) {
	t.Parallel()

	monitor := NewStatusMonitor(&fakeRecognitionClient{}, newFakeEventSink(), nil, 0)
	if status := monitor.Status(); status.Checked || status.Reachable {
		t.Fatalf("expected zero status before run, got %+v", status)
	}
}
