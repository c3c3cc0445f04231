package usecase

import (
	"context"
	"errors"
	"testing"

	"hummatch/internal/domain"
)

func TestResultFinalizerCopiesBestMatch(t *testing.T) {
	t.Parallel()

	clipboard := &fakeClipboard{}
	f := newResultFinalizer(clipboard, newFakeEventSink(), true)

	if !f.Finalize(context.Background(), samplePayload()) {
		t.Fatalf("expected copy")
	}
	if clipboard.text() != "Twinkle Twinkle - Traditional" {
		t.Fatalf("unexpected clipboard text: %q", clipboard.text())
	}
}

func TestResultFinalizerFallsBackToTopMatch(t *testing.T) {
	t.Parallel()

	clipboard := &fakeClipboard{}
	f := newResultFinalizer(clipboard, newFakeEventSink(), true)
	payload := domain.MatchPayload{TopMatches: []domain.MatchEntry{{Title: " Ode to Joy ", Artist: ""}}}

	if !f.Finalize(context.Background(), payload) {
		t.Fatalf("expected copy")
	}
	if clipboard.text() != "Ode to Joy" {
		t.Fatalf("unexpected clipboard text: %q", clipboard.text())
	}
}

func TestResultFinalizerSkipsEmptyPayload(t *testing.T) {
	t.Parallel()

	clipboard := &fakeClipboard{}
	f := newResultFinalizer(clipboard, newFakeEventSink(), true)
	if f.Finalize(context.Background(), domain.MatchPayload{}) {
		t.Fatalf("nothing to copy")
	}
	if clipboard.text() != "" {
		t.Fatalf("clipboard written for empty payload")
	}
}

func TestResultFinalizerDisabled(t *testing.T) {
	t.Parallel()

	clipboard := &fakeClipboard{}
	if newResultFinalizer(clipboard, newFakeEventSink(), false).Finalize(context.Background(), samplePayload()) {
		t.Fatalf("disabled finalizer copied")
	}
	if newResultFinalizer(nil, newFakeEventSink(), true).Finalize(context.Background(), samplePayload()) {
		t.Fatalf("finalizer without clipboard copied")
	}
}

func TestResultFinalizerClipboardFailure(t *testing.T) {
	t.Parallel()

	events := newFakeEventSink()
	f := newResultFinalizer(&fakeClipboard{err: errors.New("clipboard")}, events, true)

	if f.Finalize(context.Background(), samplePayload()) {
		t.Fatalf("expected copied=false")
	}
	errs := events.snapshotErrors()
	if len(errs) != 1 || errs[0].code != domain.ErrorCodeClipboard {
		t.Fatalf("expected clipboard error event, got %+v", errs)
	}
}
