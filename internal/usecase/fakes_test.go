package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"hummatch/internal/domain"
	"hummatch/internal/ports"
)

type fakeAudioCapture struct {
	mu       sync.Mutex
	sessions []ports.AudioSession
	err      error
	calls    int
}

func (f *fakeAudioCapture) Start(_ context.Context, _ ports.AudioConfig) (ports.AudioSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.sessions) == 0 {
		return nil, errors.New("no audio session configured")
	}
	session := f.sessions[0]
	f.sessions = f.sessions[1:]
	return session, nil
}

// fakeAudioSession delivers its chunks and then blocks like a live microphone
// until Stop is called.
type fakeAudioSession struct {
	mu        sync.Mutex
	chunks    [][]byte
	index     int
	stopCalls int
	stopErr   error

	stopped  chan struct{}
	stopOnce sync.Once
	drained  chan struct{}
	drainOne sync.Once
}

func newFakeAudioSession(chunks ...[]byte) *fakeAudioSession {
	return &fakeAudioSession{
		chunks:  chunks,
		stopped: make(chan struct{}),
		drained: make(chan struct{}),
	}
}

func (f *fakeAudioSession) Read(p []byte) (int, error) {
	f.mu.Lock()
	if f.index < len(f.chunks) {
		n := copy(p, f.chunks[f.index])
		if n < len(f.chunks[f.index]) {
			f.chunks[f.index] = f.chunks[f.index][n:]
		} else {
			f.index++
		}
		f.mu.Unlock()
		return n, nil
	}
	f.mu.Unlock()

	f.drainOne.Do(func() { close(f.drained) })
	<-f.stopped
	return 0, io.EOF
}

func (f *fakeAudioSession) Close() error { return f.Stop() }

func (f *fakeAudioSession) Stop() error {
	f.mu.Lock()
	f.stopCalls++
	f.mu.Unlock()
	f.stopOnce.Do(func() { close(f.stopped) })
	return f.stopErr
}

func (f *fakeAudioSession) stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopCalls
}

// failingAudioSession delivers its chunks and then fails like a lost device.
type failingAudioSession struct {
	mu        sync.Mutex
	chunks    [][]byte
	err       error
	stopCalls int
}

func (f *failingAudioSession) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.chunks) > 0 {
		n := copy(p, f.chunks[0])
		f.chunks = f.chunks[1:]
		return n, nil
	}
	return 0, f.err
}

func (f *failingAudioSession) Close() error { return f.Stop() }

func (f *failingAudioSession) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
	return nil
}

func (f *failingAudioSession) stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopCalls
}

type manualTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }

func (m *manualTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *manualTicker) isStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// fire delivers one tick; it reports false when nobody is listening.
func (m *manualTicker) fire() bool {
	select {
	case m.ch <- time.Now():
		return true
	case <-time.After(100 * time.Millisecond):
		return false
	}
}

type fakeRecognitionClient struct {
	mu sync.Mutex

	payload   domain.MatchPayload
	uploadErr error
	release   chan struct{}
	uploads   int

	liveErr  error
	liveWait time.Duration
	count    int
	countErr error
}

func (f *fakeRecognitionClient) UploadAudio(ctx context.Context, _ domain.Artifact) (domain.MatchPayload, error) {
	f.mu.Lock()
	f.uploads++
	release := f.release
	payload, err := f.payload, f.uploadErr
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return domain.MatchPayload{}, ctx.Err()
		}
	}
	return payload, err
}

func (f *fakeRecognitionClient) FetchCatalogSize(_ context.Context) (int, error) {
	return f.count, f.countErr
}

func (f *fakeRecognitionClient) ProbeLiveness(ctx context.Context) error {
	if f.liveWait > 0 {
		select {
		case <-time.After(f.liveWait):
		case <-ctx.Done():
			return &domain.NetworkError{Op: "health", Err: ctx.Err()}
		}
	}
	return f.liveErr
}

func (f *fakeRecognitionClient) uploadCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads
}

type fakeClipboard struct {
	mu       sync.Mutex
	lastText string
	err      error
}

func (f *fakeClipboard) SetText(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastText = text
	return f.err
}

func (f *fakeClipboard) text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastText
}

type fakeEventSink struct {
	mu sync.Mutex

	states   []stateEvent
	ticks    chan int
	analyses []domain.AnalysisRequest
	statuses []domain.ServiceStatus
	errors   []errEvent
}

type stateEvent struct {
	state  domain.RecordingState
	reason domain.RecordingReason
}

type errEvent struct {
	code   domain.ErrorCode
	detail string
}

func newFakeEventSink() *fakeEventSink {
	return &fakeEventSink{ticks: make(chan int, 64)}
}

func (f *fakeEventSink) RecordingStateChanged(status domain.RecordingStatus, reason domain.RecordingReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, stateEvent{state: status.State, reason: reason})
}

func (f *fakeEventSink) RecordingTick(elapsed int) {
	f.ticks <- elapsed
}

func (f *fakeEventSink) AnalysisChanged(request domain.AnalysisRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyses = append(f.analyses, request)
}

func (f *fakeEventSink) ServiceStatusChanged(status domain.ServiceStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
}

func (f *fakeEventSink) SessionError(code domain.ErrorCode, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, errEvent{code: code, detail: detail})
}

func (f *fakeEventSink) snapshotStates() []stateEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]stateEvent, len(f.states))
	copy(out, f.states)
	return out
}

func (f *fakeEventSink) snapshotErrors() []errEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]errEvent, len(f.errors))
	copy(out, f.errors)
	return out
}

func (f *fakeEventSink) snapshotAnalyses() []domain.AnalysisRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.AnalysisRequest, len(f.analyses))
	copy(out, f.analyses)
	return out
}
