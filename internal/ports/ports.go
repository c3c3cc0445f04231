package ports

import (
	"context"
	"io"
	"time"

	"hummatch/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture opens the microphone. Start fails with an error wrapping
// domain.ErrPermissionDenied or domain.ErrDeviceUnavailable.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// Ticker delivers recording ticks.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RecognitionClient talks to the humming recognition service.
type RecognitionClient interface {
	UploadAudio(ctx context.Context, artifact domain.Artifact) (domain.MatchPayload, error)
	FetchCatalogSize(ctx context.Context) (int, error)
	ProbeLiveness(ctx context.Context) error
}

// Clipboard writes text into the system clipboard.
type Clipboard interface {
	SetText(ctx context.Context, text string) error
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	RecordingStateChanged(status domain.RecordingStatus, reason domain.RecordingReason)
	RecordingTick(elapsedSeconds int)
	AnalysisChanged(request domain.AnalysisRequest)
	ServiceStatusChanged(status domain.ServiceStatus)
	SessionError(code domain.ErrorCode, detail string)
}
