package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"hummatch/internal/domain"
	"hummatch/internal/ports"
)

var (
	ErrNoActiveSession   = errors.New("no active recording session")
	ErrRecordingActive   = errors.New("a recording is already in progress")
	ErrInvalidTransition = errors.New("invalid recorder transition")
)

// recorderTransitions is the capture state machine.
var recorderTransitions = map[domain.RecordingState][]domain.RecordingState{
	domain.RecordingStateIdle:       {domain.RecordingStateRecording},
	domain.RecordingStateRecording:  {domain.RecordingStateFinalizing},
	domain.RecordingStateFinalizing: {domain.RecordingStateIdle},
}

func canTransition(from, to domain.RecordingState) bool {
	for _, next := range recorderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RecorderConfig controls microphone capture.
type RecorderConfig struct {
	Audio        ports.AudioConfig
	ChunkSize    int
	TickInterval time.Duration

	// NewTicker and Now default to the wall clock.
	NewTicker func(time.Duration) ports.Ticker
	Now       func() time.Time
}

// Recorder owns the microphone capture state machine. At most one
// recording session exists at a time.
type Recorder struct {
	capture ports.AudioCapture
	events  ports.EventSink
	log     *zap.Logger
	cfg     RecorderConfig

	// opMu serializes Start/Stop/Abort and device-loss handling.
	opMu sync.Mutex

	mu      sync.Mutex
	state   domain.RecordingState
	current *recordingSession
}

func NewRecorder(capture ports.AudioCapture, events ports.EventSink, log *zap.Logger, cfg RecorderConfig) *Recorder {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = newTimeTicker
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{
		capture: capture,
		events:  events,
		log:     log.Named("recorder"),
		cfg:     cfg,
		state:   domain.RecordingStateIdle,
	}
}

// Start opens the microphone and begins a recording session.
func (r *Recorder) Start(ctx context.Context) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	if r.State() != domain.RecordingStateIdle {
		return ErrRecordingActive
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	audioSession, err := r.capture.Start(sessionCtx, r.cfg.Audio)
	if err != nil {
		cancel()
		err = classifyCaptureError(err)
		code := domain.ErrorCodeDeviceUnavailable
		if errors.Is(err, domain.ErrPermissionDenied) {
			code = domain.ErrorCodePermissionDenied
		}
		r.log.Warn("capture device refused", zap.Error(err))
		r.events.SessionError(code, err.Error())
		return err
	}

	session := newRecordingSession(uuid.NewString(), r.cfg.Now(), cancel, audioSession, r.cfg.NewTicker(r.cfg.TickInterval))

	r.mu.Lock()
	if err := r.transitionLocked(domain.RecordingStateRecording); err != nil {
		r.mu.Unlock()
		_ = audioSession.Stop()
		cancel()
		return err
	}
	r.current = session
	r.mu.Unlock()

	go r.runTicker(session)
	go r.runPump(session)

	r.log.Info("recording started", zap.String("session", session.id))
	r.events.RecordingStateChanged(r.Status(), domain.RecordingReasonStarted)
	return nil
}

// Stop ends the active recording and returns the finished artifact. Calling
// Stop while idle is a no-op and reports ok=false.
func (r *Recorder) Stop() (artifact domain.Artifact, ok bool) {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	session := r.active()
	if session == nil || !session.markStopping() {
		return domain.Artifact{}, false
	}

	session.stopTicking()
	r.moveTo(domain.RecordingStateFinalizing, domain.RecordingReasonFinalizing)

	if err := session.release(); err != nil {
		r.log.Warn("capture device did not stop cleanly", zap.String("session", session.id), zap.Error(err))
		r.events.SessionError(domain.ErrorCodeAudioStop, "failed to stop audio capture cleanly")
	}
	<-session.pumpDone

	artifact = artifactFromChunks(session.chunks.Seal(), r.format(), session.elapsedSeconds())
	r.finish(session, domain.RecordingReasonStopped)

	r.log.Info("recording finished",
		zap.String("session", session.id),
		zap.Int("seconds", artifact.Duration),
		zap.String("size", humanize.Bytes(uint64(artifact.Size()))),
	)
	return artifact, true
}

// Abort discards an in-progress recording.
func (r *Recorder) Abort() error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	session := r.active()
	if session == nil || !session.markStopping() {
		return ErrNoActiveSession
	}

	session.stopTicking()
	r.moveTo(domain.RecordingStateFinalizing, domain.RecordingReasonFinalizing)
	_ = session.release()
	<-session.pumpDone
	session.chunks.Discard()
	r.finish(session, domain.RecordingReasonDiscarded)

	r.log.Info("recording discarded", zap.String("session", session.id))
	return nil
}

// State returns the current capture state.
func (r *Recorder) State() domain.RecordingState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Status returns a snapshot of the recorder.
func (r *Recorder) Status() domain.RecordingStatus {
	r.mu.Lock()
	state, session := r.state, r.current
	r.mu.Unlock()

	status := domain.RecordingStatus{State: state}
	if session == nil {
		return status
	}
	status.SessionID = session.id
	status.StartedAt = session.startedAt
	status.ElapsedSeconds = session.elapsedSeconds()
	status.Chunks, status.Bytes = session.chunks.Stats()
	return status
}

func (r *Recorder) runTicker(session *recordingSession) {
	defer close(session.tickDone)

	for {
		select {
		case <-session.tickStop:
			return
		case <-session.ticker.C():
			elapsed, ok := session.tick()
			if !ok {
				return
			}
			r.events.RecordingTick(elapsed)
		}
	}
}

func (r *Recorder) runPump(session *recordingSession) {
	session.pumpErr = pumpAudioChunks(session.audio, session.chunks, r.cfg.ChunkSize)
	close(session.pumpDone)

	if session.isStopping() {
		return
	}
	r.handleDeviceLoss(session)
}

// handleDeviceLoss ends a session whose device stopped delivering audio
// while still recording. Captured audio is discarded.
func (r *Recorder) handleDeviceLoss(session *recordingSession) {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	if r.active() != session || !session.markStopping() {
		return
	}

	session.stopTicking()
	r.moveTo(domain.RecordingStateFinalizing, domain.RecordingReasonFinalizing)
	_ = session.release()
	session.chunks.Discard()

	detail := "audio capture ended unexpectedly"
	if session.pumpErr != nil {
		detail = fmt.Sprintf("audio capture error: %v", session.pumpErr)
	}
	r.log.Error("capture device lost", zap.String("session", session.id), zap.NamedError("cause", session.pumpErr))
	r.events.SessionError(domain.ErrorCodeAudioStream, detail)
	r.finish(session, domain.RecordingReasonDeviceLost)
}

func (r *Recorder) active() *recordingSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Recorder) transitionLocked(to domain.RecordingState) error {
	if !canTransition(r.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.state, to)
	}
	r.state = to
	return nil
}

func (r *Recorder) moveTo(to domain.RecordingState, reason domain.RecordingReason) {
	r.mu.Lock()
	err := r.transitionLocked(to)
	r.mu.Unlock()
	if err != nil {
		r.log.Error("recorder state machine violated", zap.Error(err))
		return
	}
	r.events.RecordingStateChanged(r.Status(), reason)
}

func (r *Recorder) finish(session *recordingSession, reason domain.RecordingReason) {
	session.cancel()

	r.mu.Lock()
	if err := r.transitionLocked(domain.RecordingStateIdle); err != nil {
		r.log.Error("recorder state machine violated", zap.Error(err))
		r.state = domain.RecordingStateIdle
	}
	if r.current == session {
		r.current = nil
	}
	r.mu.Unlock()

	r.events.RecordingStateChanged(domain.RecordingStatus{
		State:          domain.RecordingStateIdle,
		SessionID:      session.id,
		StartedAt:      session.startedAt,
		ElapsedSeconds: session.elapsedSeconds(),
	}, reason)
}

func (r *Recorder) format() recordingFormat {
	format := recordingFormat{sampleRate: r.cfg.Audio.SampleRate, channels: r.cfg.Audio.Channels}
	if format.sampleRate <= 0 {
		format.sampleRate = 16000
	}
	if format.channels <= 0 {
		format.channels = 1
	}
	return format
}

// classifyCaptureError guarantees capture failures match the error taxonomy.
func classifyCaptureError(err error) error {
	if errors.Is(err, domain.ErrPermissionDenied) || errors.Is(err, domain.ErrDeviceUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, err)
}
