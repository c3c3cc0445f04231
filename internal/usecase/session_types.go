package usecase

import (
	"sync"
	"time"

	"hummatch/internal/ports"
)

type recordingFormat struct {
	sampleRate int
	channels   int
}

// recordingSession is the single live capture attempt owned by Recorder.
type recordingSession struct {
	id        string
	startedAt time.Time
	cancel    func()
	audio     ports.AudioSession
	chunks    *chunkBuffer

	ticker   ports.Ticker
	tickStop chan struct{}
	tickDone chan struct{}
	pumpDone chan struct{}
	pumpErr  error

	mu       sync.Mutex
	elapsed  int
	ticking  bool
	stopping bool

	stopTickOnce sync.Once
	releaseOnce  sync.Once
	releaseErr   error
}

func newRecordingSession(id string, startedAt time.Time, cancel func(), audio ports.AudioSession, ticker ports.Ticker) *recordingSession {
	return &recordingSession{
		id:        id,
		startedAt: startedAt,
		cancel:    cancel,
		audio:     audio,
		chunks:    newChunkBuffer(),
		ticker:    ticker,
		tickStop:  make(chan struct{}),
		tickDone:  make(chan struct{}),
		pumpDone:  make(chan struct{}),
		ticking:   true,
	}
}

// tick advances the elapsed counter; it reports false once ticking stopped.
func (s *recordingSession) tick() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ticking {
		return s.elapsed, false
	}
	s.elapsed++
	return s.elapsed, true
}

func (s *recordingSession) elapsedSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// stopTicking freezes elapsed and waits for the tick goroutine to exit.
func (s *recordingSession) stopTicking() {
	s.stopTickOnce.Do(func() {
		s.mu.Lock()
		s.ticking = false
		s.mu.Unlock()

		s.ticker.Stop()
		close(s.tickStop)
	})
	<-s.tickDone
}

// markStopping reports whether this call claimed the session for shutdown.
func (s *recordingSession) markStopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping {
		return false
	}
	s.stopping = true
	return true
}

func (s *recordingSession) isStopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopping
}

// release stops the capture device exactly once.
func (s *recordingSession) release() error {
	s.releaseOnce.Do(func() {
		s.releaseErr = s.audio.Stop()
	})
	return s.releaseErr
}
