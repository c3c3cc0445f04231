package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"hummatch/internal/domain"
	"hummatch/internal/ports"
)

// startupProbe is how long ffmpeg must survive before the device counts as open.
const startupProbe = 250 * time.Millisecond

var permissionMarkers = []string{
	"permission denied",
	"access denied",
	"not authorized",
	"operation not permitted",
}

// FFMPEGCapture streams microphone PCM audio (s16le) using ffmpeg.
type FFMPEGCapture struct {
	command string
	log     *zap.Logger
}

func NewFFMPEGCapture(command string, log *zap.Logger) *FFMPEGCapture {
	if command == "" {
		command = "ffmpeg"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FFMPEGCapture{command: command, log: log.Named("capture")}
}

func (c *FFMPEGCapture) Start(ctx context.Context, cfg ports.AudioConfig) (ports.AudioSession, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-f", "s16le",
		"-",
	}

	cmd := exec.CommandContext(ctx, c.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	// The read end stays ours so reaping ffmpeg never discards unread PCM.
	stdout, stdoutWriter, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create ffmpeg stdout pipe: %v", domain.ErrDeviceUnavailable, err)
	}
	cmd.Stdout = stdoutWriter
	if err := cmd.Start(); err != nil {
		_ = stdout.Close()
		_ = stdoutWriter.Close()
		if errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("%w: failed to start ffmpeg: %v", domain.ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("%w: failed to start ffmpeg: %v", domain.ErrDeviceUnavailable, err)
	}
	_ = stdoutWriter.Close()

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	select {
	case err := <-waitErr:
		detail := stringsTrimSpaceSafe(stderr.String())
		cause := classifyStartFailure(detail)
		_ = stdout.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: ffmpeg exited before capture started: %v: %s", cause, err, detail)
		}
		return nil, fmt.Errorf("%w: ffmpeg exited before capture started", cause)
	case <-time.After(startupProbe):
	}

	c.log.Debug("capture device opened",
		zap.String("format", cfg.InputFormat),
		zap.String("device", cfg.InputDevice),
		zap.Int("sampleRate", cfg.SampleRate),
		zap.Int("channels", cfg.Channels),
	)

	return &ffmpegSession{
		stdout:  stdout,
		stderr:  &stderr,
		process: cmd.Process,
		waitErr: waitErr,
	}, nil
}

// classifyStartFailure maps ffmpeg diagnostics onto the capture error taxonomy.
func classifyStartFailure(stderr string) error {
	lowered := strings.ToLower(stderr)
	for _, marker := range permissionMarkers {
		if strings.Contains(lowered, marker) {
			return domain.ErrPermissionDenied
		}
	}
	return domain.ErrDeviceUnavailable
}

type ffmpegSession struct {
	stdout *os.File
	stderr *bytes.Buffer

	process *os.Process
	waitErr <-chan error

	stopOnce  sync.Once
	stopErr   error
	closeOnce sync.Once
	closeErr  error
}

// Read returns everything ffmpeg wrote, including what it flushes after Stop,
// and io.EOF once the process has exited.
func (s *ffmpegSession) Read(p []byte) (int, error) {
	n, err := s.stdout.Read(p)
	if errors.Is(err, io.EOF) {
		_ = s.closeStdout()
	}
	return n, err
}

// Close stops ffmpeg and drops any audio not yet read.
func (s *ffmpegSession) Close() error {
	err := s.Stop()
	if closeErr := s.closeStdout(); err == nil {
		err = closeErr
	}
	return err
}

// Stop asks ffmpeg to finish and reaps it. Output already in flight stays
// readable until EOF.
func (s *ffmpegSession) Stop() error {
	s.stopOnce.Do(func() {
		if s.process != nil {
			_ = s.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-s.waitErr:
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		case <-time.After(1200 * time.Millisecond):
			if s.process != nil {
				_ = s.process.Kill()
			}
			err, ok := <-s.waitErr
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
			// A killed capture may leave descendants holding the pipe open.
			if closeErr := s.closeStdout(); closeErr != nil && s.stopErr == nil {
				s.stopErr = closeErr
			}
		}

		if s.stopErr != nil && s.stderr != nil && s.stderr.Len() > 0 {
			s.stopErr = fmt.Errorf("%w: %s", s.stopErr, stringsTrimSpaceSafe(s.stderr.String()))
		}
	})

	return s.stopErr
}

func (s *ffmpegSession) closeStdout() error {
	s.closeOnce.Do(func() {
		if err := s.stdout.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			s.closeErr = err
		}
	})
	return s.closeErr
}

func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func stringsTrimSpaceSafe(input string) string {
	if input == "" {
		return input
	}
	return string(bytes.TrimSpace([]byte(input)))
}
