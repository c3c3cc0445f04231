package usecase

import (
	"errors"
	"io"
	"os"
	"time"

	"hummatch/internal/ports"
)

// pumpAudioChunks copies device reads into chunks until the device ends.
// It returns nil on a clean end of stream.
func pumpAudioChunks(audio ports.AudioSession, chunks *chunkBuffer, chunkSize int) error {
	if chunkSize < 256 {
		chunkSize = 4096
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			chunks.Append(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return err
		}
	}
}

// timeTicker adapts time.Ticker to ports.Ticker.
type timeTicker struct {
	t *time.Ticker
}

func newTimeTicker(d time.Duration) ports.Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }
