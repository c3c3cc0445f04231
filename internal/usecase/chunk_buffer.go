package usecase

import (
	"sync"

	"hummatch/internal/domain"
)

// chunkBuffer accumulates captured fragments in arrival order.
type chunkBuffer struct {
	mu     sync.Mutex
	chunks [][]byte
	size   int
	sealed bool
}

func newChunkBuffer() *chunkBuffer {
	return &chunkBuffer{}
}

// Append copies chunk into the buffer. It reports false once the buffer is sealed.
func (b *chunkBuffer) Append(chunk []byte) bool {
	if len(chunk) == 0 {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sealed {
		return false
	}
	b.chunks = append(b.chunks, append([]byte(nil), chunk...))
	b.size += len(chunk)
	return true
}

func (b *chunkBuffer) Stats() (chunks int, size int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.chunks), b.size
}

// Seal stops accepting chunks and returns them joined into one slice.
func (b *chunkBuffer) Seal() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sealed = true

	out := make([]byte, 0, b.size)
	for _, chunk := range b.chunks {
		out = append(out, chunk...)
	}
	return out
}

// Discard seals the buffer and drops everything captured.
func (b *chunkBuffer) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sealed = true
	b.chunks = nil
	b.size = 0
}

func artifactFromChunks(data []byte, format recordingFormat, elapsed int) domain.Artifact {
	return domain.Artifact{
		Data:       data,
		MediaType:  domain.MediaTypeWAV,
		SampleRate: format.sampleRate,
		Channels:   format.channels,
		BitDepth:   16,
		Duration:   elapsed,
	}
}
