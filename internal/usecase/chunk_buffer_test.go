package usecase

import (
	"bytes"
	"testing"

	"hummatch/internal/domain"
)

func TestChunkBufferKeepsOrderAndCopies(t *testing.T) {
	t.Parallel()

	b := newChunkBuffer()
	chunk := []byte("abc")
	b.Append(chunk)
	chunk[0] = 'z'
	b.Append([]byte("de"))
	b.Append(nil)

	if n, size := b.Stats(); n != 2 || size != 5 {
		t.Fatalf("unexpected stats %d/%d", n, size)
	}
	if got := b.Seal(); !bytes.Equal(got, []byte("abcde")) {
		t.Fatalf("unexpected data %q", got)
	}
}

func TestChunkBufferRejectsAfterSeal(t *testing.T) {
	t.Parallel()

	b := newChunkBuffer()
	b.Append([]byte("a"))
	b.Seal()
	if b.Append([]byte("b")) {
		t.Fatalf("append accepted after seal")
	}
	if _, size := b.Stats(); size != 1 {
		t.Fatalf("sealed buffer grew to %d", size)
	}
}

func TestChunkBufferDiscard(t *testing.T) {
	t.Parallel()

	b := newChunkBuffer()
	b.Append([]byte("abc"))
	b.Discard()
	if n, size := b.Stats(); n != 0 || size != 0 {
		t.Fatalf("discard kept %d/%d", n, size)
	}
	if b.Append([]byte("x")) {
		t.Fatalf("append accepted after discard")
	}
}

func TestArtifactFromChunks(t *testing.T) {
	t.Parallel()

	a := artifactFromChunks([]byte{1, 2}, recordingFormat{sampleRate: 44100, channels: 2}, 4)
	if a.MediaType != domain.MediaTypeWAV || a.SampleRate != 44100 || a.Channels != 2 || a.BitDepth != 16 || a.Duration != 4 || a.Size() != 2 {
		t.Fatalf("unexpected artifact: %+v", a)
	}
}
