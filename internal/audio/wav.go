package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"

	"hummatch/internal/domain"
)

const pcmBitDepth = 16

// EncodeWAV renders a PCM artifact as a RIFF/WAVE file. The encoder needs a
// seekable writer to patch chunk sizes, so the container is staged in a temp
// file under dir (os.TempDir when empty) and read back.
func EncodeWAV(artifact domain.Artifact, dir string) ([]byte, error) {
	if artifact.Empty() {
		return nil, domain.ErrEmptyArtifact
	}
	sampleRate, channels := artifact.SampleRate, artifact.Channels
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	if channels <= 0 {
		channels = 1
	}

	f, err := os.CreateTemp(dir, "hummatch-"+uuid.NewString()+"-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create wav staging file: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, pcmBitDepth, channels, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           pcmToInts(artifact.Data),
		SourceBitDepth: pcmBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("failed to encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize wav: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind wav staging file: %w", err)
	}
	return io.ReadAll(f)
}

// LoadWAV reads a WAV file from disk into a 16-bit PCM artifact.
func LoadWAV(path string) (domain.Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Artifact{}, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return domain.Artifact{}, fmt.Errorf("%s: not a valid WAV file", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("failed to read samples from %s: %w", path, err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return domain.Artifact{}, fmt.Errorf("%s: %w", path, domain.ErrEmptyArtifact)
	}

	sampleRate := int(decoder.SampleRate)
	channels := int(decoder.NumChans)
	if channels <= 0 {
		return domain.Artifact{}, errors.New("wav file reports zero channels")
	}

	data := intsToPCM(buf.Data, int(decoder.BitDepth))
	frames := len(buf.Data) / channels
	duration := 0
	if sampleRate > 0 {
		duration = frames / sampleRate
	}

	return domain.Artifact{
		Data:       data,
		MediaType:  domain.MediaTypeWAV,
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   pcmBitDepth,
		Duration:   duration,
	}, nil
}

// pcmToInts decodes s16le samples; a trailing odd byte is dropped.
func pcmToInts(data []byte) []int {
	out := make([]int, len(data)/2)
	for i := range out {
		out[i] = int(int16(binary.LittleEndian.Uint16(data[i*2:])))
	}
	return out
}

// intsToPCM re-quantizes decoded samples of sourceDepth bits to s16le.
func intsToPCM(samples []int, sourceDepth int) []byte {
	shift := sourceDepth - pcmBitDepth
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if sourceDepth == 8 {
			// 8-bit WAV is unsigned.
			s -= 128
		}
		switch {
		case shift > 0:
			s >>= shift
		case shift < 0:
			s <<= -shift
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s)))
	}
	return out
}
