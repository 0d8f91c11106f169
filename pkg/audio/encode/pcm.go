// ABOUTME: PCM audio encoder
// ABOUTME: Encodes float samples to signed 16-bit little-endian PCM bytes
package encode

import (
	"fmt"

	"github.com/Resonate-Protocol/keepalive-go/pkg/audio"
)

const bytesPerSample = 2

// PCMEncoder encodes PCM audio
type PCMEncoder struct {
	channels int
}

// NewPCM creates a new PCM encoder for format
func NewPCM(format audio.Format) (*PCMEncoder, error) {
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("invalid format for PCM encoder: %w", err)
	}

	return &PCMEncoder{
		channels: format.Channels,
	}, nil
}

// Encode converts samples to 16-bit PCM bytes in dst. Every sample is
// rounded to the nearest step and clamped to the int16 range.
func (e *PCMEncoder) Encode(dst []byte, samples []float64) (int, error) {
	need := e.EncodedLen(len(samples))
	if len(dst) < need {
		return 0, fmt.Errorf("destination too small: %d bytes, need %d", len(dst), need)
	}
	if len(samples)%e.channels != 0 {
		return 0, fmt.Errorf("sample count %d is not a multiple of %d channels", len(samples), e.channels)
	}

	for i, sample := range samples {
		audio.PutInt16LE(dst[i*bytesPerSample:], audio.SampleToInt16(sample))
	}

	return need, nil
}

// EncodedLen returns the number of bytes n samples occupy
func (e *PCMEncoder) EncodedLen(n int) int {
	return n * bytesPerSample
}

// Close releases resources
func (e *PCMEncoder) Close() error {
	return nil
}
