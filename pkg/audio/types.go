// ABOUTME: Audio type definitions
// ABOUTME: Defines the PCM stream format and 16-bit sample conversions
package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// 16-bit signed sample range
	MaxInt16 = 32767
	MinInt16 = -32768

	// FullScale is the float-to-integer scale factor for 16-bit output
	FullScale = 32767.0
)

// Encoding identifies the sample encoding of a PCM stream
type Encoding string

const (
	EncodingPCMSigned Encoding = "pcm_signed"
)

// Format describes audio stream format
type Format struct {
	Encoding     Encoding
	SampleRate   int
	Channels     int
	BitDepth     int
	LittleEndian bool
}

// KeepAliveFormat is the only format the keep-alive stream is produced in:
// signed 16-bit little-endian mono.
func KeepAliveFormat(sampleRate int) Format {
	return Format{
		Encoding:     EncodingPCMSigned,
		SampleRate:   sampleRate,
		Channels:     1,
		BitDepth:     16,
		LittleEndian: true,
	}
}

// FrameSize returns the number of bytes per frame (all channels of one sample)
func (f Format) FrameSize() int {
	return f.Channels * f.BitDepth / 8
}

// Validate checks that f describes a stream this package can encode
func (f Format) Validate() error {
	if f.Encoding != EncodingPCMSigned {
		return fmt.Errorf("unsupported encoding: %q", f.Encoding)
	}
	if f.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("invalid channel count: %d", f.Channels)
	}
	if f.BitDepth != 16 {
		return fmt.Errorf("unsupported bit depth: %d (supported: 16)", f.BitDepth)
	}
	if !f.LittleEndian {
		return fmt.Errorf("unsupported byte order: big-endian")
	}
	return nil
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch/%d-bit %s LE", f.SampleRate, f.Channels, f.BitDepth, f.Encoding)
}

// SampleToInt16 converts a float sample in [-1, 1] to a 16-bit value.
// Out-of-range input is clamped, never wrapped.
func SampleToInt16(sample float64) int16 {
	scaled := math.Round(sample * FullScale)
	if scaled > MaxInt16 {
		return MaxInt16
	}
	if scaled < MinInt16 {
		return MinInt16
	}
	if math.IsNaN(scaled) {
		return 0
	}
	return int16(scaled)
}

// SampleFromInt16 converts a 16-bit value back to a float sample
func SampleFromInt16(sample int16) float64 {
	return float64(sample) / FullScale
}

// PutInt16LE writes sample into the first two bytes of b, low byte first
func PutInt16LE(b []byte, sample int16) {
	binary.LittleEndian.PutUint16(b, uint16(sample))
}

// Int16LE reads a little-endian 16-bit sample from the first two bytes of b
func Int16LE(b []byte) int16 {
	return int16(binary.LittleEndian.Uint16(b))
}
