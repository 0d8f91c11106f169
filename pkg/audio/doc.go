// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format and the 16-bit little-endian sample codec
// Package audio provides the PCM format description and sample conversions used
// by the keep-alive stream.
//
// The stream is always signed 16-bit little-endian mono. Samples are produced as
// float64 values in [-1, 1] and converted with:
//   - SampleToInt16 / SampleFromInt16: float ↔ int16 (round and clamp)
//   - PutInt16LE / Int16LE: int16 ↔ two little-endian bytes
//
// Example:
//
//	format := audio.KeepAliveFormat(44100)
//	buf := make([]byte, format.FrameSize())
//	audio.PutInt16LE(buf, audio.SampleToInt16(0.25))
package audio
