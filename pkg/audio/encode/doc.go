// ABOUTME: Audio encoder package for encoding float samples to PCM
// ABOUTME: Provides Encoder interface and the 16-bit PCM implementation
// Package encode provides audio encoders for output sinks.
//
// Supports: PCM (signed 16-bit little-endian)
//
// Encoders write into caller-owned buffers so the streaming loop never
// allocates per iteration. Samples beyond full scale are clamped.
//
// Example:
//
//	encoder, err := encode.NewPCM(audio.KeepAliveFormat(44100))
//	frame := make([]byte, encoder.EncodedLen(len(samples)))
//	n, err := encoder.Encode(frame, samples)
package encode
