// ABOUTME: Tone generation package
// ABOUTME: Provides the phase-accumulator sine Generator used by the keep-alive stream
// Package tone generates a fixed-frequency sine wave sample by sample.
//
// The phase is kept in [0, 2π) by subtracting 2π whenever it wraps, so precision
// does not degrade no matter how long the generator runs.
//
// Example:
//
//	gen := tone.New(tone.Params{SampleRate: 44100, Frequency: 22000, Amplitude: 0.00005})
//	first := gen.Next() // 0: samples are taken before the phase advances
package tone
