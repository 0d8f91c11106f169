// ABOUTME: Phase-accumulator sine generator
// ABOUTME: Produces successive samples of a fixed tone without drift over long runs
package tone

import (
	"fmt"
	"math"
)

const twoPi = 2 * math.Pi

// Params are the fixed signal parameters of a generator
type Params struct {
	SampleRate float64 // samples per second
	Frequency  float64 // Hz, below SampleRate/2
	Amplitude  float64 // linear, 0 < Amplitude <= 1
}

// Validate checks p against the ranges a keep-alive tone must respect.
// Generators do not call it: an amplitude above 1 is still generated and left
// to the encoder to clamp.
func (p Params) Validate() error {
	if p.SampleRate <= 0 || math.IsNaN(p.SampleRate) || math.IsInf(p.SampleRate, 0) {
		return fmt.Errorf("invalid sample rate: %g", p.SampleRate)
	}
	if p.Frequency <= 0 || p.Frequency >= p.SampleRate/2 {
		return fmt.Errorf("frequency %gHz must be in (0, %gHz)", p.Frequency, p.SampleRate/2)
	}
	if p.Amplitude <= 0 || p.Amplitude > 1 {
		return fmt.Errorf("amplitude %g must be in (0, 1]", p.Amplitude)
	}
	return nil
}

// Increment returns the phase advance per sample in radians
func (p Params) Increment() float64 {
	return twoPi * p.Frequency / p.SampleRate
}

// Period returns the length of one cycle in samples
func (p Params) Period() float64 {
	return p.SampleRate / p.Frequency
}

// Generator is a sine oscillator driven by a wrapped phase accumulator.
// A Generator is not safe for concurrent use; each instance owns its phase.
type Generator struct {
	params    Params
	phase     float64
	increment float64
}

// New creates a generator starting at phase 0
func New(params Params) *Generator {
	// A single subtraction per sample keeps the phase wrapped only while the
	// increment itself lies in [0, 2π).
	increment := math.Mod(params.Increment(), twoPi)
	if increment < 0 {
		increment += twoPi
	}
	if math.IsNaN(increment) {
		increment = 0
	}

	return &Generator{
		params:    params,
		increment: increment,
	}
}

// Next returns Amplitude*sin(phase) for the current phase, then advances the
// phase by one increment. The first sample after New or Reset(0) is always 0.
func (g *Generator) Next() float64 {
	sample := g.params.Amplitude * math.Sin(g.phase)

	g.phase += g.increment
	if g.phase >= twoPi {
		g.phase -= twoPi
	}

	return sample
}

// Fill writes len(samples) successive samples
func (g *Generator) Fill(samples []float64) {
	for i := range samples {
		samples[i] = g.Next()
	}
}

// Reset restarts the sequence from phase, wrapped into [0, 2π)
func (g *Generator) Reset(phase float64) {
	if math.IsNaN(phase) || math.IsInf(phase, 0) {
		phase = 0
	}
	phase = math.Mod(phase, twoPi)
	if phase < 0 {
		phase += twoPi
	}
	if phase >= twoPi {
		phase = 0
	}
	g.phase = phase
}

// Phase returns the phase, in radians, of the sample Next will return
func (g *Generator) Phase() float64 { return g.phase }

// Increment returns the per-sample phase advance in radians
func (g *Generator) Increment() float64 { return g.increment }

// Params returns the generator's signal parameters
func (g *Generator) Params() Params { return g.params }
