//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"github.com/Resonate-Protocol/keepalive-go/pkg/audio"
	"go.uber.org/zap"
)

const portAudioDisabled = "PortAudio support not enabled (build with -tags portaudio)"

// PortAudio output implementation (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio output
func NewPortAudio(logger *zap.Logger) Output {
	return &PortAudio{}
}

// Open reports that PortAudio is not compiled in
func (p *PortAudio) Open(format audio.Format) error {
	return unavailable(portAudioDisabled, nil)
}

// Start reports that PortAudio is not compiled in
func (p *PortAudio) Start() error {
	return unavailable(portAudioDisabled, nil)
}

// Write outputs audio samples
func (p *PortAudio) Write(frame []byte) error {
	return broken(portAudioDisabled, nil)
}

// Close releases resources
func (p *PortAudio) Close() error {
	return nil
}
