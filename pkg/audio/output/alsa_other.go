//go:build !linux

// ABOUTME: ALSA stub for non-Linux platforms
// ABOUTME: Reports the sink as unavailable so startup fails cleanly
package output

import (
	"github.com/Resonate-Protocol/keepalive-go/pkg/audio"
	"go.uber.org/zap"
)

// ALSA output implementation (stub)
type ALSA struct{}

// NewALSA creates a new ALSA output
func NewALSA(logger *zap.Logger) Output {
	return &ALSA{}
}

// Open reports that ALSA is unavailable on this platform
func (a *ALSA) Open(format audio.Format) error {
	return unavailable("ALSA output is only available on Linux", nil)
}

// Start reports that ALSA is unavailable on this platform
func (a *ALSA) Start() error {
	return unavailable("ALSA output is only available on Linux", nil)
}

// Write always fails
func (a *ALSA) Write(frame []byte) error {
	return broken("ALSA output is only available on Linux", nil)
}

// Close is a no-op
func (a *ALSA) Close() error {
	return nil
}
