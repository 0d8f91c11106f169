// ABOUTME: Audio output interface definition
// ABOUTME: Common interface, error kinds and backend selection for audio sinks
package output

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Resonate-Protocol/keepalive-go/pkg/audio"
	"go.uber.org/zap"
)

var (
	// ErrSinkUnavailable reports that the device could not be opened or started
	ErrSinkUnavailable = errors.New("audio sink unavailable")

	// ErrSinkBroken reports that a started sink stopped accepting data
	ErrSinkBroken = errors.New("audio sink broken")
)

// Output represents an audio output device
type Output interface {
	// Open negotiates format with the device. The device must accept the
	// format exactly; anything else is ErrSinkUnavailable.
	Open(format audio.Format) error

	// Start begins playback; writes are accepted afterwards
	Start() error

	// Write outputs one buffer of encoded frames (blocks until accepted)
	Write(frame []byte) error

	// Close releases output resources. Safe to call more than once and on
	// a sink that was never opened.
	Close() error
}

// Backend names accepted by New
const (
	BackendOto       = "oto"
	BackendMalgo     = "malgo"
	BackendALSA      = "alsa"
	BackendPortAudio = "portaudio"
)

var constructors = map[string]func(*zap.Logger) Output{
	BackendOto:       NewOto,
	BackendMalgo:     NewMalgo,
	BackendALSA:      NewALSA,
	BackendPortAudio: NewPortAudio,
}

// Backends returns the names of all known backends
func Backends() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the output for backend
func New(backend string, logger *zap.Logger) (Output, error) {
	ctor, ok := constructors[backend]
	if !ok {
		return nil, fmt.Errorf("unknown audio backend %q (available: %v)", backend, Backends())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return ctor(logger.With(zap.String("backend", backend))), nil
}

// unavailable wraps err as ErrSinkUnavailable with context
func unavailable(msg string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrSinkUnavailable, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrSinkUnavailable, msg, err)
}

// broken wraps err as ErrSinkBroken with context
func broken(msg string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrSinkBroken, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrSinkBroken, msg, err)
}

// checkFormat rejects formats the keep-alive backends cannot play verbatim
func checkFormat(format audio.Format) error {
	if err := format.Validate(); err != nil {
		return unavailable("unsupported format", err)
	}
	return nil
}
