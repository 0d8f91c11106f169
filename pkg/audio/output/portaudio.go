//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform audio output using PortAudio's blocking stream API
package output

import (
	"errors"
	"sync"

	"github.com/Resonate-Protocol/keepalive-go/pkg/audio"
	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

// portAudioFrames is the number of frames per blocking write
const portAudioFrames = 1024

// PortAudio output implementation
type PortAudio struct {
	logger      *zap.Logger
	stream      *portaudio.Stream
	buffer      []int16
	chunker     *sampleChunker
	initialized bool
	started     bool
	mu          sync.Mutex
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio(logger *zap.Logger) Output {
	return &PortAudio{logger: logger}
}

// Open initializes PortAudio and opens a blocking output stream
func (p *PortAudio) Open(format audio.Format) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream != nil {
		return unavailable("stream already open", nil)
	}

	if err := portaudio.Initialize(); err != nil {
		return unavailable("failed to initialize portaudio", err)
	}

	// A buffer pointer instead of a callback selects the blocking API
	p.buffer = make([]int16, portAudioFrames*format.Channels)
	stream, err := portaudio.OpenDefaultStream(0, format.Channels, float64(format.SampleRate), portAudioFrames, &p.buffer)
	if err != nil {
		portaudio.Terminate()
		return unavailable("failed to open stream", err)
	}

	p.stream = stream
	p.chunker = newSampleChunker(p.buffer)
	p.initialized = true

	p.logger.Info("audio output initialized",
		zap.Int("sample_rate", format.SampleRate),
		zap.Int("channels", format.Channels),
		zap.Int("frames_per_buffer", portAudioFrames))

	return nil
}

// Start starts the stream
func (p *PortAudio) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return unavailable("output not opened", nil)
	}
	if p.started {
		return nil
	}
	if err := p.stream.Start(); err != nil {
		return unavailable("failed to start stream", err)
	}
	p.started = true
	return nil
}

// Write queues a frame and plays it in stream-buffer sized chunks; each chunk
// blocks until PortAudio has room for it. A trailing partial chunk waits for
// the next Write.
func (p *PortAudio) Write(frame []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return broken("output not started", nil)
	}

	return p.chunker.push(frame, func() error {
		if err := p.stream.Write(); err != nil && !errors.Is(err, portaudio.OutputUnderflowed) {
			return broken("stream write failed", err)
		}
		return nil
	})
}

// Close releases resources
func (p *PortAudio) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream != nil {
		if p.started {
			if err := p.stream.Stop(); err != nil {
				p.logger.Warn("stream stop error", zap.Error(err))
			}
		}
		if err := p.stream.Close(); err != nil {
			p.logger.Warn("stream close error", zap.Error(err))
		}
		p.stream = nil
	}
	p.started = false
	if p.chunker != nil {
		p.chunker.reset()
	}

	if p.initialized {
		p.initialized = false
		return portaudio.Terminate()
	}
	return nil
}
