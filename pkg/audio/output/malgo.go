// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Uses miniaudio via malgo; a blocking ring buffer feeds the device callback
package output

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Resonate-Protocol/keepalive-go/pkg/audio"
	"github.com/gen2brain/malgo"
	"go.uber.org/zap"
)

// malgoBufferMs is the ring buffer capacity in milliseconds of audio
const malgoBufferMs = 100

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	logger   *zap.Logger
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	format   audio.Format
	ready    bool

	// Ring buffer for callback-based playback
	ringBuffer *RingBuffer
	stopped    atomic.Bool
	underruns  atomic.Int64
	mu         sync.Mutex
}

// NewMalgo creates a new Malgo output
func NewMalgo(logger *zap.Logger) Output {
	return &Malgo{logger: logger}
}

// Open initializes the playback device with the given format
func (m *Malgo) Open(format audio.Format) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return unavailable("device already open", nil)
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		m.logger.Debug("miniaudio", zap.String("message", message))
	})
	if err != nil {
		return unavailable("failed to initialize malgo context", err)
	}

	frameSize := format.FrameSize()
	capacity := format.SampleRate * malgoBufferMs / 1000 * frameSize
	rb := NewRingBuffer(capacity)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(format.Channels)
	deviceConfig.SampleRate = uint32(format.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSamples []byte, frameCount uint32) {
			want := min(int(frameCount)*frameSize, len(pOutputSample))
			if n := rb.Read(pOutputSample[:want]); n < want {
				m.underruns.Add(1)
			}
		},
		Stop: func() {
			// Device stopped underneath us (unplugged, reconfigured)
			m.stopped.Store(true)
			rb.Close()
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		m.freeContext(ctx)
		return unavailable("failed to initialize playback device", err)
	}

	m.malgoCtx = ctx
	m.device = device
	m.ringBuffer = rb
	m.format = format

	m.logger.Info("audio output initialized",
		zap.Int("sample_rate", format.SampleRate),
		zap.Int("channels", format.Channels),
		zap.String("format", "S16"),
		zap.Int("ring_bytes", capacity))

	return nil
}

// Start starts the device callback
func (m *Malgo) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return unavailable("output not opened", nil)
	}
	if m.ready {
		return nil
	}

	m.stopped.Store(false)
	if err := m.device.Start(); err != nil {
		return unavailable("failed to start device", err)
	}
	m.ready = true

	return nil
}

// Write queues a frame for playback, blocking while the ring buffer is full
func (m *Malgo) Write(frame []byte) error {
	m.mu.Lock()
	rb, ready := m.ringBuffer, m.ready
	m.mu.Unlock()

	if !ready {
		return broken("output not started", nil)
	}

	if _, ok := rb.Write(frame); !ok {
		if m.stopped.Load() {
			return broken("playback device stopped", nil)
		}
		return broken("output closed", nil)
	}

	return nil
}

// Close releases output resources
func (m *Malgo) Close() error {
	// Unblock writers before taking the lock they may be waiting behind
	m.mu.Lock()
	rb := m.ringBuffer
	m.mu.Unlock()
	if rb != nil {
		rb.Close()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		if m.ready {
			if err := m.device.Stop(); err != nil {
				m.logger.Warn("device stop error", zap.Error(err))
			}
		}
		m.device.Uninit()
		m.device = nil
	}
	m.ready = false

	if m.malgoCtx != nil {
		m.freeContext(m.malgoCtx)
		m.malgoCtx = nil
	}

	if n := m.underruns.Load(); n > 0 {
		m.logger.Debug("device callback underruns", zap.Int64("count", n))
	}
	return nil
}

// freeContext uninitializes and frees a malgo context
func (m *Malgo) freeContext(ctx *malgo.AllocatedContext) {
	if err := ctx.Uninit(); err != nil {
		m.logger.Warn("malgo context uninit error", zap.Error(err))
	}
	ctx.Free()
}

// Underruns returns how many device callbacks found the buffer short
func (m *Malgo) Underruns() int64 {
	return m.underruns.Load()
}

func (m *Malgo) String() string {
	return fmt.Sprintf("malgo(%s)", m.format)
}
