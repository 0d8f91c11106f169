// ABOUTME: Streaming driver feeding the tone generator into an audio sink
// ABOUTME: Opens the sink once, then fills, encodes and writes buffers until failure or shutdown
package stream

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/keepalive-go/internal/metrics"
	"github.com/Resonate-Protocol/keepalive-go/pkg/audio"
	"github.com/Resonate-Protocol/keepalive-go/pkg/audio/encode"
	"github.com/Resonate-Protocol/keepalive-go/pkg/audio/output"
	"github.com/Resonate-Protocol/keepalive-go/pkg/audio/tone"
	"go.uber.org/zap"
)

// DefaultBufferBytes is the size of one write: 1024 mono 16-bit samples,
// about 23ms at 44.1kHz
const DefaultBufferBytes = 2048

// State is the driver lifecycle state
type State int32

const (
	StateInitializing State = iota
	StateStreaming
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateStreaming:
		return "streaming"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Config holds driver configuration
type Config struct {
	Format      audio.Format
	BufferBytes int // defaults to DefaultBufferBytes
	Logger      *zap.Logger
}

// Stats is a snapshot of driver progress, safe to take from any goroutine
type Stats struct {
	State            State
	BuffersWritten   uint64
	SamplesGenerated uint64
	BytesWritten     uint64
	Phase            float64
	StartedAt        time.Time
}

// Driver owns the sink handle and the generator for the life of the stream.
// Only the goroutine calling Run (or Open and Stream) touches the generator
// and buffers; Stats may be read concurrently.
type Driver struct {
	out     output.Output
	gen     *tone.Generator
	enc     encode.Encoder
	format  audio.Format
	logger  *zap.Logger
	samples []float64
	frame   []byte

	state     atomic.Int32
	buffers   atomic.Uint64
	generated atomic.Uint64
	written   atomic.Uint64
	phaseBits atomic.Uint64
	startedAt atomic.Int64
}

// New creates a driver writing gen's samples to out
func New(out output.Output, gen *tone.Generator, cfg Config) (*Driver, error) {
	if cfg.Format.Channels != 1 {
		return nil, fmt.Errorf("unsupported channel count %d: the keep-alive stream is mono", cfg.Format.Channels)
	}

	enc, err := encode.NewPCM(cfg.Format)
	if err != nil {
		return nil, err
	}

	bufferBytes := cfg.BufferBytes
	if bufferBytes == 0 {
		bufferBytes = DefaultBufferBytes
	}
	frameSize := cfg.Format.FrameSize()
	if bufferBytes < 0 || bufferBytes%frameSize != 0 {
		return nil, fmt.Errorf("buffer size %d is not a positive multiple of the %d-byte frame", bufferBytes, frameSize)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	numSamples := bufferBytes / frameSize

	return &Driver{
		out:     out,
		gen:     gen,
		enc:     enc,
		format:  cfg.Format,
		logger:  logger,
		samples: make([]float64, numSamples),
		frame:   make([]byte, enc.EncodedLen(numSamples)),
	}, nil
}

// Run opens the sink and streams until ctx is done or the sink fails.
// A nil return means the stream was stopped through ctx.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.Open(); err != nil {
		return err
	}
	return d.Stream(ctx)
}

// Open opens and starts the sink, moving the driver to StateStreaming.
// Failures wrap output.ErrSinkUnavailable and leave nothing acquired.
func (d *Driver) Open() error {
	if s := d.State(); s != StateInitializing {
		return fmt.Errorf("driver cannot open in state %s", s)
	}

	if err := d.out.Open(d.format); err != nil {
		return d.fail(metrics.KindUnavailable, asKind(err, output.ErrSinkUnavailable))
	}
	if err := d.out.Start(); err != nil {
		d.closeSink()
		return d.fail(metrics.KindUnavailable, asKind(err, output.ErrSinkUnavailable))
	}

	d.setState(StateStreaming)
	d.logger.Info("audio sink opened",
		zap.Stringer("format", d.format),
		zap.Int("buffer_bytes", len(d.frame)),
		zap.Float64("frequency_hz", d.gen.Params().Frequency),
		zap.Float64("amplitude", d.gen.Params().Amplitude))

	return nil
}

// Stream runs the fill/encode/write loop on an opened driver. Cancellation is
// checked between buffers; the sink is closed on every return.
func (d *Driver) Stream(ctx context.Context) error {
	if s := d.State(); s != StateStreaming {
		return fmt.Errorf("driver cannot stream in state %s", s)
	}
	defer d.closeSink()

	d.startedAt.Store(time.Now().UnixNano())

	for {
		select {
		case <-ctx.Done():
			d.setState(StateStopped)
			d.logger.Info("stream stopped",
				zap.Uint64("buffers", d.buffers.Load()),
				zap.Duration("uptime", time.Since(d.started())))
			return nil
		default:
		}

		if err := d.writeBuffer(); err != nil {
			if errors.Is(err, output.ErrSinkBroken) {
				return d.fail(metrics.KindBroken, err)
			}
			return d.fail(metrics.KindEncode, err)
		}
	}
}

// writeBuffer fills, encodes and writes one buffer
func (d *Driver) writeBuffer() error {
	d.gen.Fill(d.samples)
	d.generated.Add(uint64(len(d.samples)))
	metrics.SamplesGeneratedTotal.Add(float64(len(d.samples)))

	n, err := d.enc.Encode(d.frame, d.samples)
	if err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}

	start := time.Now()
	if err := d.out.Write(d.frame[:n]); err != nil {
		return asKind(err, output.ErrSinkBroken)
	}
	metrics.WriteBlockSeconds.Observe(time.Since(start).Seconds())

	phase := d.gen.Phase()
	d.phaseBits.Store(math.Float64bits(phase))
	d.buffers.Add(1)
	d.written.Add(uint64(n))

	metrics.Phase.Set(phase)
	metrics.BuffersWrittenTotal.Inc()
	metrics.BytesWrittenTotal.Add(float64(n))

	return nil
}

// State returns the current lifecycle state
func (d *Driver) State() State {
	return State(d.state.Load())
}

// Stats returns a snapshot of progress counters
func (d *Driver) Stats() Stats {
	return Stats{
		State:            d.State(),
		BuffersWritten:   d.buffers.Load(),
		SamplesGenerated: d.generated.Load(),
		BytesWritten:     d.written.Load(),
		Phase:            math.Float64frombits(d.phaseBits.Load()),
		StartedAt:        d.started(),
	}
}

func (d *Driver) started() time.Time {
	ns := d.startedAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func (d *Driver) setState(s State) {
	d.state.Store(int32(s))
	metrics.StreamState.Set(float64(s))
}

func (d *Driver) fail(kind string, err error) error {
	d.setState(StateFailed)
	metrics.StreamErrorsTotal.WithLabelValues(kind).Inc()
	return err
}

func (d *Driver) closeSink() {
	if err := d.out.Close(); err != nil {
		d.logger.Warn("audio sink close error", zap.Error(err))
	}
}

// asKind makes sure err matches kind under errors.Is
func asKind(err, kind error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
