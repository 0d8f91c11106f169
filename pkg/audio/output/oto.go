// ABOUTME: Oto-based audio output implementation
// ABOUTME: Streams PCM through a persistent oto player fed by a blocking pipe
package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Resonate-Protocol/keepalive-go/pkg/audio"
	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"
)

// otoBufferDuration bounds how far the player may read ahead of playback
const otoBufferDuration = 100 * time.Millisecond

// oto allows a single context per process
var (
	otoMu      sync.Mutex
	otoShared  *oto.Context
	otoCreated audio.Format
)

// Oto output implementation using oto library
type Oto struct {
	logger     *zap.Logger
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	format     audio.Format
	mu         sync.Mutex
	ready      bool
}

// NewOto creates a new Oto output
func NewOto(logger *zap.Logger) Output {
	return &Oto{logger: logger}
}

// Open initializes the oto context
func (o *Oto) Open(format audio.Format) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	ctx, err := sharedOtoContext(format, o.logger)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.otoCtx = ctx
	o.format = format

	o.logger.Info("audio output initialized",
		zap.Int("sample_rate", format.SampleRate),
		zap.Int("channels", format.Channels),
		zap.Duration("buffer", otoBufferDuration))

	return nil
}

func sharedOtoContext(format audio.Format, logger *zap.Logger) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoShared != nil {
		if otoCreated != format {
			// oto cannot be reinitialized with a different format
			return nil, unavailable(fmt.Sprintf("oto context already created for %s", otoCreated), nil)
		}
		if err := otoShared.Resume(); err != nil {
			return nil, unavailable("failed to resume oto context", err)
		}
		logger.Debug("reusing existing oto context")
		return otoShared, nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   otoBufferDuration,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, unavailable("failed to create oto context", err)
	}
	<-readyChan

	otoShared = ctx
	otoCreated = format
	return ctx, nil
}

// Start creates the persistent player reading from the pipe
func (o *Oto) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx == nil {
		return unavailable("output not opened", nil)
	}
	if err := o.otoCtx.Err(); err != nil {
		return unavailable("oto context failed", err)
	}
	if o.ready {
		return nil
	}

	o.pipeReader, o.pipeWriter = io.Pipe()
	o.player = o.otoCtx.NewPlayer(o.pipeReader)
	o.player.Play()
	o.ready = true

	return nil
}

// Write hands frame to the player. The pipe only returns once the player has
// read every byte, so this blocks for as long as the device buffer is full.
func (o *Oto) Write(frame []byte) error {
	o.mu.Lock()
	w, p, ready := o.pipeWriter, o.player, o.ready
	o.mu.Unlock()

	if !ready {
		return broken("output not started", nil)
	}

	if _, err := w.Write(frame); err != nil {
		return broken("pipe write failed", err)
	}
	if err := p.Err(); err != nil {
		return broken("player failed", err)
	}

	return nil
}

// Close releases output resources
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pipeWriter != nil {
		o.pipeWriter.Close()
		o.pipeWriter = nil
	}
	if o.player != nil {
		if err := o.player.Close(); err != nil {
			o.logger.Warn("oto player close error", zap.Error(err))
		}
		o.player = nil
	}
	if o.pipeReader != nil {
		o.pipeReader.Close()
		o.pipeReader = nil
	}
	if o.otoCtx != nil {
		// The context is process-wide; suspend instead of destroying it
		if err := o.otoCtx.Suspend(); err != nil {
			o.logger.Warn("oto context suspend error", zap.Error(err))
		}
		o.otoCtx = nil
	}
	o.ready = false

	return nil
}
