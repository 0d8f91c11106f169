// ABOUTME: Keep-alive application orchestration
// ABOUTME: Coordinates logging, the audio sink, the streaming driver and the optional status display
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/Resonate-Protocol/keepalive-go/internal/logging"
	"github.com/Resonate-Protocol/keepalive-go/internal/metrics"
	"github.com/Resonate-Protocol/keepalive-go/internal/stream"
	"github.com/Resonate-Protocol/keepalive-go/internal/ui"
	"github.com/Resonate-Protocol/keepalive-go/internal/version"
	"github.com/Resonate-Protocol/keepalive-go/pkg/audio"
	"github.com/Resonate-Protocol/keepalive-go/pkg/audio/output"
	"github.com/Resonate-Protocol/keepalive-go/pkg/audio/tone"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Signal parameters of the keep-alive tone
const (
	SampleRate = 44100
	Frequency  = 22000.0
	Amplitude  = 0.00005
)

// Params returns the keep-alive tone parameters
func Params() tone.Params {
	return tone.Params{
		SampleRate: SampleRate,
		Frequency:  Frequency,
		Amplitude:  Amplitude,
	}
}

// Config holds operational settings
type Config struct {
	Backend     string
	LogFile     string
	Debug       bool
	TUI         bool
	MetricsAddr string
	BufferBytes int // 0 selects stream.DefaultBufferBytes

	// Output overrides Backend when set
	Output output.Output
}

// Main runs the keep-alive until ctx is done or the sink fails and returns the
// process exit code. Failures produce exactly one Error line on stderr.
func Main(ctx context.Context, cfg Config, stdout, stderr io.Writer) int {
	opts := logging.Options{
		Stdout: stdout,
		Stderr: stderr,
		Debug:  cfg.Debug,
		Quiet:  cfg.TUI,
	}

	if cfg.LogFile != "" {
		f, err := logging.OpenFile(cfg.LogFile)
		if err != nil {
			logging.New(opts).Error("cannot open log file", zap.String("path", cfg.LogFile), zap.Error(err))
			return 1
		}
		defer func() { _ = f.Close() }()
		opts.File = f
	}

	runID := uuid.New().String()
	logger := logging.New(opts).With(zap.String("run_id", runID))
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, runID, logger); err != nil {
		logger.Error(failureMessage(err), zap.Error(err))
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg Config, runID string, logger *zap.Logger) error {
	params := Params()
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid tone parameters: %w", err)
	}

	out := cfg.Output
	if out == nil {
		var err error
		if out, err = output.New(cfg.Backend, logger); err != nil {
			return err
		}
	}

	format := audio.KeepAliveFormat(SampleRate)
	driver, err := stream.New(out, tone.New(params), stream.Config{
		Format:      format,
		BufferBytes: cfg.BufferBytes,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	logger.Info("starting keep-alive",
		zap.String("version", version.Version),
		zap.String("backend", backendName(cfg)),
		zap.Float64("increment_rad", params.Increment()))

	if err := driver.Open(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.MetricsAddr != "" {
		srv, err := startMetrics(cfg.MetricsAddr, logger)
		if err != nil {
			logger.Warn("metrics endpoint disabled", zap.Error(err))
		} else {
			defer srv.Close()
		}
	}

	var display *statusDisplay
	if cfg.TUI {
		display = startDisplay(ctx, cancel, driver, ui.Info{
			Backend:   backendName(cfg),
			Format:    format.String(),
			Frequency: params.Frequency,
			Amplitude: params.Amplitude,
			RunID:     runID,
			Version:   version.String(),
		}, logger)
	}

	err = driver.Stream(ctx)

	if display != nil {
		display.stop(driver.Stats(), err)
	}

	if err != nil {
		return err
	}

	logger.Info("keep-alive stopped")
	return nil
}

func backendName(cfg Config) string {
	if cfg.Output != nil {
		return fmt.Sprintf("%T", cfg.Output)
	}
	return cfg.Backend
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, output.ErrSinkUnavailable):
		return "audio sink unavailable"
	case errors.Is(err, output.ErrSinkBroken):
		return "audio sink broken"
	default:
		return "keep-alive failed"
	}
}

// metricsServer serves /metrics on its own listener
type metricsServer struct {
	srv *http.Server
	ln  net.Listener
}

func startMetrics(addr string, logger *zap.Logger) (*metricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	m := &metricsServer{
		srv: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:  ln,
	}

	go func() {
		if err := m.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server error", zap.Error(err))
		}
	}()

	logger.Info("serving metrics", zap.Stringer("addr", ln.Addr()))
	return m, nil
}

// Addr returns the bound address
func (m *metricsServer) Addr() net.Addr {
	return m.ln.Addr()
}

func (m *metricsServer) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = m.srv.Shutdown(ctx)
}

// failureHold is how long the status display keeps a failed stream on screen
const failureHold = 3 * time.Second

// statusDisplay runs the TUI and feeds it driver stats
type statusDisplay struct {
	prog *tea.Program
	ctrl *ui.Control
	done chan struct{}
	hold time.Duration
}

func startDisplay(ctx context.Context, cancel context.CancelFunc, driver *stream.Driver, info ui.Info, logger *zap.Logger) *statusDisplay {
	ctrl := ui.NewControl()
	d := &statusDisplay{
		prog: ui.Run(ctrl, info),
		ctrl: ctrl,
		done: make(chan struct{}),
		hold: failureHold,
	}

	go func() {
		defer close(d.done)
		if _, err := d.prog.Run(); err != nil {
			logger.Warn("status display error", zap.Error(err))
		}
	}()

	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				d.prog.Send(ui.StatusMsg{Stats: driver.Stats()})
			case <-ctrl.Quit:
				logger.Info("quit requested from status display")
				cancel()
				return
			case <-ctx.Done():
				return
			case <-d.done:
				return
			}
		}
	}()

	return d
}

// stop shows the final state and waits for the terminal to be restored.
// A failed stream stays on screen for d.hold or until the user quits.
func (d *statusDisplay) stop(stats stream.Stats, err error) {
	d.prog.Send(ui.StatusMsg{Stats: stats, Err: err})
	if err != nil {
		holdFailure(d.hold, d.ctrl.Quit, d.done)
	}
	d.prog.Quit()
	<-d.done
}

// holdFailure blocks for hold unless quit or done fires first
func holdFailure(hold time.Duration, quit, done <-chan struct{}) {
	timer := time.NewTimer(hold)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-quit:
	case <-done:
	}
}
