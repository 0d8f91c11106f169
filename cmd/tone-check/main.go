// ABOUTME: Headless check of the keep-alive tone
// ABOUTME: Prints signal parameters, the first encoded samples and the peak level without opening a sink
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/Resonate-Protocol/keepalive-go/internal/app"
	"github.com/Resonate-Protocol/keepalive-go/internal/logging"
	"github.com/Resonate-Protocol/keepalive-go/internal/stream"
	"github.com/Resonate-Protocol/keepalive-go/pkg/audio"
	"github.com/Resonate-Protocol/keepalive-go/pkg/audio/encode"
	"github.com/Resonate-Protocol/keepalive-go/pkg/audio/tone"
	"go.uber.org/zap"
)

var (
	samples = flag.Int("samples", 8, "Number of leading samples to print")
	buffers = flag.Int("buffers", 431, "Buffers to scan for the peak level (431 is about 10s)")
)

func main() {
	flag.Parse()

	logger := logging.New(logging.Options{Stdout: os.Stdout, Stderr: os.Stderr})

	if err := report(os.Stdout, *samples, *buffers); err != nil {
		logger.Error("tone check failed", zap.Error(err))
		os.Exit(1)
	}
}

// report writes the tone summary to w
func report(w io.Writer, leading, numBuffers int) error {
	if leading < 0 || numBuffers < 1 {
		return errors.New("samples must be >= 0 and buffers >= 1")
	}

	params := app.Params()
	if err := params.Validate(); err != nil {
		return err
	}

	format := audio.KeepAliveFormat(app.SampleRate)
	enc, err := encode.NewPCM(format)
	if err != nil {
		return err
	}

	gen := tone.New(params)
	perBuffer := stream.DefaultBufferBytes / format.FrameSize()
	buf := make([]float64, perBuffer)
	frame := make([]byte, enc.EncodedLen(perBuffer))

	fmt.Fprintf(w, "=== Keep-Alive Tone Check ===\n")
	fmt.Fprintf(w, "Format:    %s\n", format)
	fmt.Fprintf(w, "Frequency: %.0f Hz\n", params.Frequency)
	fmt.Fprintf(w, "Amplitude: %g (%.1f dBFS)\n", params.Amplitude, dbfs(params.Amplitude))
	fmt.Fprintf(w, "Increment: %.12f rad/sample\n", gen.Increment())
	fmt.Fprintf(w, "Period:    %.6f samples\n", params.Period())
	fmt.Fprintf(w, "Buffer:    %d bytes (%d samples)\n", len(frame), perBuffer)
	fmt.Fprintln(w)

	var peak int16
	printed := 0
	for b := 0; b < numBuffers; b++ {
		gen.Fill(buf)
		n, err := enc.Encode(frame, buf)
		if err != nil {
			return err
		}

		for i := 0; i < n; i += 2 {
			v := audio.Int16LE(frame[i:])
			if printed < leading {
				fmt.Fprintf(w, "sample %3d: %+d  [% x]\n", printed, v, frame[i:i+2])
				printed++
			}
			if v < 0 {
				v = -v
			}
			if v > peak {
				peak = v
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Peak:      %d (%.1f dBFS) over %d samples\n",
		peak, dbfs(float64(peak)/audio.FullScale), numBuffers*perBuffer)
	fmt.Fprintf(w, "Phase:     %.12f rad\n", gen.Phase())

	return nil
}

func dbfs(level float64) float64 {
	if level <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(level)
}
