// ABOUTME: Tests for keep-alive orchestration
// ABOUTME: Runs Main against a fake sink and checks exit codes and diagnostics
package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Resonate-Protocol/keepalive-go/pkg/audio"
	"github.com/Resonate-Protocol/keepalive-go/pkg/audio/output"
	"go.uber.org/zap"
)

// fakeSink is a scripted output.Output
type fakeSink struct {
	openErr     error
	failOnWrite int
	onWrite     func(n int)

	format audio.Format
	writes int
	closes int
}

func (f *fakeSink) Open(format audio.Format) error {
	f.format = format
	if f.openErr != nil {
		return f.openErr
	}
	return nil
}

func (f *fakeSink) Start() error { return nil }

func (f *fakeSink) Write(frame []byte) error {
	f.writes++
	if f.failOnWrite > 0 && f.writes == f.failOnWrite {
		return errors.New("device disconnected")
	}
	if f.onWrite != nil {
		f.onWrite(f.writes)
	}
	return nil
}

func (f *fakeSink) Close() error {
	f.closes++
	return nil
}

func lines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestMainSinkUnavailable(t *testing.T) {
	sink := &fakeSink{openErr: errors.New("no audio line")}
	var stdout, stderr bytes.Buffer

	code := Main(context.Background(), Config{Output: sink}, &stdout, &stderr)

	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if sink.writes != 0 {
		t.Errorf("expected no writes, got %d", sink.writes)
	}

	errLines := lines(stderr.String())
	if len(errLines) != 1 {
		t.Fatalf("expected exactly one diagnostic line, got %d: %q", len(errLines), errLines)
	}
	if !strings.Contains(errLines[0], "audio sink unavailable") || !strings.Contains(errLines[0], "no audio line") {
		t.Errorf("diagnostic missing kind or cause: %q", errLines[0])
	}
	if strings.Contains(stdout.String(), "audio sink opened") {
		t.Error("stream reported open although the sink failed")
	}
}

func TestMainSinkBroken(t *testing.T) {
	sink := &fakeSink{failOnWrite: 6}
	var stdout, stderr bytes.Buffer

	code := Main(context.Background(), Config{Output: sink}, &stdout, &stderr)

	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if sink.writes != 6 {
		t.Errorf("expected 6 write attempts, got %d", sink.writes)
	}
	if sink.closes != 1 {
		t.Errorf("expected sink closed once, got %d", sink.closes)
	}

	errLines := lines(stderr.String())
	if len(errLines) != 1 {
		t.Fatalf("expected exactly one diagnostic line, got %d: %q", len(errLines), errLines)
	}
	if !strings.Contains(errLines[0], "audio sink broken") {
		t.Errorf("diagnostic missing kind: %q", errLines[0])
	}
}

func TestMainStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &fakeSink{onWrite: func(n int) {
		if n == 3 {
			cancel()
		}
	}}
	var stdout, stderr bytes.Buffer

	code := Main(ctx, Config{Output: sink}, &stdout, &stderr)

	if code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
	if sink.writes != 3 {
		t.Errorf("expected 3 writes, got %d", sink.writes)
	}
	if stderr.Len() != 0 {
		t.Errorf("expected no diagnostics, got %q", stderr.String())
	}
	if sink.format != audio.KeepAliveFormat(SampleRate) {
		t.Errorf("sink opened with %v", sink.format)
	}

	for _, want := range []string{"starting keep-alive", "audio sink opened", "keep-alive stopped", "run_id"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout.String())
		}
	}
}

func TestMainUnknownBackend(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := Main(context.Background(), Config{Backend: "jack"}, &stdout, &stderr)

	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if n := len(lines(stderr.String())); n != 1 {
		t.Errorf("expected one diagnostic line, got %d", n)
	}
}

func TestMainWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keepalive.log")
	sink := &fakeSink{failOnWrite: 1}

	code := Main(context.Background(), Config{Output: sink, LogFile: path}, io.Discard, io.Discard)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	for _, want := range []string{"starting keep-alive", "audio sink broken", "run_id"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log file missing %q:\n%s", want, data)
		}
	}
}

func TestMainBadLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "keepalive.log")
	sink := &fakeSink{}
	var stderr bytes.Buffer

	code := Main(context.Background(), Config{Output: sink, LogFile: path}, io.Discard, &stderr)

	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if sink.writes != 0 {
		t.Error("stream started without a log file")
	}
	if n := len(lines(stderr.String())); n != 1 {
		t.Errorf("expected one diagnostic line, got %d", n)
	}
}

func TestParamsValid(t *testing.T) {
	if err := Params().Validate(); err != nil {
		t.Errorf("keep-alive parameters rejected: %v", err)
	}
}

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{output.ErrSinkUnavailable, "audio sink unavailable"},
		{output.ErrSinkBroken, "audio sink broken"},
		{errors.New("other"), "keep-alive failed"},
	}

	for _, tt := range tests {
		if got := failureMessage(tt.err); got != tt.expected {
			t.Errorf("failureMessage(%v) = %q, expected %q", tt.err, got, tt.expected)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, err := startMetrics("127.0.0.1:0", zap.NewNop())
	if err != nil {
		t.Fatalf("startMetrics failed: %v", err)
	}
	defer srv.Close()

	resp, err := http.Get("http://" + srv.Addr().String() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body failed: %v", err)
	}
	if !strings.Contains(string(body), "audio_keepalive_buffers_written_total") {
		t.Error("metrics output missing keep-alive counters")
	}
}

func TestHoldFailureWaits(t *testing.T) {
	start := time.Now()
	holdFailure(50*time.Millisecond, make(chan struct{}), make(chan struct{}))

	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("failure screen released after %s, want at least 50ms", elapsed)
	}
}

func TestHoldFailureEndsEarly(t *testing.T) {
	tests := []struct {
		name      string
		closeQuit bool
	}{
		{"quit key", true},
		{"display exited", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quit := make(chan struct{})
			done := make(chan struct{})
			if tt.closeQuit {
				close(quit)
			} else {
				close(done)
			}

			start := time.Now()
			holdFailure(time.Minute, quit, done)

			if elapsed := time.Since(start); elapsed > time.Second {
				t.Errorf("hold did not end early, took %s", elapsed)
			}
		})
	}
}
