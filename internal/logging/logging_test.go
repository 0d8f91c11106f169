// ABOUTME: Tests for logger construction
// ABOUTME: Verifies level routing between stdout, stderr and the log file
package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func lines(b *bytes.Buffer) []string {
	s := strings.TrimRight(b.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestLevelRouting(t *testing.T) {
	var stdout, stderr, file bytes.Buffer
	logger := New(Options{Stdout: &stdout, Stderr: &stderr, File: &file})

	logger.Debug("hidden")
	logger.Info("starting")
	logger.Warn("careful")
	logger.Error("sink unavailable", zap.Error(errors.New("no device")))

	if got := lines(&stdout); len(got) != 2 {
		t.Errorf("expected 2 stdout lines, got %d: %q", len(got), got)
	}

	errLines := lines(&stderr)
	if len(errLines) != 1 {
		t.Fatalf("expected exactly 1 stderr line, got %d: %q", len(errLines), errLines)
	}
	if !strings.Contains(errLines[0], "ERROR") || !strings.Contains(errLines[0], "no device") {
		t.Errorf("stderr line missing level or cause: %q", errLines[0])
	}

	if got := lines(&file); len(got) != 3 {
		t.Errorf("expected 3 file lines, got %d: %q", len(got), got)
	}
	if strings.Contains(file.String(), "hidden") {
		t.Error("debug entry written without Debug option")
	}
}

func TestDebugLevel(t *testing.T) {
	var stdout bytes.Buffer
	logger := New(Options{Stdout: &stdout, Debug: true})

	logger.Debug("details")
	if !strings.Contains(stdout.String(), "details") {
		t.Errorf("expected debug output, got %q", stdout.String())
	}
}

func TestQuietKeepsErrorsAndFile(t *testing.T) {
	var stdout, stderr, file bytes.Buffer
	logger := New(Options{Stdout: &stdout, Stderr: &stderr, File: &file, Quiet: true})

	logger.Info("streaming")
	logger.Error("broken")

	if stdout.Len() != 0 {
		t.Errorf("quiet logger wrote to stdout: %q", stdout.String())
	}
	if len(lines(&stderr)) != 1 {
		t.Errorf("expected error on stderr, got %q", stderr.String())
	}
	if len(lines(&file)) != 2 {
		t.Errorf("expected both entries in file, got %q", file.String())
	}
}

func TestOpenFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keepalive.log")

	for i := 0; i < 2; i++ {
		f, err := OpenFile(path)
		if err != nil {
			t.Fatalf("OpenFile failed: %v", err)
		}
		New(Options{File: f}).Info("line")
		f.Close()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if n := strings.Count(string(data), "\n"); n != 2 {
		t.Errorf("expected 2 appended lines, got %d", n)
	}
}
