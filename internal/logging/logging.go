// ABOUTME: Logger construction for the keep-alive process
// ABOUTME: Splits console output by level and tees everything to an optional log file
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects where log entries go
type Options struct {
	Stdout io.Writer // Debug through Warn
	Stderr io.Writer // Error and above, one line per entry
	File   io.Writer // every enabled level; nil disables
	Debug  bool
	// Quiet drops console output below Error while a status display owns the
	// terminal. The log file still receives everything.
	Quiet bool
}

// New builds a console-encoded logger from opts
func New(opts Options) *zap.Logger {
	minLevel := zapcore.InfoLevel
	if opts.Debug {
		minLevel = zapcore.DebugLevel
	}

	encoder := zapcore.NewConsoleEncoder(encoderConfig())

	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= minLevel && l < zapcore.ErrorLevel
	})
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.ErrorLevel
	})

	var cores []zapcore.Core
	if opts.Stdout != nil && !opts.Quiet {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(opts.Stdout), low))
	}
	if opts.Stderr != nil {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(opts.Stderr), high))
	}
	if opts.File != nil {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(opts.File), minLevel))
	}

	return zap.New(zapcore.NewTee(cores...))
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.CallerKey = zapcore.OmitKey
	cfg.StacktraceKey = zapcore.OmitKey
	return cfg
}

// OpenFile opens path for appending log output
func OpenFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
}
