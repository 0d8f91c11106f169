// ABOUTME: Entry point for the audio keep-alive
// ABOUTME: Parses CLI flags and streams the keep-alive tone until signalled
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Resonate-Protocol/keepalive-go/internal/app"
	"github.com/Resonate-Protocol/keepalive-go/internal/version"
	"github.com/Resonate-Protocol/keepalive-go/pkg/audio/output"
)

var (
	backend     = flag.String("backend", output.BackendOto, "Audio backend ("+strings.Join(output.Backends(), ", ")+")")
	logFile     = flag.String("log-file", "", "Also append logs to this file")
	debug       = flag.Bool("debug", false, "Enable debug logging")
	useTUI      = flag.Bool("tui", false, "Show a status display instead of streaming logs")
	metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Handle shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	code := app.Main(ctx, app.Config{
		Backend:     *backend,
		LogFile:     *logFile,
		Debug:       *debug,
		TUI:         *useTUI,
		MetricsAddr: *metricsAddr,
	}, os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}
