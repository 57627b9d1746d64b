package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/disa/internal/config"
	"github.com/matheus3301/disa/internal/logging"
	"github.com/matheus3301/disa/internal/profile"
	"github.com/matheus3301/disa/internal/tui"
	"github.com/matheus3301/disa/internal/tui/client"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	flag.Parse()

	name := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(name); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadOrDefault(profile.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: read config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.NewFileOnly(profile.ClientLogPath(name, "disatui"), name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: open log: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	socketPath := profile.SocketPath(name)
	if !client.Probe(socketPath, 2*time.Second) {
		fmt.Fprintf(os.Stderr, "daemon not running for profile %q, starting...\n", name)
		if err := startDaemon(name); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start daemon: %v\n", err)
			os.Exit(1)
		}
		if !waitForDaemon(socketPath, 10*time.Second) {
			fmt.Fprintf(os.Stderr, "daemon did not become ready, see %s\n", profile.LogPath(name))
			os.Exit(1)
		}
	}

	c, err := client.New(socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to daemon: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = c.Close() }()

	log.Info("tui started", zap.String("socket", socketPath))
	app := tui.NewApp(c, tui.Options{
		Profile:    name,
		Config:     cfg,
		Logger:     log,
		ExportsDir: profile.ExportsDir(name),
	})
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// startDaemon launches disad from next to this binary, or from PATH.
func startDaemon(name string) error {
	executable, err := os.Executable()
	if err != nil {
		return err
	}
	disad := filepath.Join(filepath.Dir(executable), "disad")
	if _, err := os.Stat(disad); err != nil {
		disad = "disad"
	}

	// The daemon keeps logging to stderr; detach it so it cannot draw over
	// the TUI. Its log file still records everything.
	cmd := exec.Command(disad, "--profile", name)
	return cmd.Start()
}

// waitForDaemon polls GetStatus until the daemon answers or timeout passes.
func waitForDaemon(socketPath string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if client.Probe(socketPath, time.Second) {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}
