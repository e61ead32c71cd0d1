package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lockbar-io/lockbar/internal/config"
)

const daemonBinary = "lockbard"

// EnsureDaemon makes sure the tray app is running, starting it if necessary.
func EnsureDaemon() error {
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if running {
		return nil
	}

	// Clean up stale daemon info if it exists
	if info != nil {
		_ = config.RemoveDaemonInfo()
	}

	return startDaemon()
}

// startDaemon starts the tray app in the background.
func startDaemon() error {
	daemonPath, err := findDaemonBinary()
	if err != nil {
		return err
	}

	cmd := exec.Command(daemonPath)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	// The tray app outlives the CLI.
	_ = cmd.Process.Release()

	// Wait for daemon to be ready (max 5 seconds)
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		running, _, err := config.IsDaemonRunning()
		if err == nil && running {
			return nil
		}
	}

	return fmt.Errorf("daemon failed to start within timeout")
}

// stopDaemon sends SIGTERM to pid and waits for daemon.yaml to go away.
func stopDaemon(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find daemon process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send stop signal: %w", err)
	}

	// Poll for shutdown (max 5 seconds)
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		running, _, err := config.IsDaemonRunning()
		if err == nil && !running {
			return nil
		}
	}
	return fmt.Errorf("daemon did not stop within timeout")
}

// findDaemonBinary locates the lockbard binary.
func findDaemonBinary() (string, error) {
	// Try PATH first
	path, err := exec.LookPath(daemonBinary)
	if err == nil {
		return path, nil
	}

	// Try next to the current executable
	execPath, err := os.Executable()
	if err == nil {
		daemonPath := filepath.Join(filepath.Dir(execPath), daemonBinary)
		if _, err := os.Stat(daemonPath); err == nil {
			return daemonPath, nil
		}
	}

	// Try build directory
	buildPath := filepath.Join("build", daemonBinary)
	if _, err := os.Stat(buildPath); err == nil {
		return buildPath, nil
	}

	return "", fmt.Errorf("%s not found. Install or build it first", daemonBinary)
}

// GetDaemonStatus returns the tray app status.
func GetDaemonStatus() (bool, *DaemonStatusInfo, error) {
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return false, nil, err
	}

	if !running || info == nil {
		return false, nil, nil
	}

	return true, &DaemonStatusInfo{
		PID:       info.PID,
		StartedAt: info.StartedAt,
		LogFile:   info.LogFile,
	}, nil
}

// DaemonStatusInfo contains daemon status information.
type DaemonStatusInfo struct {
	PID       int
	StartedAt time.Time
	LogFile   string
}
