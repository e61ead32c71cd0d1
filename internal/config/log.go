package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// OpenDaemonLog opens ~/.lockbar/logs/lockbard.log for appending.
func OpenDaemonLog() (*os.File, string, error) {
	if err := EnsureGlobalLogsDir(); err != nil {
		return nil, "", fmt.Errorf("failed to ensure logs dir: %w", err)
	}

	logsDir, err := GlobalLogsDir()
	if err != nil {
		return nil, "", err
	}

	path := filepath.Join(logsDir, DaemonLogName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open log file: %w", err)
	}
	return f, path, nil
}
