package models

import "time"

// DaemonInfo identifies the running tray app.
// This corresponds to ~/.lockbar/daemon.yaml.
type DaemonInfo struct {
	Version   int       `yaml:"version"`
	PID       int       `yaml:"pid"`
	StartedAt time.Time `yaml:"started_at"`
	LogFile   string    `yaml:"log_file,omitempty"`
}

// NewDaemonInfo creates a new daemon info with current values.
func NewDaemonInfo(pid int, logFile string) *DaemonInfo {
	return &DaemonInfo{
		Version:   1,
		PID:       pid,
		StartedAt: time.Now().UTC(),
		LogFile:   logFile,
	}
}
