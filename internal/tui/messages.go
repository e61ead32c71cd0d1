package tui

import (
	"github.com/lockbar-io/lockbar/internal/session"
	"github.com/lockbar-io/lockbar/internal/views"
)

// StateMsg carries a controller snapshot.
type StateMsg struct {
	Snapshot views.Snapshot
}

// LoginDoneMsg reports the end of a login attempt.
type LoginDoneMsg struct {
	Err error
}

// RefreshDoneMsg reports the end of a vehicle list refresh.
type RefreshDoneMsg struct {
	Err error
}

// ToggleDoneMsg reports the end of a lock or unlock command.
type ToggleDoneMsg struct {
	Key   string
	State session.LockState
	Err   error
}

// ClearErrorMsg clears the error display.
type ClearErrorMsg struct{}

// spinnerTickMsg advances the spinner of busy vehicles.
type spinnerTickMsg struct{}
