package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lockbar-io/lockbar/internal/views"
)

// commandTimeout bounds a single remote call started from the panel.
const commandTimeout = 60 * time.Second

func loginCmd(c *views.Controller, username, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return LoginDoneMsg{Err: c.Login(ctx, username, password)}
	}
}

func refreshCmd(c *views.Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return RefreshDoneMsg{Err: c.RefreshVehicles(ctx)}
	}
}

func toggleCmd(c *views.Controller, key string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		state, err := c.ToggleLock(ctx, key)
		return ToggleDoneMsg{Key: key, State: state, Err: err}
	}
}

func clearErrorAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}

func spinnerTick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(_ time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}
