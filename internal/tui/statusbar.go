package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/lockbar-io/lockbar/internal/views"
)

func renderStatusBar(m *Model, width int) string {
	if m.err != nil {
		return statusBarStyle.Background(colorRed).Width(width).Render(" " + m.err.Error())
	}

	left := " " + routeHints(m)
	right := ""
	if m.snapshot.LoggedIn {
		right = lockedStyle.Render("Logged in") + " "
	}

	gap := max(1, width-lipgloss.Width(left)-lipgloss.Width(right))
	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

// routeHints lists the bindings usable on the current route.
func routeHints(m *Model) string {
	if m.showHelp {
		return keyHint("Esc", "close help")
	}

	bindings := []key.Binding{globalKeys.Quit, globalKeys.Help}
	switch m.snapshot.Route.Name {
	case views.RouteLogin:
		bindings = append(bindings, loginKeys.Next, loginKeys.Submit)
	case views.RouteVehicles:
		bindings = append(bindings, listKeys.Down, listKeys.Open, listKeys.Refresh)
	case views.RouteVehicle:
		bindings = append(bindings, detailKeys.Toggle, detailKeys.Back)
	}

	hints := make([]string, len(bindings))
	for i, b := range bindings {
		hints[i] = keyHint(b.Help().Key, b.Help().Desc)
	}
	return strings.Join(hints, "  ")
}

func keyHint(k, desc string) string {
	return keyStyle.Render(k) + " " + hintStyle.Render(desc)
}
