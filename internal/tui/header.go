package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lockbar-io/lockbar/internal/views"
)

func renderHeader(snap views.Snapshot, width int) string {
	dot := lipgloss.NewStyle().Foreground(colorCyan).Render("●")
	name := lipgloss.NewStyle().Bold(true).Render("Lockbar")

	active := 0
	switch snap.Route.Name {
	case views.RouteVehicles:
		active = 1
	case views.RouteVehicle:
		active = 2
	}
	tabs := renderTabs([]string{"Login", "Vehicles", "Vehicle"}, active)

	left := fmt.Sprintf(" %s %s  %s", dot, name, tabs)
	right := renderSessionBadge(snap) + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return headerStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func renderTabs(tabs []string, active int) string {
	var parts []string
	for i, tab := range tabs {
		if i == active {
			parts = append(parts, activeTabStyle.Render(tab))
		} else {
			parts = append(parts, inactiveTabStyle.Render(tab))
		}
	}
	return strings.Join(parts, tabSepStyle.Render(" | "))
}

func renderSessionBadge(snap views.Snapshot) string {
	if !snap.LoggedIn {
		return dimStyle.Render("● Logged out")
	}
	if !snap.Fetched {
		return busyStyle.Render("● Loading")
	}
	return lockedStyle.Render(fmt.Sprintf("● %d vehicles", len(snap.Vehicles)))
}
