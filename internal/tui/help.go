package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var (
	helpSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	helpKeyStyle     = lipgloss.NewStyle().Width(16).Bold(true).Foreground(colorWhite)
)

type helpSection struct {
	title    string
	bindings []key.Binding
}

func helpSections() []helpSection {
	return []helpSection{
		{"Global", []key.Binding{globalKeys.Quit, globalKeys.Help}},
		{"Login", []key.Binding{loginKeys.Next, loginKeys.Prev, loginKeys.Submit}},
		{"Vehicles", []key.Binding{listKeys.Down, listKeys.Open, listKeys.Refresh}},
		{"Vehicle", []key.Binding{detailKeys.Toggle, detailKeys.Back}},
	}
}

// renderHelp renders the help dialog from the active key bindings.
func renderHelp(width int) string {
	boxWidth := max(30, min(60, width-4))

	var b strings.Builder
	b.WriteString(overlayTitleStyle.Render("Keyboard Shortcuts"))
	for _, sec := range helpSections() {
		b.WriteString("\n\n" + helpSectionStyle.Render(sec.title))
		for _, binding := range sec.bindings {
			h := binding.Help()
			b.WriteString("\n  " + helpKeyStyle.Render(h.Key) + dimStyle.Render(h.Desc))
		}
	}
	b.WriteString("\n\n" + dimStyle.Render("Esc or Ctrl+h closes this"))

	return overlayStyle.Width(boxWidth).Render(b.String())
}
