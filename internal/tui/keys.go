package tui

import "github.com/charmbracelet/bubbles/key"

// GlobalKeys are always active.
type GlobalKeys struct {
	Quit key.Binding
	Help key.Binding
}

var globalKeys = GlobalKeys{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+q", "ctrl+c"),
		key.WithHelp("Ctrl+q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("ctrl+h"),
		key.WithHelp("Ctrl+h", "help"),
	),
}

// LoginKeys are active on the login form.
type LoginKeys struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
}

var loginKeys = LoginKeys{
	Next: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("Tab", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("Shift+Tab", "previous field"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "log in"),
	),
}

// ListKeys are active on the vehicle list.
type ListKeys struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Refresh key.Binding
}

var listKeys = ListKeys{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("j/k", "navigate"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("j/k", "navigate"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "open"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
}

// DetailKeys are active on the vehicle detail view.
type DetailKeys struct {
	Toggle key.Binding
	Back   key.Binding
}

var detailKeys = DetailKeys{
	Toggle: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("Enter", "lock/unlock"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "backspace"),
		key.WithHelp("Esc", "back"),
	),
}
