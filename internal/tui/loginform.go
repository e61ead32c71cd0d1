package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// LoginForm is the username/password form.
type LoginForm struct {
	usernameInput textinput.Model
	passwordInput textinput.Model
	focusIndex    int // 0=username, 1=password
	submitting    bool
}

// NewLoginForm creates a login form with the username focused.
func NewLoginForm(width int) *LoginForm {
	ui := textinput.New()
	ui.Placeholder = "Username"
	ui.CharLimit = 128
	ui.Width = inputWidth(width)

	pi := textinput.New()
	pi.Placeholder = "Password"
	pi.CharLimit = 256
	pi.EchoMode = textinput.EchoPassword
	pi.EchoCharacter = '•'
	pi.Width = inputWidth(width)

	lf := &LoginForm{
		usernameInput: ui,
		passwordInput: pi,
	}
	lf.usernameInput.Focus()
	return lf
}

func inputWidth(width int) int {
	w := width - 20
	if w < 20 {
		w = 20
	}
	return w
}

// SetWidth resizes the inputs.
func (lf *LoginForm) SetWidth(width int) {
	lf.usernameInput.Width = inputWidth(width)
	lf.passwordInput.Width = inputWidth(width)
}

// FocusNext moves to the next field.
func (lf *LoginForm) FocusNext() {
	lf.focusIndex = (lf.focusIndex + 1) % 2
	lf.focusCurrent()
}

// FocusPrev moves to the previous field.
func (lf *LoginForm) FocusPrev() {
	lf.focusIndex--
	if lf.focusIndex < 0 {
		lf.focusIndex = 1
	}
	lf.focusCurrent()
}

func (lf *LoginForm) focusCurrent() {
	lf.usernameInput.Blur()
	lf.passwordInput.Blur()
	if lf.focusIndex == 0 {
		lf.usernameInput.Focus()
	} else {
		lf.passwordInput.Focus()
	}
}

// FocusIndex returns the currently focused field index.
func (lf *LoginForm) FocusIndex() int {
	return lf.focusIndex
}

// Username returns the trimmed username.
func (lf *LoginForm) Username() string {
	return strings.TrimSpace(lf.usernameInput.Value())
}

// Password returns the password as typed.
func (lf *LoginForm) Password() string {
	return lf.passwordInput.Value()
}

// Ready reports whether both fields are filled.
func (lf *LoginForm) Ready() bool {
	return lf.Username() != "" && lf.Password() != ""
}

// SetSubmitting marks a login in flight; input is ignored meanwhile.
func (lf *LoginForm) SetSubmitting(v bool) {
	lf.submitting = v
	if !v {
		lf.passwordInput.SetValue("")
	}
}

// Submitting reports whether a login is in flight.
func (lf *LoginForm) Submitting() bool {
	return lf.submitting
}

// Update forwards a message to the focused input.
func (lf *LoginForm) Update(msg tea.Msg) tea.Cmd {
	if lf.submitting {
		return nil
	}
	var cmd tea.Cmd
	if lf.focusIndex == 0 {
		lf.usernameInput, cmd = lf.usernameInput.Update(msg)
	} else {
		lf.passwordInput, cmd = lf.passwordInput.Update(msg)
	}
	return cmd
}

// View renders the form.
func (lf *LoginForm) View(errMsg string) string {
	label := func(text string, focused bool) string {
		if focused {
			return formFocusedLabelStyle.Render(text)
		}
		return formLabelStyle.Render(text)
	}

	lines := []string{
		titleStyle.Render("Log in"),
		"",
		label("Username", lf.focusIndex == 0) + lf.usernameInput.View(),
		label("Password", lf.focusIndex == 1) + lf.passwordInput.View(),
		"",
	}
	switch {
	case lf.submitting:
		lines = append(lines, busyStyle.Render("Logging in…"))
	case errMsg != "":
		lines = append(lines, errorStyle.Render(errMsg))
	default:
		lines = append(lines, dimStyle.Render("Enter to log in"))
	}
	return strings.Join(lines, "\n")
}
