package tui

import "github.com/charmbracelet/lipgloss"

// Colors using AdaptiveColor for light/dark terminal support.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Layout styles.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(lipgloss.AdaptiveColor{Light: "235", Dark: "236"})

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

// Route tab styles.
var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(colorWhite)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorDim)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// Vehicle styles.
var (
	lockedStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	unlockedStyle = lipgloss.NewStyle().Foreground(colorYellow)
	busyStyle     = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(colorRed)
	dimStyle      = lipgloss.NewStyle().Foreground(colorDim)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	selectedItemStyle = lipgloss.NewStyle().
				Background(lipgloss.AdaptiveColor{Light: "254", Dark: "237"})
)

// Overlay styles.
var (
	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorWhite).
			Padding(1, 2)

	overlayTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWhite).
				MarginBottom(1)

	overlayDimStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// Key hint styles for status bar.
var (
	keyStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	hintStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// Login form styles.
var (
	formLabelStyle = lipgloss.NewStyle().
			Width(10).
			Foreground(colorDim)

	formFocusedLabelStyle = lipgloss.NewStyle().
				Width(10).
				Foreground(colorWhite).
				Bold(true)
)
