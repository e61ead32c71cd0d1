package cli

import "github.com/charmbracelet/lipgloss"

// fg returns a style with an adaptive foreground (ANSI 256 codes for light
// and dark terminals), matching the TUI palette.
func fg(light, dark string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: light, Dark: dark})
}

// Semantic styles for CLI output.
var (
	styleBrand   = fg("30", "45").Bold(true)
	styleVersion = fg("28", "40")
	styleLabel   = fg("242", "240")
	styleValue   = fg("0", "15")
	styleSuccess = fg("28", "40")
	styleWarning = fg("136", "220").Bold(true)
	styleError   = fg("160", "196").Bold(true)
	styleHint    = fg("242", "240")
	styleCommand = fg("0", "15").Bold(true)
	styleUpdate  = fg("166", "208").Bold(true)

	badgeLocked   = fg("28", "40")
	badgeUnlocked = fg("136", "220")
)
