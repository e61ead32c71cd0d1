package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// renderOverlay draws fg centered over a dimmed, uncolored copy of bg.
func renderOverlay(bg, fg string, width, height int) string {
	rows := strings.Split(bg, "\n")
	for i, row := range rows {
		rows[i] = overlayDimStyle.Render(ansi.Strip(row))
	}

	fgWidth, fgHeight := lipgloss.Size(fg)
	col := max(1, (width-fgWidth)/2)
	top := max(1, (height-fgHeight)/2)

	// Grow the background so a tall dialog is never clipped.
	for len(rows) < top+fgHeight {
		rows = append(rows, "")
	}

	for i, line := range strings.Split(fg, "\n") {
		rows[top+i] = splice(rows[top+i], line, col)
	}
	return strings.Join(rows, "\n")
}

// splice writes fg into bg starting at display column col.
func splice(bg, fg string, col int) string {
	left := ansi.Truncate(bg, col, "")
	if pad := col - ansi.StringWidth(left); pad > 0 {
		left += strings.Repeat(" ", pad)
	}

	right := ""
	bgWidth := ansi.StringWidth(bg)
	if end := col + ansi.StringWidth(fg); end < bgWidth {
		right = ansi.Cut(bg, end, bgWidth)
	}
	return left + ansi.ResetStyle + fg + ansi.ResetStyle + right
}
