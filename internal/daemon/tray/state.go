// Package tray implements the system tray icon and menu for lockbard and
// exposes tray activity as a non-blocking bridge.EventSource.
package tray

import (
	"github.com/lockbar-io/lockbar/internal/bridge"
	"github.com/lockbar-io/lockbar/internal/models"
)

// Screen is the size of the primary display in pixels.
type Screen struct {
	Width  float64
	Height float64
}

// Approximate tray geometry used when no icon_rect is configured.
const (
	iconSize      = 22
	iconMargin    = 96
	menuBarHeight = 24
	taskbarHeight = 48
)

// IconRect returns the rectangle clicks are anchored to. A configured
// rectangle wins. Otherwise it is derived from the screen: under the menu
// bar at the top right on macOS and Linux, and above the taskbar at the
// bottom right on Windows, where windowHeight lifts the anchor so the
// panel opens above the taskbar.
func IconRect(configured *models.IconRect, screen Screen, goos string, windowHeight float64) bridge.Rect {
	if configured != nil {
		return bridge.Rect{
			Left:   configured.Left,
			Right:  configured.Right,
			Top:    configured.Top,
			Bottom: configured.Bottom,
		}
	}

	right := screen.Width - iconMargin
	if right < iconSize {
		right = iconSize
	}
	left := right - iconSize

	if goos == "windows" {
		bottom := screen.Height - taskbarHeight - windowHeight
		if bottom < 0 {
			bottom = 0
		}
		return bridge.Rect{Left: left, Right: right, Top: bottom - iconSize, Bottom: bottom}
	}
	return bridge.Rect{Left: left, Right: right, Top: 0, Bottom: menuBarHeight}
}
