package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/lockbar-io/lockbar/internal/views"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// VehicleList is the cursor over the fetched vehicles.
type VehicleList struct {
	vehicles     []views.VehicleView
	cursor       int
	scrollOffset int
	height       int
	spinnerFrame int
}

// NewVehicleList creates an empty list.
func NewVehicleList() *VehicleList {
	return &VehicleList{height: 10}
}

// SetVehicles replaces the list, keeping the cursor on the same key.
func (vl *VehicleList) SetVehicles(vehicles []views.VehicleView) {
	selected, hadSelection := vl.Selected()
	vl.vehicles = vehicles
	vl.cursor = 0
	if hadSelection {
		for i, v := range vehicles {
			if v.Key == selected.Key {
				vl.cursor = i
				break
			}
		}
	}
	vl.clampScroll()
}

// SetHeight sets the number of visible rows.
func (vl *VehicleList) SetHeight(h int) {
	if h < 1 {
		h = 1
	}
	vl.height = h
	vl.clampScroll()
}

// MoveUp moves the cursor up.
func (vl *VehicleList) MoveUp() {
	if vl.cursor > 0 {
		vl.cursor--
	}
	vl.clampScroll()
}

// MoveDown moves the cursor down.
func (vl *VehicleList) MoveDown() {
	if vl.cursor < len(vl.vehicles)-1 {
		vl.cursor++
	}
	vl.clampScroll()
}

func (vl *VehicleList) clampScroll() {
	if vl.cursor < vl.scrollOffset {
		vl.scrollOffset = vl.cursor
	}
	if vl.cursor >= vl.scrollOffset+vl.height {
		vl.scrollOffset = vl.cursor - vl.height + 1
	}
	if vl.scrollOffset < 0 {
		vl.scrollOffset = 0
	}
}

// Selected returns the vehicle under the cursor.
func (vl *VehicleList) Selected() (views.VehicleView, bool) {
	if vl.cursor < 0 || vl.cursor >= len(vl.vehicles) {
		return views.VehicleView{}, false
	}
	return vl.vehicles[vl.cursor], true
}

// AnyBusy reports whether a vehicle has a command in flight.
func (vl *VehicleList) AnyBusy() bool {
	for _, v := range vl.vehicles {
		if v.Busy {
			return true
		}
	}
	return false
}

// Tick advances the spinner frame.
func (vl *VehicleList) Tick() {
	vl.spinnerFrame = (vl.spinnerFrame + 1) % len(spinnerFrames)
}

// View renders the list.
func (vl *VehicleList) View(width int) string {
	if len(vl.vehicles) == 0 {
		return dimStyle.Render("No vehicles on this account.")
	}

	var lines []string
	end := vl.scrollOffset + vl.height
	if end > len(vl.vehicles) {
		end = len(vl.vehicles)
	}

	for i := vl.scrollOffset; i < end; i++ {
		v := vl.vehicles[i]
		badge := vl.badge(v)
		title := v.Label

		// Badge plus two spaces of indent.
		maxWidth := width - lipgloss.Width(badge) - 3
		if maxWidth > 0 {
			title = ansi.Truncate(title, maxWidth, "…")
		}

		line := badge + " " + title
		if i == vl.cursor {
			line = selectedItemStyle.Width(width - 2).Render(line)
		}
		lines = append(lines, "  "+line)
	}

	if vl.scrollOffset > 0 {
		lines = append([]string{dimStyle.Render("  ▲ more")}, lines...)
	}
	if end < len(vl.vehicles) {
		lines = append(lines, dimStyle.Render("  ▼ more"))
	}

	return strings.Join(lines, "\n")
}

func (vl *VehicleList) badge(v views.VehicleView) string {
	switch {
	case v.Busy:
		return busyStyle.Render("[" + spinnerFrames[vl.spinnerFrame%len(spinnerFrames)] + "]")
	case v.Lock == "unlocked":
		return unlockedStyle.Render("[U]")
	default:
		return lockedStyle.Render("[L]")
	}
}

// renderDetail renders the vehicle detail view.
func renderDetail(v views.VehicleView, spinnerFrame int, width int) string {
	lines := []string{
		titleStyle.Render(ansi.Truncate(v.NickName, width, "…")),
		dimStyle.Render(ansi.Truncate(fmt.Sprintf("%s %s", v.ModelName, v.Trim), width, "…")),
		"",
	}

	switch {
	case v.Busy:
		lines = append(lines, busyStyle.Render(spinnerFrames[spinnerFrame%len(spinnerFrames)]+" Sending command…"))
	case v.Lock == "unlocked":
		lines = append(lines, unlockedStyle.Render("Unlocked"), "", keyHint("Enter", v.Action))
	default:
		lines = append(lines, lockedStyle.Render("Locked"), "", keyHint("Enter", v.Action))
	}

	if v.Error != "" {
		lines = append(lines, "", errorStyle.Render(v.Error))
	}
	return strings.Join(lines, "\n")
}
