// Package bridge moves tray-icon clicks from a blocking OS event loop into the
// goroutine that owns the popup window.
//
// A Listener polls the tray sources on its own OS thread and pushes anchor
// points into a Channel. A single Positioner drains the Channel and toggles and
// moves the window. The Channel is the only value shared between the two sides.
package bridge

import "fmt"

// Point is a screen coordinate in physical pixels.
type Point struct {
	X float64
	Y float64
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Rect is the bounding rectangle of the tray icon as reported by the shell.
type Rect struct {
	Left   float64 `yaml:"left" json:"left"`
	Right  float64 `yaml:"right" json:"right"`
	Top    float64 `yaml:"top" json:"top"`
	Bottom float64 `yaml:"bottom" json:"bottom"`
}

// Anchor returns the horizontal midpoint of the bottom edge.
func (r Rect) Anchor() Point {
	return Point{
		X: r.Left + (r.Right-r.Left)/2,
		Y: r.Bottom,
	}
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Size is a window's outer size including decorations.
type Size struct {
	Width  float64
	Height float64
}
