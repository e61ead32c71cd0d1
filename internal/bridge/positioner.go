package bridge

import (
	"context"

	"github.com/lockbar-io/lockbar/internal/logging"
)

// Window is the popup window handle the positioner drives.
type Window interface {
	OuterSize() Size
	IsVisible() bool
	SetVisible(visible bool)
	SetOuterPosition(x, y float64)
}

// Positioner is the only consumer of the coordinate channel. For every point
// it flips the window's visibility and moves the window under the point.
type Positioner struct {
	rx     *Receiver
	window Window
	log    *logging.Logger
}

// NewPositioner binds the receiver to a window. Take the receiver with
// Channel.MustTakeReceiver so that a second positioner cannot be wired.
func NewPositioner(rx *Receiver, window Window, log *logging.Logger) *Positioner {
	return &Positioner{
		rx:     rx,
		window: window,
		log:    log.Component("positioner"),
	}
}

// Run handles points until the channel ends or ctx is done.
func (p *Positioner) Run(ctx context.Context) {
	p.log.Debug().Msg("Window positioner started")
	for {
		pt, ok := p.rx.Recv(ctx)
		if !ok {
			p.log.Debug().Msg("Window positioner stopped")
			return
		}
		p.Handle(pt)
	}
}

// Handle applies a single point: read size, toggle, reposition.
func (p *Positioner) Handle(pt Point) {
	size := p.window.OuterSize()

	visible := !p.window.IsVisible()
	p.window.SetVisible(visible)

	// Hidden windows are moved too so the next show lands under the icon.
	x := pt.X - size.Width/2
	p.window.SetOuterPosition(x, pt.Y)

	p.log.Debug().
		Stringer("point", pt).
		Bool("visible", visible).
		Float64("x", x).
		Float64("y", pt.Y).
		Msg("Window toggled")
}
