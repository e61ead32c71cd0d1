package tray

import (
	"testing"

	"github.com/lockbar-io/lockbar/internal/bridge"
	"github.com/lockbar-io/lockbar/internal/logging"
	"github.com/lockbar-io/lockbar/internal/models"
)

func TestIconRect(t *testing.T) {
	screen := Screen{Width: 1440, Height: 900}

	tests := []struct {
		name       string
		configured *models.IconRect
		goos       string
		want       bridge.Rect
	}{
		{
			name:       "configured wins",
			configured: &models.IconRect{Left: 100, Right: 140, Top: 478, Bottom: 500},
			goos:       "windows",
			want:       bridge.Rect{Left: 100, Right: 140, Top: 478, Bottom: 500},
		},
		{
			name: "macOS menu bar",
			goos: "darwin",
			want: bridge.Rect{Left: 1322, Right: 1344, Top: 0, Bottom: 24},
		},
		{
			name: "linux top bar",
			goos: "linux",
			want: bridge.Rect{Left: 1322, Right: 1344, Top: 0, Bottom: 24},
		},
		{
			name: "windows taskbar",
			goos: "windows",
			want: bridge.Rect{Left: 1322, Right: 1344, Top: 430, Bottom: 452},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IconRect(tt.configured, screen, tt.goos, 400)
			if got != tt.want {
				t.Errorf("IconRect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestIconRectTinyScreen(t *testing.T) {
	got := IconRect(nil, Screen{Width: 50, Height: 100}, "windows", 400)
	if got.Left < 0 || got.Bottom < 0 {
		t.Errorf("IconRect() = %+v, want non-negative anchor", got)
	}
}

func TestTrayEventQueues(t *testing.T) {
	rect := bridge.Rect{Left: 100, Right: 140, Bottom: 500}
	tr := New(logging.Nop(), "Lockbar", func() bridge.Rect { return rect })

	if _, ok := tr.TryMenuEvent(); ok {
		t.Error("TryMenuEvent() ok = true on empty tray")
	}
	if _, ok := tr.TryIconEvent(); ok {
		t.Error("TryIconEvent() ok = true on empty tray")
	}

	tr.menuClicked(MenuOpen, "Open Lockbar")
	tr.Click()

	menu, ok := tr.TryMenuEvent()
	if !ok || menu.ID != MenuOpen {
		t.Errorf("TryMenuEvent() = %+v, %v", menu, ok)
	}
	icon, ok := tr.TryIconEvent()
	if !ok || icon.Rect != rect {
		t.Errorf("TryIconEvent() = %+v, %v; want %+v", icon, ok, rect)
	}
	if icon.Rect.Anchor() != (bridge.Point{X: 120, Y: 500}) {
		t.Errorf("anchor = %v", icon.Rect.Anchor())
	}
}

func TestTrayClickUsesCurrentRect(t *testing.T) {
	tr := New(logging.Nop(), "Lockbar", nil)
	tr.SetIconRect(func() bridge.Rect { return bridge.Rect{Left: 10, Right: 20, Bottom: 30} })
	tr.Click()

	ev, ok := tr.TryIconEvent()
	if !ok || ev.Rect.Right != 20 {
		t.Errorf("TryIconEvent() = %+v, %v", ev, ok)
	}
}

func TestTrayClickNeverBlocks(t *testing.T) {
	tr := New(logging.Nop(), "Lockbar", func() bridge.Rect { return bridge.Rect{} })
	for i := 0; i < eventBuffer*2; i++ {
		tr.Click()
		tr.menuClicked(MenuOpen, "Open Lockbar")
	}

	n := 0
	for {
		if _, ok := tr.TryIconEvent(); !ok {
			break
		}
		n++
	}
	if n != eventBuffer {
		t.Errorf("queued icon events = %d, want %d", n, eventBuffer)
	}
}

func TestTraySatisfiesEventSource(t *testing.T) {
	var _ bridge.EventSource = New(logging.Nop(), "", nil)
}

func TestShowUpdateBeforeReady(t *testing.T) {
	tr := New(logging.Nop(), "Lockbar", nil)
	tr.ShowUpdate("1.4.0")

	if tr.update != "1.4.0" {
		t.Errorf("pending update = %q, want 1.4.0", tr.update)
	}
	if got := updateTitle("1.4.0"); got != "Update available: v1.4.0 (run lockbar update)" {
		t.Errorf("updateTitle() = %q", got)
	}
}
