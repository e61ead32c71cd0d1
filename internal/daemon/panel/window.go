package panel

import (
	"context"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/lockbar-io/lockbar/internal/bridge"
)

// windowAPI is the slice of the Wails runtime the window adapter uses.
type windowAPI interface {
	GetSize(ctx context.Context) (int, int)
	SetPosition(ctx context.Context, x, y int)
	Show(ctx context.Context)
	Hide(ctx context.Context)
	Screens(ctx context.Context) ([]runtime.Screen, error)
}

type wailsWindowAPI struct{}

func (wailsWindowAPI) GetSize(ctx context.Context) (int, int) { return runtime.WindowGetSize(ctx) }
func (wailsWindowAPI) SetPosition(ctx context.Context, x, y int) {
	runtime.WindowSetPosition(ctx, x, y)
}
func (wailsWindowAPI) Show(ctx context.Context) { runtime.WindowShow(ctx) }
func (wailsWindowAPI) Hide(ctx context.Context) { runtime.WindowHide(ctx) }
func (wailsWindowAPI) Screens(ctx context.Context) ([]runtime.Screen, error) {
	return runtime.ScreenGetAll(ctx)
}

// Window adapts the Wails main window to bridge.Window. The runtime has no
// visibility query, so visibility is tracked here; every show and hide goes
// through this type.
type Window struct {
	api      windowAPI
	fallback bridge.Size

	mu      sync.Mutex
	ctx     context.Context
	visible bool
}

// NewWindow creates an adapter for a window of the given launch size. The
// window starts hidden.
func NewWindow(width, height int) *Window {
	return newWindow(wailsWindowAPI{}, width, height)
}

func newWindow(api windowAPI, width, height int) *Window {
	return &Window{
		api:      api,
		fallback: bridge.Size{Width: float64(width), Height: float64(height)},
	}
}

// attach binds the runtime context received in OnStartup.
func (w *Window) attach(ctx context.Context) {
	w.mu.Lock()
	w.ctx = ctx
	w.mu.Unlock()
}

func (w *Window) runtimeCtx() context.Context {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctx
}

// OuterSize returns the current window size, or the launch size before the
// runtime is up.
func (w *Window) OuterSize() bridge.Size {
	ctx := w.runtimeCtx()
	if ctx == nil {
		return w.fallback
	}
	width, height := w.api.GetSize(ctx)
	if width <= 0 || height <= 0 {
		return w.fallback
	}
	return bridge.Size{Width: float64(width), Height: float64(height)}
}

// IsVisible reports the last visibility set through the adapter.
func (w *Window) IsVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

// SetVisible shows or hides the window.
func (w *Window) SetVisible(visible bool) {
	w.mu.Lock()
	w.visible = visible
	ctx := w.ctx
	w.mu.Unlock()

	if ctx == nil {
		return
	}
	if visible {
		w.api.Show(ctx)
	} else {
		w.api.Hide(ctx)
	}
}

// SetOuterPosition moves the window's top-left corner. Coordinates are
// rounded to whole pixels.
func (w *Window) SetOuterPosition(x, y float64) {
	ctx := w.runtimeCtx()
	if ctx == nil {
		return
	}
	w.api.SetPosition(ctx, round(x), round(y))
}

// PrimaryScreen returns the size of the primary display.
func (w *Window) PrimaryScreen() (width, height float64, ok bool) {
	ctx := w.runtimeCtx()
	if ctx == nil {
		return 0, 0, false
	}
	screens, err := w.api.Screens(ctx)
	if err != nil || len(screens) == 0 {
		return 0, 0, false
	}
	screen := screens[0]
	for _, s := range screens {
		if s.IsPrimary {
			screen = s
			break
		}
	}
	return float64(screen.Width), float64(screen.Height), true
}

func round(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}
