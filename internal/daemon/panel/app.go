// Package panel provides the Wails popup window that hosts the lockbar
// views. Exported methods of App are callable from the frontend.
package panel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/lockbar-io/lockbar/internal/logging"
	"github.com/lockbar-io/lockbar/internal/session"
	"github.com/lockbar-io/lockbar/internal/views"
)

// Options configures the panel window.
type Options struct {
	Title  string
	Width  int
	Height int
	Assets fs.FS

	Controller *views.Controller
	Window     *Window
	Log        *logging.Logger

	// OnStartup runs once the runtime is up; the window can be driven from
	// then on.
	OnStartup func(ctx context.Context)
	// OnShutdown runs when the application terminates.
	OnShutdown func()
}

// App is the object bound to the frontend.
type App struct {
	opts Options
	log  *logging.Logger

	mu          sync.Mutex
	ctx         context.Context
	eventBridge *EventBridge
}

// NewApp creates the bound application object.
func NewApp(opts Options) *App {
	return &App{
		opts: opts,
		log:  opts.Log.Component("panel"),
	}
}

func (a *App) startup(ctx context.Context) {
	a.mu.Lock()
	a.ctx = ctx
	a.eventBridge = NewEventBridge(ctx, a.opts.Controller, a.log)
	a.mu.Unlock()

	if a.opts.Window != nil {
		a.opts.Window.attach(ctx)
	}
	a.eventBridge.Start()

	if a.opts.OnStartup != nil {
		a.opts.OnStartup(ctx)
	}
	a.log.Info().Msg("Panel started")
}

func (a *App) shutdown(ctx context.Context) {
	a.log.Info().Msg("Panel shutting down")

	a.mu.Lock()
	eb := a.eventBridge
	a.mu.Unlock()
	if eb != nil {
		eb.Stop()
	}

	if a.opts.OnShutdown != nil {
		a.opts.OnShutdown()
	}
}

func (a *App) context() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

// Quit terminates the application.
func (a *App) Quit() {
	a.mu.Lock()
	ctx := a.ctx
	a.mu.Unlock()
	if ctx != nil {
		runtime.Quit(ctx)
	}
}

// State returns the current snapshot.
func (a *App) State() views.Snapshot {
	return a.opts.Controller.Snapshot()
}

// Home navigates to the entry route and returns the resulting snapshot.
func (a *App) Home() views.Snapshot {
	a.opts.Controller.Navigate(views.Home())
	return a.opts.Controller.Snapshot()
}

// Route returns the path of the current view.
func (a *App) Route() string {
	return a.opts.Controller.Route().Path()
}

// Navigate switches to the view at path.
func (a *App) Navigate(path string) (views.Snapshot, error) {
	route, err := views.ParseRoute(path)
	if err != nil {
		return a.opts.Controller.Snapshot(), err
	}
	a.opts.Controller.Navigate(route)
	return a.opts.Controller.Snapshot(), nil
}

// Login logs in. The error message is also part of the snapshot.
func (a *App) Login(username, password string) (views.Snapshot, error) {
	err := a.opts.Controller.Login(a.context(), username, password)
	return a.opts.Controller.Snapshot(), err
}

// Vehicles returns the fetched vehicles. An empty list before the first
// fetch completes.
func (a *App) Vehicles() []views.VehicleView {
	return a.opts.Controller.Snapshot().Vehicles
}

// RefreshVehicles refetches the vehicle list.
func (a *App) RefreshVehicles() (views.Snapshot, error) {
	err := a.opts.Controller.RefreshVehicles(a.context())
	return a.opts.Controller.Snapshot(), err
}

// Vehicle returns one vehicle of the fetched list.
func (a *App) Vehicle(key string) (views.VehicleView, error) {
	if _, err := a.opts.Controller.Vehicle(key); err != nil {
		return views.VehicleView{}, err
	}
	view, ok := a.opts.Controller.Snapshot().Find(key)
	if !ok {
		return views.VehicleView{}, fmt.Errorf("%w: %s", views.ErrVehicleNotFound, key)
	}
	return view, nil
}

// ToggleLock locks or unlocks the vehicle and returns its new lock state.
func (a *App) ToggleLock(key string) (string, error) {
	state, err := a.opts.Controller.ToggleLock(a.context(), key)
	if errors.Is(err, session.ErrCommandInFlight) {
		a.log.Debug().Str("vehicle", key).Msg("Toggle ignored, command in flight")
	}
	return state.String(), err
}

// Hide hides the panel window.
func (a *App) Hide() {
	if a.opts.Window != nil {
		a.opts.Window.SetVisible(false)
	}
}

// Run launches the Wails application. It blocks until the application quits.
func Run(app *App) error {
	opts := app.opts
	title := opts.Title
	if title == "" {
		title = "Lockbar"
	}

	err := wails.Run(&options.App{
		Title:             title,
		Width:             opts.Width,
		Height:            opts.Height,
		Frameless:         true,
		DisableResize:     true,
		StartHidden:       true,
		AlwaysOnTop:       true,
		HideWindowOnClose: true,
		AssetServer: &assetserver.Options{
			Assets: opts.Assets,
		},
		BackgroundColour: &options.RGBA{R: 248, G: 250, B: 252, A: 1},
		OnStartup:        app.startup,
		OnShutdown:       app.shutdown,
		Bind: []interface{}{
			app,
		},
		Mac: &mac.Options{
			TitleBar: mac.TitleBarHidden(),
			About: &mac.AboutInfo{
				Title:   "Lockbar",
				Message: "Lock and unlock your vehicles from the menu bar.",
			},
		},
	})
	if err != nil {
		return fmt.Errorf("wails application error: %w", err)
	}
	return nil
}
