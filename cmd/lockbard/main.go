// Package main is the entry point for the lockbard tray app.
package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	goruntime "runtime"
	"syscall"

	"github.com/lockbar-io/lockbar/internal/api"
	"github.com/lockbar-io/lockbar/internal/bridge"
	"github.com/lockbar-io/lockbar/internal/buildinfo"
	"github.com/lockbar-io/lockbar/internal/config"
	"github.com/lockbar-io/lockbar/internal/daemon/panel"
	"github.com/lockbar-io/lockbar/internal/daemon/tray"
	"github.com/lockbar-io/lockbar/internal/daemon/updates"
	"github.com/lockbar-io/lockbar/internal/daemon/watcher"
	"github.com/lockbar-io/lockbar/internal/logging"
	"github.com/lockbar-io/lockbar/internal/models"
	"github.com/lockbar-io/lockbar/internal/session"
	"github.com/lockbar-io/lockbar/internal/views"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	version := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *version {
		printVersion()
		return
	}

	if err := config.EnsureGlobalDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create global directory: %v\n", err)
		os.Exit(1)
	}

	logFile, logPath, err := config.OpenDaemonLog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log := logging.NewWithFile(logFile).Component("lockbard")

	running, info, err := config.IsDaemonRunning()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to check daemon status")
	}
	if running {
		log.Fatal().Int("pid", info.PID).Msg("Lockbar is already running")
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load settings, using defaults")
		settings = models.NewSettings()
	}
	applyLogLevel(log, settings.Logging.Level, *debug)

	if err := run(log, settings, logPath, *debug); err != nil {
		log.Error().Err(err).Msg("Lockbar exited with error")
		os.Exit(1)
	}
}

func run(log *logging.Logger, settings *models.Settings, logPath string, debug bool) error {
	client, err := api.NewClient(settings.API, log)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	state := session.NewState(client)
	controller := views.NewController(state, log)

	window := panel.NewWindow(settings.Window.Width, settings.Window.Height)
	channel := bridge.NewChannel()

	tr := tray.New(log, settings.Tray.Tooltip, iconRectFunc(settings.Tray.IconRect, window, settings.Window.Height))
	listener := bridge.NewListener(tr, channel.Sender(), log, settings.Tray.PollInterval)

	globalDir, err := config.GlobalDir()
	if err != nil {
		return err
	}
	w, err := watcher.New(globalDir, log)
	if err != nil {
		return fmt.Errorf("failed to create settings watcher: %w", err)
	}

	distFS, err := fs.Sub(assets, "frontend/dist")
	if err != nil {
		return fmt.Errorf("failed to load frontend assets: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var app *panel.App
	app = panel.NewApp(panel.Options{
		Title:      "Lockbar",
		Width:      settings.Window.Width,
		Height:     settings.Window.Height,
		Assets:     distFS,
		Controller: controller,
		Window:     window,
		Log:        log,
		OnStartup: func(runtimeCtx context.Context) {
			if err := config.SaveDaemonInfo(models.NewDaemonInfo(os.Getpid(), logPath)); err != nil {
				log.Error().Err(err).Msg("Failed to write daemon info")
			}

			controller.Start(ctx)

			positioner := bridge.NewPositioner(channel.MustTakeReceiver(), window, log)
			go positioner.Run(ctx)
			listener.Start(ctx)

			if err := w.Start(); err != nil {
				log.Warn().Err(err).Msg("Failed to watch settings")
			} else {
				go applyReloads(ctx, log, w, listener, tr, window, settings.Window.Height, debug)
			}

			updates.NewChecker(log).Start(ctx, func(s updates.State) {
				tr.ShowUpdate(s.LatestVersion)
			})

			tr.OnQuit(app.Quit)
			go quitOnSignal(ctx, log, app)

			log.Info().
				Int("pid", os.Getpid()).
				Str("version", buildinfo.Version).
				Msg("Lockbar started")
		},
		OnShutdown: func() {
			cancel()
			w.Stop()
			channel.Close()
			controller.Stop()
			tray.Quit()

			if err := config.RemoveDaemonInfo(); err != nil {
				log.Warn().Err(err).Msg("Failed to remove daemon info")
			}
			log.Info().Msg("Lockbar stopped")
		},
	})

	// The window runtime owns the main thread; the tray only registers.
	tr.Register(nil, nil)

	return panel.Run(app)
}

// iconRectFunc resolves the icon rectangle at click time so screen changes
// are picked up.
func iconRectFunc(configured *models.IconRect, window *panel.Window, windowHeight int) func() bridge.Rect {
	return func() bridge.Rect {
		width, height, ok := window.PrimaryScreen()
		if !ok {
			width, height = 1440, 900
		}
		return tray.IconRect(configured, tray.Screen{Width: width, Height: height}, goruntime.GOOS, float64(windowHeight))
	}
}

func applyReloads(ctx context.Context, log *logging.Logger, w *watcher.Watcher, listener *bridge.Listener,
	tr *tray.Tray, window *panel.Window, windowHeight int, debug bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-w.Events():
			if ev.Err != nil {
				continue
			}
			s := ev.Settings
			listener.SetPollInterval(s.Tray.PollInterval)
			tr.SetTooltip(s.Tray.Tooltip)
			tr.SetIconRect(iconRectFunc(s.Tray.IconRect, window, windowHeight))
			applyLogLevel(log, s.Logging.Level, debug)
		}
	}
}

func applyLogLevel(log *logging.Logger, level string, debug bool) {
	if debug {
		level = "debug"
	}
	if err := logging.SetLevel(level); err != nil {
		log.Warn().Err(err).Msg("Ignoring log level")
	}
}

// quitOnSignal quits the app on SIGINT/SIGTERM.
func quitOnSignal(ctx context.Context, log *logging.Logger, app *panel.App) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")
		app.Quit()
	}
}
