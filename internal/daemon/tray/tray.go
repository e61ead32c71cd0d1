package tray

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/lockbar-io/lockbar/internal/bridge"
	"github.com/lockbar-io/lockbar/internal/logging"
)

//go:embed icon.png
var iconData []byte

// Menu item IDs reported in bridge.MenuEvent.
const (
	MenuOpen = "open"
	MenuQuit = "quit"
)

// eventBuffer bounds the pending events. The listener drains them every poll
// interval, so a full buffer only happens when the listener is gone.
const eventBuffer = 64

// Tray owns the tray icon. Clicks are queued and handed out through
// TryMenuEvent and TryIconEvent.
type Tray struct {
	log *logging.Logger

	menuEvents chan bridge.MenuEvent
	iconEvents chan bridge.IconEvent

	mu      sync.RWMutex
	rect    func() bridge.Rect
	tooltip string
	ready   bool
	onQuit  func()
	update  string // latest release version, "" when up to date

	openItem   *systray.MenuItem
	updateItem *systray.MenuItem
	quitItem   *systray.MenuItem
}

// New creates a tray. rect supplies the icon rectangle for each click.
func New(log *logging.Logger, tooltip string, rect func() bridge.Rect) *Tray {
	return &Tray{
		log:        log.Component("tray"),
		menuEvents: make(chan bridge.MenuEvent, eventBuffer),
		iconEvents: make(chan bridge.IconEvent, eventBuffer),
		rect:       rect,
		tooltip:    tooltip,
	}
}

// Register sets up the tray without running its event loop, for processes
// where another UI runtime owns the main thread. onReady runs once the icon
// exists; onExit runs after Quit.
func (t *Tray) Register(onReady, onExit func()) {
	systray.Register(t.readyFunc(onReady), onExit)
}

// Run runs the tray event loop. This blocks the calling goroutine (must be main).
func (t *Tray) Run(onReady, onExit func()) {
	systray.Run(t.readyFunc(onReady), onExit)
}

// Quit removes the tray icon and runs the exit callback.
func Quit() {
	systray.Quit()
}

// OnQuit sets what the "Quit" menu item does.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	t.onQuit = fn
	t.mu.Unlock()
}

// SetIconRect replaces the icon rectangle source, e.g. after a settings reload.
func (t *Tray) SetIconRect(rect func() bridge.Rect) {
	t.mu.Lock()
	t.rect = rect
	t.mu.Unlock()
}

// SetTooltip updates the tooltip, immediately if the icon already exists.
func (t *Tray) SetTooltip(tooltip string) {
	t.mu.Lock()
	t.tooltip = tooltip
	ready := t.ready
	t.mu.Unlock()

	if ready {
		systray.SetTooltip(tooltip)
	}
}

// ShowUpdate shows the "update available" menu item for version.
func (t *Tray) ShowUpdate(version string) {
	t.mu.Lock()
	t.update = version
	ready := t.ready
	t.mu.Unlock()

	if ready {
		t.updateItem.SetTitle(updateTitle(version))
		t.updateItem.Show()
	}
}

func updateTitle(version string) string {
	return fmt.Sprintf("Update available: v%s (run lockbar update)", version)
}

// TryMenuEvent returns the next pending menu click without blocking.
func (t *Tray) TryMenuEvent() (bridge.MenuEvent, bool) {
	select {
	case ev := <-t.menuEvents:
		return ev, true
	default:
		return bridge.MenuEvent{}, false
	}
}

// TryIconEvent returns the next pending icon click without blocking.
func (t *Tray) TryIconEvent() (bridge.IconEvent, bool) {
	select {
	case ev := <-t.iconEvents:
		return ev, true
	default:
		return bridge.IconEvent{}, false
	}
}

// Click records an icon click at the current icon rectangle.
func (t *Tray) Click() {
	t.mu.RLock()
	rectFn := t.rect
	t.mu.RUnlock()

	var rect bridge.Rect
	if rectFn != nil {
		rect = rectFn()
	}

	select {
	case t.iconEvents <- bridge.IconEvent{Rect: rect}:
	default:
		t.log.Warn().Msg("Icon event buffer full, dropping click")
	}
}

func (t *Tray) menuClicked(id, title string) {
	select {
	case t.menuEvents <- bridge.MenuEvent{ID: id, Title: title}:
	default:
		t.log.Warn().Str("item", id).Msg("Menu event buffer full, dropping click")
	}
}

func (t *Tray) readyFunc(onReady func()) func() {
	return func() {
		t.mu.Lock()
		tooltip := t.tooltip
		t.mu.Unlock()

		systray.SetTemplateIcon(iconData, iconData)
		systray.SetTooltip(tooltip)

		header := systray.AddMenuItem("Lockbar", "")
		header.Disable()
		systray.AddSeparator()

		t.openItem = systray.AddMenuItem("Open Lockbar", "Show or hide the Lockbar panel")
		systray.AddSeparator()
		t.updateItem = systray.AddMenuItem("", "")
		t.updateItem.Disable()
		t.updateItem.Hide()
		t.quitItem = systray.AddMenuItem("Quit", "Quit Lockbar")

		t.mu.Lock()
		t.ready = true
		update := t.update
		t.mu.Unlock()

		if update != "" {
			t.updateItem.SetTitle(updateTitle(update))
			t.updateItem.Show()
		}

		t.log.Info().Msg("Tray icon ready")

		if onReady != nil {
			onReady()
		}

		go t.handleClicks()
	}
}

func (t *Tray) handleClicks() {
	for {
		select {
		case <-t.openItem.ClickedCh:
			t.menuClicked(MenuOpen, "Open Lockbar")
			// The menu item stands in for the icon click the library
			// does not report.
			t.Click()

		case <-t.quitItem.ClickedCh:
			t.menuClicked(MenuQuit, "Quit")

			t.mu.RLock()
			onQuit := t.onQuit
			t.mu.RUnlock()
			if onQuit != nil {
				onQuit()
			} else {
				Quit()
			}
		}
	}
}
