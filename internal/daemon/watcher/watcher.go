// Package watcher reloads lockbard settings when settings.yaml changes.
package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lockbar-io/lockbar/internal/config"
	"github.com/lockbar-io/lockbar/internal/logging"
	"github.com/lockbar-io/lockbar/internal/models"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// Event is a settings reload. Settings is nil when Err is set.
type Event struct {
	Path     string
	Settings *models.Settings
	Err      error
}

// Watcher watches the global directory for settings changes.
type Watcher struct {
	dir       string
	fsWatcher *fsnotify.Watcher
	log       *logging.Logger

	eventsChan chan Event
	done       chan struct{}
	stopOnce   sync.Once

	debounce   time.Duration
	debounceMu sync.Mutex
	timer      *time.Timer
}

// New creates a watcher for the settings file in dir.
func New(dir string, log *logging.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		dir:        dir,
		fsWatcher:  fsWatcher,
		log:        log.Component("watcher"),
		eventsChan: make(chan Event, 16),
		done:       make(chan struct{}),
		debounce:   DefaultDebounce,
	}, nil
}

// Events returns the channel for receiving reloads.
func (w *Watcher) Events() <-chan Event {
	return w.eventsChan
}

// Start starts watching. The directory is watched rather than the file so
// atomic replace-by-rename writes are seen.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return err
	}
	go w.processEvents()
	w.log.Debug().Str("dir", w.dir).Msg("Watching settings")
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.debounceMu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.debounceMu.Unlock()
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("Watcher error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != config.SettingsFileName {
		return
	}
	// Rename covers atomic writes (temp file renamed over the target).
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	w.log.Debug().Str("op", event.Op.String()).Str("path", event.Name).Msg("Settings file changed")
	w.debounceReload()
}

func (w *Watcher) debounceReload() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.reload()
	})
}

// reload always reads the target path; after a rename the event may name
// the temp file.
func (w *Watcher) reload() {
	target := filepath.Join(w.dir, config.SettingsFileName)

	settings, err := config.LoadSettingsFile(target)
	ev := Event{Path: target, Settings: settings, Err: err}
	if err != nil {
		ev.Settings = nil
		w.log.Warn().Err(err).Str("path", target).Msg("Failed to reload settings")
	} else {
		w.log.Info().Str("path", target).Msg("Settings reloaded")
	}

	select {
	case w.eventsChan <- ev:
	case <-w.done:
	}
}
