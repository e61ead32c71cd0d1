package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lockbar-io/lockbar/internal/config"
	"github.com/lockbar-io/lockbar/internal/logging"
	"github.com/lockbar-io/lockbar/internal/models"
)

func startWatcher(t *testing.T, debounce time.Duration) (*Watcher, string) {
	t.Helper()
	dir := t.TempDir()
	w, err := New(dir, logging.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	w.debounce = debounce
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(w.Stop)
	return w, dir
}

func nextEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no reload event")
		return Event{}
	}
}

func TestReloadOnAtomicSave(t *testing.T) {
	w, dir := startWatcher(t, 20*time.Millisecond)

	settings := models.NewSettings()
	settings.Tray.PollInterval = 40 * time.Millisecond
	settings.Logging.Level = "debug"
	if err := config.SaveYAML(filepath.Join(dir, config.SettingsFileName), settings); err != nil {
		t.Fatal(err)
	}

	ev := nextEvent(t, w)
	if ev.Err != nil {
		t.Fatalf("event error = %v", ev.Err)
	}
	if ev.Settings.Tray.PollInterval != 40*time.Millisecond || ev.Settings.Logging.Level != "debug" {
		t.Errorf("reloaded settings = %+v", ev.Settings)
	}
	if filepath.Base(ev.Path) != config.SettingsFileName {
		t.Errorf("event path = %q", ev.Path)
	}
}

func TestReloadReportsInvalidFile(t *testing.T) {
	w, dir := startWatcher(t, 20*time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, config.SettingsFileName), []byte("tray: [broken"), 0600); err != nil {
		t.Fatal(err)
	}

	ev := nextEvent(t, w)
	if ev.Err == nil || ev.Settings != nil {
		t.Errorf("event = %+v, want error without settings", ev)
	}
}

func TestOtherFilesAreIgnored(t *testing.T) {
	w, dir := startWatcher(t, 20*time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, config.DaemonFileName), []byte("pid: 1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-w.Events():
		t.Errorf("unexpected event %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestBurstOfWritesIsDebounced(t *testing.T) {
	w, dir := startWatcher(t, 150*time.Millisecond)

	path := filepath.Join(dir, config.SettingsFileName)
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	ev := nextEvent(t, w)
	if ev.Err != nil || ev.Settings.Logging.Level != "warn" {
		t.Errorf("event = %+v", ev)
	}

	select {
	case ev := <-w.Events():
		t.Errorf("second event %+v, want writes coalesced", ev)
	case <-time.After(400 * time.Millisecond):
	}
}
