package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lockbar-io/lockbar/internal/models"
)

func TestLoadSettingsMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv(HomeEnv, t.TempDir())

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if settings.API.Region != models.RegionUS {
		t.Errorf("API.Region = %q, want %q", settings.API.Region, models.RegionUS)
	}
	if settings.Window.Width != 400 || settings.Window.Height != 400 {
		t.Errorf("Window = %dx%d, want 400x400", settings.Window.Width, settings.Window.Height)
	}
	if settings.Tray.IconRect != nil {
		t.Errorf("Tray.IconRect = %+v, want nil", settings.Tray.IconRect)
	}
}

func TestLoadSettingsPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsFileName)
	data := `api:
  region: eu
  timeout: 5s
tray:
  poll_interval: 25ms
  icon_rect:
    left: 100
    right: 140
    top: 478
    bottom: 500
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	settings, err := LoadSettingsFile(path)
	if err != nil {
		t.Fatalf("LoadSettingsFile() error = %v", err)
	}

	if settings.API.Region != models.RegionEU {
		t.Errorf("API.Region = %q, want eu", settings.API.Region)
	}
	if settings.API.Timeout != 5*time.Second {
		t.Errorf("API.Timeout = %v, want 5s", settings.API.Timeout)
	}
	if settings.API.RetryMax != 3 {
		t.Errorf("API.RetryMax = %d, want default 3", settings.API.RetryMax)
	}
	if settings.Tray.PollInterval != 25*time.Millisecond {
		t.Errorf("Tray.PollInterval = %v, want 25ms", settings.Tray.PollInterval)
	}
	if settings.Tray.Tooltip != "Lockbar" {
		t.Errorf("Tray.Tooltip = %q, want default", settings.Tray.Tooltip)
	}
	if r := settings.Tray.IconRect; r == nil || r.Left != 100 || r.Bottom != 500 {
		t.Errorf("Tray.IconRect = %+v, want left 100 bottom 500", r)
	}
}

func TestLoadSettingsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsFileName)
	if err := os.WriteFile(path, []byte("api: [unterminated"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSettingsFile(path); err == nil {
		t.Error("LoadSettingsFile() error = nil for invalid YAML")
	}
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	t.Setenv(HomeEnv, t.TempDir())

	settings := models.NewSettings()
	settings.API.BaseURL = "https://vehicles.example.test/api"
	settings.Logging.Level = "debug"
	if err := SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	loaded, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if loaded.API.BaseURL != settings.API.BaseURL || loaded.Logging.Level != "debug" {
		t.Errorf("loaded = %+v, want saved values", loaded)
	}

	path, _ := GlobalSettingsFile()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("settings file mode = %o, want 600", perm)
	}
}

func TestDaemonInfoLifecycle(t *testing.T) {
	t.Setenv(HomeEnv, t.TempDir())

	running, info, err := IsDaemonRunning()
	if err != nil || running || info != nil {
		t.Fatalf("IsDaemonRunning() = %v, %v, %v; want false, nil, nil", running, info, err)
	}

	if err := SaveDaemonInfo(models.NewDaemonInfo(os.Getpid(), "")); err != nil {
		t.Fatalf("SaveDaemonInfo() error = %v", err)
	}
	running, info, err = IsDaemonRunning()
	if err != nil || !running || info == nil || info.PID != os.Getpid() {
		t.Fatalf("IsDaemonRunning() = %v, %+v, %v; want own PID running", running, info, err)
	}

	if err := RemoveDaemonInfo(); err != nil {
		t.Fatalf("RemoveDaemonInfo() error = %v", err)
	}
	if info, _ := LoadDaemonInfo(); info != nil {
		t.Errorf("LoadDaemonInfo() after remove = %+v, want nil", info)
	}
}

func TestLoadSettingsNormalizesUpdateFrequency(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsFileName)
	data := `updates:
  check_on_startup: false
  check_frequency: hourly
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	settings, err := LoadSettingsFile(path)
	if err != nil {
		t.Fatalf("LoadSettingsFile() error = %v", err)
	}
	if settings.Updates.CheckOnStartup {
		t.Error("Updates.CheckOnStartup = true, want false from file")
	}
	if settings.Updates.CheckFrequency != models.CheckDaily {
		t.Errorf("Updates.CheckFrequency = %q, want %q", settings.Updates.CheckFrequency, models.CheckDaily)
	}
}
