package models

import "time"

// Regions with a built-in API endpoint.
const (
	RegionUS = "us"
	RegionCA = "ca"
	RegionEU = "eu"
)

// APIConfig holds settings for the vehicle-control service client.
type APIConfig struct {
	Region   string        `yaml:"region"`   // "us" | "ca" | "eu"
	BaseURL  string        `yaml:"base_url"` // overrides the region endpoint when set
	Timeout  time.Duration `yaml:"timeout"`
	RetryMax int           `yaml:"retry_max"`
}

// WindowConfig holds the popup window launch parameters. They are read once
// at startup.
type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// IconRect is a manually configured tray icon rectangle in screen pixels.
type IconRect struct {
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
}

// TrayConfig holds tray icon settings.
type TrayConfig struct {
	Tooltip      string        `yaml:"tooltip"`
	PollInterval time.Duration `yaml:"poll_interval"`
	IconRect     *IconRect     `yaml:"icon_rect,omitempty"` // nil = derive from the primary screen
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
}

// Update check frequencies.
const (
	CheckEveryLaunch = "every_launch"
	CheckDaily       = "daily"
	CheckWeekly      = "weekly"
)

// UpdatesConfig holds settings for update checking.
type UpdatesConfig struct {
	CheckOnStartup bool       `yaml:"check_on_startup"`
	CheckFrequency string     `yaml:"check_frequency"` // "every_launch" | "daily" | "weekly"
	LastChecked    *time.Time `yaml:"last_checked,omitempty"`
}

// Settings represents global application settings.
// This corresponds to ~/.lockbar/settings.yaml.
type Settings struct {
	Version int           `yaml:"version"`
	API     APIConfig     `yaml:"api"`
	Window  WindowConfig  `yaml:"window"`
	Tray    TrayConfig    `yaml:"tray"`
	Logging LoggingConfig `yaml:"logging"`
	Updates UpdatesConfig `yaml:"updates"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		API: APIConfig{
			Region:   RegionUS,
			Timeout:  30 * time.Second,
			RetryMax: 3,
		},
		Window: WindowConfig{
			Width:  400,
			Height: 400,
		},
		Tray: TrayConfig{
			Tooltip:      "Lockbar",
			PollInterval: 10 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Updates: UpdatesConfig{
			CheckOnStartup: true,
			CheckFrequency: CheckDaily,
		},
	}
}

// ApplyDefaults fills zero values left by a partial settings file.
func (s *Settings) ApplyDefaults() {
	def := NewSettings()
	if s.Version == 0 {
		s.Version = def.Version
	}
	if s.API.Region == "" {
		s.API.Region = def.API.Region
	}
	if s.API.Timeout <= 0 {
		s.API.Timeout = def.API.Timeout
	}
	if s.API.RetryMax < 0 {
		s.API.RetryMax = 0
	}
	if s.Window.Width <= 0 {
		s.Window.Width = def.Window.Width
	}
	if s.Window.Height <= 0 {
		s.Window.Height = def.Window.Height
	}
	if s.Tray.Tooltip == "" {
		s.Tray.Tooltip = def.Tray.Tooltip
	}
	if s.Tray.PollInterval <= 0 {
		s.Tray.PollInterval = def.Tray.PollInterval
	}
	if s.Logging.Level == "" {
		s.Logging.Level = def.Logging.Level
	}
	switch s.Updates.CheckFrequency {
	case CheckEveryLaunch, CheckDaily, CheckWeekly:
	default:
		s.Updates.CheckFrequency = def.Updates.CheckFrequency
	}
}
