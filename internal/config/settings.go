package config

import (
	"github.com/lockbar-io/lockbar/internal/models"
)

// LoadSettings loads the global settings from ~/.lockbar/settings.yaml.
// If the file doesn't exist, returns default settings.
func LoadSettings() (*models.Settings, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	return LoadSettingsFile(path)
}

// LoadSettingsFile loads settings from an explicit path, filling in defaults
// for anything the file leaves out.
func LoadSettingsFile(path string) (*models.Settings, error) {
	settings, err := LoadYAMLOrDefault(path, models.NewSettings)
	if err != nil {
		return nil, err
	}
	settings.ApplyDefaults()
	return settings, nil
}

// SaveSettings saves the global settings to ~/.lockbar/settings.yaml.
func SaveSettings(settings *models.Settings) error {
	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}
