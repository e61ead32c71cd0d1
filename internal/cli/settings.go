package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lockbar-io/lockbar/internal/api"
	"github.com/lockbar-io/lockbar/internal/config"
	"github.com/lockbar-io/lockbar/internal/logging"
	"github.com/lockbar-io/lockbar/internal/models"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change Lockbar settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GlobalSettingsFile()
		if err != nil {
			return err
		}
		settings, err := config.LoadSettings()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		data, err := yaml.Marshal(settings)
		if err != nil {
			return fmt.Errorf("failed to encode settings: %w", err)
		}
		fmt.Println(styleHint.Render("# " + path))
		fmt.Print(string(data))
		return nil
	},
}

var configureCmd = &cobra.Command{
	Use:     "configure",
	Aliases: []string{"config"},
	Short:   "Configure settings interactively",
	Long: `Configure settings interactively.

This allows you to modify:
  - API region or endpoint override
  - Request timeout and retry count
  - Tray tooltip and click poll interval
  - Log level

Press Enter to keep the current value for any setting. A running tray app
picks up tray and logging changes without a restart.`,
	Args: cobra.NoArgs,
	RunE: runConfigure,
}

func init() {
	settingsCmd.AddCommand(configureCmd)
	settingsCmd.AddCommand(settingsShowCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	changed, err := configure(bufio.NewReader(os.Stdin), settings)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Println("\nNo changes made.")
		return nil
	}

	if err := config.EnsureGlobalDir(); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Println("\n" + styleSuccess.Render("Settings updated."))
	return nil
}

// configure prompts for each editable setting and applies valid answers to s.
func configure(reader *bufio.Reader, s *models.Settings) (bool, error) {
	changed := false
	set := func(dst *string, v string) {
		if v != "" && v != *dst {
			*dst = v
			changed = true
		}
	}

	fmt.Println("API:")
	region := strings.ToLower(prompt(reader, "Region (us, ca, eu)", s.API.Region))
	if _, err := api.BaseURL(models.APIConfig{Region: region}); err != nil {
		return false, err
	}
	set(&s.API.Region, region)

	baseURL := prompt(reader, "Endpoint override (- to clear)", s.API.BaseURL)
	switch baseURL {
	case "-":
		if s.API.BaseURL != "" {
			s.API.BaseURL = ""
			changed = true
		}
	case s.API.BaseURL:
	default:
		if _, err := api.BaseURL(models.APIConfig{BaseURL: baseURL}); err != nil {
			return false, err
		}
		set(&s.API.BaseURL, baseURL)
	}

	timeout, err := promptDuration(reader, "Request timeout", s.API.Timeout)
	if err != nil {
		return false, err
	}
	if timeout != s.API.Timeout {
		s.API.Timeout = timeout
		changed = true
	}

	retries, err := strconv.Atoi(prompt(reader, "Retries", strconv.Itoa(s.API.RetryMax)))
	if err != nil || retries < 0 {
		return false, fmt.Errorf("invalid retry count: must be a non-negative integer")
	}
	if retries != s.API.RetryMax {
		s.API.RetryMax = retries
		changed = true
	}

	fmt.Println("\nTray:")
	set(&s.Tray.Tooltip, prompt(reader, "Tooltip", s.Tray.Tooltip))

	poll, err := promptDuration(reader, "Click poll interval", s.Tray.PollInterval)
	if err != nil {
		return false, err
	}
	if poll != s.Tray.PollInterval {
		s.Tray.PollInterval = poll
		changed = true
	}

	fmt.Println("\nLogging:")
	level := strings.ToLower(prompt(reader, "Level (debug, info, warn, error)", s.Logging.Level))
	if _, err := logging.ParseLevel(level); err != nil {
		return false, err
	}
	set(&s.Logging.Level, level)

	return changed, nil
}

// prompt shows the current value and returns the answer, or current on an
// empty line.
func prompt(reader *bufio.Reader, label, current string) string {
	fmt.Printf("  %s [%s]: ", label, current)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(response)
	if response == "" {
		return current
	}
	return response
}

func promptDuration(reader *bufio.Reader, label string, current time.Duration) (time.Duration, error) {
	d, err := time.ParseDuration(prompt(reader, label, current.String()))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: expected a positive duration such as 500ms or 30s", strings.ToLower(label))
	}
	return d, nil
}
