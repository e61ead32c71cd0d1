// Package updates runs the tray app's background release check.
package updates

import (
	"context"
	"sync"
	"time"

	"github.com/lockbar-io/lockbar/internal/config"
	"github.com/lockbar-io/lockbar/internal/logging"
	"github.com/lockbar-io/lockbar/internal/models"
	"github.com/lockbar-io/lockbar/internal/updater"
)

// State holds the result of the latest update check.
type State struct {
	Available     bool
	LatestVersion string
	ReleaseURL    string
	LastChecked   time.Time
}

// Checker checks for a newer release once per launch, subject to
// updates.check_frequency.
type Checker struct {
	log   *logging.Logger
	check func(context.Context) (*updater.UpdateResult, error)
	now   func() time.Time

	mu    sync.RWMutex
	state State
}

// NewChecker creates a checker against GitHub Releases.
func NewChecker(log *logging.Logger) *Checker {
	return &Checker{
		log:   log.Component("update"),
		check: updater.CheckForUpdate,
		now:   time.Now,
	}
}

// Due reports whether a check should run at now.
func Due(cfg models.UpdatesConfig, now time.Time) bool {
	if !cfg.CheckOnStartup {
		return false
	}
	if cfg.LastChecked == nil {
		return true
	}
	since := now.Sub(*cfg.LastChecked)
	switch cfg.CheckFrequency {
	case models.CheckDaily:
		return since >= 24*time.Hour
	case models.CheckWeekly:
		return since >= 7*24*time.Hour
	}
	return true
}

// Start runs the check in the background. onAvailable is called when a newer
// release exists.
func (c *Checker) Start(ctx context.Context, onAvailable func(State)) {
	go func() {
		state, ok := c.Run(ctx)
		if ok && state.Available && onAvailable != nil {
			onAvailable(state)
		}
	}()
}

// Run performs the check if it is due and records last_checked in the
// settings file. ok is false when no check ran or it failed.
func (c *Checker) Run(ctx context.Context) (State, bool) {
	settings, err := config.LoadSettings()
	if err != nil {
		c.log.Warn().Err(err).Msg("Failed to load settings")
		return State{}, false
	}

	now := c.now()
	if !Due(settings.Updates, now) {
		return State{}, false
	}

	result, err := c.check(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("Update check failed")
		return State{}, false
	}

	settings.Updates.LastChecked = &now
	if err := config.SaveSettings(settings); err != nil {
		c.log.Warn().Err(err).Msg("Failed to save last_checked")
	}

	state := State{
		Available:     result.Available,
		LatestVersion: result.LatestVersion,
		ReleaseURL:    result.ReleaseURL,
		LastChecked:   now,
	}
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()

	if state.Available {
		c.log.Info().
			Str("current", result.CurrentVersion).
			Str("latest", result.LatestVersion).
			Msg("Update available")
	} else {
		c.log.Info().Str("version", result.CurrentVersion).Msg("Up to date")
	}
	return state, true
}

// State returns the result of the last completed check.
func (c *Checker) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}
