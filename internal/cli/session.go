package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/lockbar-io/lockbar/internal/api"
	"github.com/lockbar-io/lockbar/internal/config"
	"github.com/lockbar-io/lockbar/internal/logging"
	"github.com/lockbar-io/lockbar/internal/models"
)

const (
	envUsername = "LOCKBAR_USERNAME"
	envPassword = "LOCKBAR_PASSWORD"
)

var flagUsername string

// errNoCredentials is returned when stdin is not a terminal and no
// credentials were supplied through flags or the environment.
var errNoCredentials = errors.New("no credentials: pass --username and set " + envPassword + ", or run from a terminal")

// loadSettings reads settings.yaml, falling back to defaults.
func loadSettings() *models.Settings {
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed to load settings, using defaults: %v\n", styleWarning.Render("Warning:"), err)
		return models.NewSettings()
	}
	return settings
}

// cliLogger writes warnings and errors to stderr. The tray app owns the log file.
func cliLogger() *logging.Logger {
	return logging.New(os.Stderr).Component("cli")
}

func newClient(settings *models.Settings) (*api.Client, error) {
	client, err := api.NewClient(settings.API, cliLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return client, nil
}

// credentials resolves the username and password from flags, the environment,
// and finally an interactive prompt.
func credentials(in *os.File, out io.Writer) (string, string, error) {
	username := flagUsername
	if username == "" {
		username = os.Getenv(envUsername)
	}
	password := os.Getenv(envPassword)
	if username != "" && password != "" {
		return username, password, nil
	}

	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return "", "", errNoCredentials
	}

	if username == "" {
		fmt.Fprint(out, "Username: ")
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return "", "", fmt.Errorf("failed to read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if password == "" {
		fmt.Fprint(out, "Password: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		password = string(raw)
	}

	if username == "" || password == "" {
		return "", "", errors.New("username and password are required")
	}
	return username, password, nil
}

// loginSession is a logged-in client. Sessions are not persisted, so every
// command logs in first.
type loginSession struct {
	client *api.Client
	token  models.Token
}

func login(ctx context.Context) (*loginSession, error) {
	settings := loadSettings()
	client, err := newClient(settings)
	if err != nil {
		return nil, err
	}

	username, password, err := credentials(os.Stdin, os.Stderr)
	if err != nil {
		return nil, err
	}

	token, err := client.Login(ctx, username, password)
	if err != nil {
		if api.IsUnauthorized(err) {
			return nil, fmt.Errorf("login rejected for %s: check your username and password", username)
		}
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	return &loginSession{client: client, token: token}, nil
}

// commandContext bounds a single CLI invocation.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Minute)
}

// findVehicle matches key against vehicle keys, then case-insensitively
// against nicknames.
func findVehicle(vehicles []models.Vehicle, key string) (models.Vehicle, error) {
	for _, v := range vehicles {
		if v.Key == key {
			return v, nil
		}
	}
	var matches []models.Vehicle
	for _, v := range vehicles {
		if strings.EqualFold(v.NickName, key) {
			matches = append(matches, v)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return models.Vehicle{}, fmt.Errorf("vehicle %q not found", key)
	default:
		return models.Vehicle{}, fmt.Errorf("nickname %q matches %d vehicles, use the vehicle key", key, len(matches))
	}
}
