package views

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lockbar-io/lockbar/internal/logging"
	"github.com/lockbar-io/lockbar/internal/models"
	"github.com/lockbar-io/lockbar/internal/session"
)

var (
	// ErrVehicleNotFound is returned when a key is not in the fetched list,
	// including when no list has been fetched yet.
	ErrVehicleNotFound = errors.New("vehicle not found")

	// ErrNotLoggedIn is returned by calls that need a session token.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrNoClient is returned when the state holds no API client.
	ErrNoClient = errors.New("no API client configured")

	// ErrCommandInFlight is returned by ToggleLock while the vehicle is busy.
	ErrCommandInFlight = session.ErrCommandInFlight
)

// Controller drives the views over a session.State. It is safe for
// concurrent use by the tray panel and the terminal panel.
type Controller struct {
	state *session.State
	log   *logging.Logger

	mu      sync.Mutex
	route   Route
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
	unwatch []func()
	fetches sync.WaitGroup

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewController creates a controller on the Home route. Call Start before use.
func NewController(state *session.State, log *logging.Logger) *Controller {
	return &Controller{
		state: state,
		log:   log.Component("views"),
		route: Home(),
		subs:  make(map[int]func(Snapshot)),
	}
}

// State returns the session state the controller drives.
func (c *Controller) State() *session.State {
	return c.state
}

// Start registers the state watchers. Background fetches run under ctx.
// If a token is already present one fetch starts immediately.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.ctx != nil {
		c.mu.Unlock()
		return
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.unwatch = append(c.unwatch,
		c.state.Token.Watch(func(_, token models.Token) {
			if token.Valid() {
				c.spawnFetch(token)
			}
		}),
		c.state.Watch(c.publish),
	)
	c.mu.Unlock()

	if token := c.state.Token.Get(); token.Valid() {
		c.spawnFetch(token)
	}
	c.log.Debug().Msg("View controller started")
}

// Stop unregisters the watchers, cancels background fetches and waits for
// them to return.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	unwatch := c.unwatch
	c.unwatch = nil
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	for _, fn := range unwatch {
		fn()
	}
	c.fetches.Wait()
	c.log.Debug().Msg("View controller stopped")
}

// Wait blocks until every background fetch started so far has finished.
func (c *Controller) Wait() {
	c.fetches.Wait()
}

// Route returns the current route with Home resolved.
func (c *Controller) Route() Route {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolve(c.route)
}

// Navigate switches views and returns the route actually shown. Home and
// every route that needs a session resolve to Login while logged out.
func (c *Controller) Navigate(r Route) Route {
	c.mu.Lock()
	resolved := c.resolve(r)
	changed := resolved != c.route
	c.route = resolved
	c.mu.Unlock()

	if changed {
		c.log.Debug().Stringer("route", resolved).Msg("Navigated")
		c.publish()
	}
	return resolved
}

func (c *Controller) resolve(r Route) Route {
	loggedIn := c.state.Token.Get().Valid()
	switch r.Name {
	case RouteLogin:
		return r
	case RouteVehicles, RouteVehicle:
		if !loggedIn {
			return Login()
		}
		return r
	default:
		if loggedIn {
			return Vehicles()
		}
		return Login()
	}
}

// Login authenticates and, on success, stores the token and shows the
// vehicle list. Failures are stored as the login error and returned; they
// are not retried.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	client := c.state.Client.Get()
	if client == nil {
		return ErrNoClient
	}

	c.log.Info().Str("username", username).Msg("Logging in")
	token, err := client.Login(ctx, username, password)
	if err != nil {
		err = fmt.Errorf("failed to log in: %w", err)
		c.log.Warn().Err(err).Msg("Login failed")
		c.state.LoginErr.Set(err)
		return err
	}

	c.state.LoginErr.Set(nil)
	c.state.Token.Set(token)
	c.Navigate(Vehicles())
	c.log.Info().Msg("Logged in")
	return nil
}

// RefreshVehicles fetches the vehicle list with the current token and waits
// for the result.
func (c *Controller) RefreshVehicles(ctx context.Context) error {
	token := c.state.Token.Get()
	if !token.Valid() {
		return ErrNotLoggedIn
	}
	return c.fetch(ctx, token)
}

func (c *Controller) spawnFetch(token models.Token) {
	c.mu.Lock()
	if c.stopped || c.ctx == nil {
		c.mu.Unlock()
		return
	}
	ctx := c.ctx
	c.fetches.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.fetches.Done()
		_ = c.fetch(ctx, token)
	}()
}

func (c *Controller) fetch(ctx context.Context, token models.Token) error {
	client := c.state.Client.Get()
	if client == nil {
		return ErrNoClient
	}

	vehicles, err := client.ListVehicles(ctx, token)

	// A newer token supersedes whatever this call returned.
	if current := c.state.Token.Get(); current != token {
		c.log.Debug().Msg("Discarding vehicle list fetched with a superseded token")
		return nil
	}

	if err != nil {
		err = fmt.Errorf("failed to list vehicles: %w", err)
		c.log.Warn().Err(err).Msg("Vehicle list fetch failed")
		c.state.ListErr.Set(err)
		return err
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}

	c.state.ListErr.Set(nil)
	c.state.Vehicles.Set(vehicles)
	c.log.Info().Int("count", len(vehicles)).Msg("Vehicle list updated")
	return nil
}

// Vehicles returns the fetched list; ok is false before the first fetch.
func (c *Controller) Vehicles() (vehicles []models.Vehicle, ok bool) {
	vehicles = c.state.Vehicles.Get()
	return vehicles, vehicles != nil
}

// Vehicle looks key up in the fetched list.
func (c *Controller) Vehicle(key string) (models.Vehicle, error) {
	v, ok := c.state.FindVehicle(key)
	if !ok {
		return models.Vehicle{}, fmt.Errorf("%w: %s", ErrVehicleNotFound, key)
	}
	return v, nil
}

// LockState returns the lock flag of key.
func (c *Controller) LockState(key string) session.LockState {
	return c.state.Locks.Get(key)
}

// ToggleLock sends the command the vehicle's flag offers ("Unlock" when
// locked, "Lock" when unlocked) and returns the resulting flag. The flag is
// busy for the duration of the call and is always settled afterwards: on
// success it flips, on failure it returns to its previous value and the
// error is recorded for the vehicle.
func (c *Controller) ToggleLock(ctx context.Context, key string) (session.LockState, error) {
	token := c.state.Token.Get()
	if !token.Valid() {
		return c.LockState(key), ErrNotLoggedIn
	}
	if _, err := c.Vehicle(key); err != nil {
		return c.LockState(key), err
	}
	client := c.state.Client.Get()
	if client == nil {
		return c.LockState(key), ErrNoClient
	}

	prev, err := c.state.Locks.Begin(key)
	if err != nil {
		return session.LockBusy, err
	}

	next := prev
	var cmdErr error
	defer func() {
		c.state.Locks.Resolve(key, next, cmdErr)
	}()

	action := prev.Action()
	c.log.Info().Str("vehicle", key).Str("action", action).Msg("Sending lock command")

	if locked, _ := prev.Settled(); locked {
		cmdErr = client.Unlock(ctx, token, key)
	} else {
		cmdErr = client.Lock(ctx, token, key)
	}
	if cmdErr != nil {
		cmdErr = fmt.Errorf("failed to %s vehicle %s: %w", action, key, cmdErr)
		c.log.Warn().Err(cmdErr).Str("vehicle", key).Msg("Lock command failed")
		return prev, cmdErr
	}

	next = prev.Toggled()
	c.log.Info().Str("vehicle", key).Stringer("state", next).Msg("Lock command succeeded")
	return next, nil
}

// Subscribe calls fn with a fresh snapshot after every state or route
// change. The returned func unregisters it.
func (c *Controller) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

func (c *Controller) publish() {
	c.subMu.Lock()
	subs := make([]func(Snapshot), 0, len(c.subs))
	for id := 0; id < c.nextSub; id++ {
		if fn, ok := c.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	c.subMu.Unlock()

	if len(subs) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, fn := range subs {
		fn(snap)
	}
}
