package views

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lockbar-io/lockbar/internal/logging"
	"github.com/lockbar-io/lockbar/internal/models"
	"github.com/lockbar-io/lockbar/internal/session"
)

// fakeClient records calls. A non-nil gate blocks Lock/Unlock until closed.
type fakeClient struct {
	mu        sync.Mutex
	loginErr  error
	listErr   error
	cmdErr    error
	gate      chan struct{}
	listCalls []models.Token
	commands  []string
}

func (f *fakeClient) Login(_ context.Context, username, password string) (models.Token, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return models.Token("tok-" + username), nil
}

func (f *fakeClient) ListVehicles(_ context.Context, token models.Token) ([]models.Vehicle, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, token)
	err := f.listErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return []models.Vehicle{
		{Key: "k1", NickName: "Blue", ModelName: "Ioniq 5", Trim: string(token)},
		{Key: "k2", NickName: "Red", ModelName: "Kona", Trim: "N Line"},
	}, nil
}

func (f *fakeClient) Lock(_ context.Context, _ models.Token, key string) error {
	return f.command("lock " + key)
}

func (f *fakeClient) Unlock(_ context.Context, _ models.Token, key string) error {
	return f.command("unlock " + key)
}

func (f *fakeClient) command(cmd string) error {
	f.mu.Lock()
	f.commands = append(f.commands, cmd)
	gate, err := f.gate, f.cmdErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeClient) calls() ([]models.Token, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Token(nil), f.listCalls...), append([]string(nil), f.commands...)
}

func newTestController(t *testing.T, client *fakeClient) *Controller {
	t.Helper()
	c := NewController(session.NewState(client), logging.Nop())
	c.Start(context.Background())
	t.Cleanup(c.Stop)
	return c
}

// loggedIn returns a controller with a token and a fetched list.
func loggedIn(t *testing.T, client *fakeClient) *Controller {
	t.Helper()
	c := newTestController(t, client)
	if err := c.Login(context.Background(), "driver", "pw"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	c.Wait()
	return c
}

func TestTokenChangesTriggerOneFetchEach(t *testing.T) {
	client := &fakeClient{}
	c := newTestController(t, client)

	for _, tok := range []models.Token{"", "tok1", "tok1", "tok2"} {
		c.State().Token.Set(tok)
	}
	c.Wait()

	listCalls, _ := client.calls()
	if len(listCalls) != 2 {
		t.Fatalf("list calls = %v, want 2 calls", listCalls)
	}
	seen := map[models.Token]bool{listCalls[0]: true, listCalls[1]: true}
	if !seen["tok1"] || !seen["tok2"] {
		t.Errorf("list calls = %v, want tok1 and tok2", listCalls)
	}

	// Only the current token's list is kept.
	v, err := c.Vehicle("k1")
	if err != nil {
		t.Fatalf("Vehicle(k1) error = %v", err)
	}
	if v.Trim != "tok2" {
		t.Errorf("vehicle list came from %q, want tok2", v.Trim)
	}
}

func TestStartFetchesForExistingToken(t *testing.T) {
	client := &fakeClient{}
	state := session.NewState(client)
	state.Token.Set("tok1")

	c := NewController(state, logging.Nop())
	c.Start(context.Background())
	defer c.Stop()
	c.Wait()

	if listCalls, _ := client.calls(); len(listCalls) != 1 {
		t.Errorf("list calls = %v, want 1", listCalls)
	}
}

func TestStoppedControllerDoesNotFetch(t *testing.T) {
	client := &fakeClient{}
	c := NewController(session.NewState(client), logging.Nop())
	c.Start(context.Background())
	c.Stop()

	c.State().Token.Set("tok1")
	c.Wait()
	if listCalls, _ := client.calls(); len(listCalls) != 0 {
		t.Errorf("list calls after Stop() = %v", listCalls)
	}
}

func TestLoginSuccess(t *testing.T) {
	c := loggedIn(t, &fakeClient{})

	if got := c.State().Token.Get(); got != "tok-driver" {
		t.Errorf("token = %q, want tok-driver", got)
	}
	if got := c.Route(); got != Vehicles() {
		t.Errorf("Route() = %v, want /vehicles", got)
	}
	if vehicles, ok := c.Vehicles(); !ok || len(vehicles) != 2 {
		t.Errorf("Vehicles() = %v, %v; want 2 vehicles", vehicles, ok)
	}
}

func TestLoginFailureIsSurfaced(t *testing.T) {
	client := &fakeClient{loginErr: errors.New("bad password")}
	c := newTestController(t, client)

	err := c.Login(context.Background(), "driver", "wrong")
	if err == nil || !strings.Contains(err.Error(), "bad password") {
		t.Fatalf("Login() error = %v, want wrapped client error", err)
	}
	if c.State().Token.Get().Valid() {
		t.Error("token set after failed login")
	}
	if got := c.Route(); got != Login() {
		t.Errorf("Route() = %v, want /login", got)
	}
	if snap := c.Snapshot(); !strings.Contains(snap.LoginError, "bad password") {
		t.Errorf("Snapshot().LoginError = %q", snap.LoginError)
	}
}

func TestListFailureIsSurfaced(t *testing.T) {
	client := &fakeClient{listErr: errors.New("service down")}
	c := loggedIn(t, client)

	if _, ok := c.Vehicles(); ok {
		t.Error("Vehicles() ok = true after failed fetch")
	}
	snap := c.Snapshot()
	if snap.Fetched || !strings.Contains(snap.ListError, "service down") {
		t.Errorf("Snapshot() = %+v, want list error", snap)
	}

	client.mu.Lock()
	client.listErr = nil
	client.mu.Unlock()

	if err := c.RefreshVehicles(context.Background()); err != nil {
		t.Fatalf("RefreshVehicles() error = %v", err)
	}
	if snap := c.Snapshot(); !snap.Fetched || snap.ListError != "" {
		t.Errorf("Snapshot() after refresh = %+v", snap)
	}
}

func TestRefreshRequiresLogin(t *testing.T) {
	c := newTestController(t, &fakeClient{})
	if err := c.RefreshVehicles(context.Background()); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("RefreshVehicles() error = %v, want ErrNotLoggedIn", err)
	}
}

func TestNavigateResolvesHome(t *testing.T) {
	c := newTestController(t, &fakeClient{})

	tests := []struct {
		to   Route
		want Route
	}{
		{Home(), Login()},
		{Vehicles(), Login()},
		{Vehicle("k1"), Login()},
		{Login(), Login()},
	}
	for _, tt := range tests {
		if got := c.Navigate(tt.to); got != tt.want {
			t.Errorf("logged out: Navigate(%v) = %v, want %v", tt.to, got, tt.want)
		}
	}

	c.State().Token.Set("tok1")
	c.Wait()
	if got := c.Navigate(Home()); got != Vehicles() {
		t.Errorf("logged in: Navigate(/) = %v, want /vehicles", got)
	}
	if got := c.Navigate(Vehicle("k1")); got != Vehicle("k1") {
		t.Errorf("logged in: Navigate(/vehicle/k1) = %v", got)
	}
}

func TestVehicleNotFound(t *testing.T) {
	c := newTestController(t, &fakeClient{})

	// No list fetched yet.
	if _, err := c.Vehicle("k1"); !errors.Is(err, ErrVehicleNotFound) {
		t.Errorf("Vehicle() before fetch error = %v, want ErrVehicleNotFound", err)
	}

	c = loggedIn(t, &fakeClient{})
	if _, err := c.Vehicle("missing"); !errors.Is(err, ErrVehicleNotFound) {
		t.Errorf("Vehicle(missing) error = %v, want ErrVehicleNotFound", err)
	}
	if _, err := c.ToggleLock(context.Background(), "missing"); !errors.Is(err, ErrVehicleNotFound) {
		t.Errorf("ToggleLock(missing) error = %v, want ErrVehicleNotFound", err)
	}
}

func TestToggleLockRequiresLogin(t *testing.T) {
	c := newTestController(t, &fakeClient{})
	if _, err := c.ToggleLock(context.Background(), "k1"); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("ToggleLock() error = %v, want ErrNotLoggedIn", err)
	}
}

func TestToggleLockFlipsOnSuccess(t *testing.T) {
	client := &fakeClient{}
	c := loggedIn(t, client)
	ctx := context.Background()

	if got := c.LockState("k1"); got != session.LockLocked {
		t.Fatalf("initial LockState() = %v, want locked", got)
	}

	state, err := c.ToggleLock(ctx, "k1")
	if err != nil || state != session.LockUnlocked {
		t.Fatalf("first ToggleLock() = %v, %v; want unlocked", state, err)
	}
	state, err = c.ToggleLock(ctx, "k1")
	if err != nil || state != session.LockLocked {
		t.Fatalf("second ToggleLock() = %v, %v; want locked", state, err)
	}

	_, commands := client.calls()
	want := []string{"unlock k1", "lock k1"}
	if len(commands) != len(want) || commands[0] != want[0] || commands[1] != want[1] {
		t.Errorf("commands = %v, want %v", commands, want)
	}
	if got := c.LockState("k2"); got != session.LockLocked {
		t.Errorf("other vehicle LockState() = %v, want locked", got)
	}
}

func TestToggleLockRestoresOnFailure(t *testing.T) {
	client := &fakeClient{cmdErr: errors.New("vehicle asleep")}
	c := loggedIn(t, client)

	state, err := c.ToggleLock(context.Background(), "k1")
	if err == nil || !strings.Contains(err.Error(), "vehicle asleep") {
		t.Fatalf("ToggleLock() error = %v, want wrapped client error", err)
	}
	if state != session.LockLocked || c.LockState("k1") != session.LockLocked {
		t.Errorf("state = %v, flag = %v; want locked", state, c.LockState("k1"))
	}

	view, ok := c.Snapshot().Find("k1")
	if !ok || view.Busy || !strings.Contains(view.Error, "vehicle asleep") {
		t.Errorf("Snapshot vehicle = %+v, want settled with error", view)
	}
}

func TestToggleLockRejectsWhileBusy(t *testing.T) {
	gate := make(chan struct{})
	client := &fakeClient{gate: gate}
	c := loggedIn(t, client)

	type result struct {
		state session.LockState
		err   error
	}
	done := make(chan result, 1)
	go func() {
		s, err := c.ToggleLock(context.Background(), "k1")
		done <- result{s, err}
	}()

	deadline := time.After(2 * time.Second)
	for c.LockState("k1") != session.LockBusy {
		select {
		case <-deadline:
			t.Fatal("vehicle never became busy")
		case <-time.After(time.Millisecond):
		}
	}

	if view, _ := c.Snapshot().Find("k1"); !view.Busy || view.Action != "" {
		t.Errorf("busy snapshot = %+v", view)
	}
	if _, err := c.ToggleLock(context.Background(), "k1"); !errors.Is(err, ErrCommandInFlight) {
		t.Errorf("ToggleLock() while busy error = %v, want ErrCommandInFlight", err)
	}

	close(gate)
	select {
	case r := <-done:
		if r.err != nil || r.state != session.LockUnlocked {
			t.Errorf("ToggleLock() = %v, %v; want unlocked", r.state, r.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ToggleLock() never returned")
	}

	if _, commands := client.calls(); len(commands) != 1 {
		t.Errorf("commands = %v, want exactly one", commands)
	}
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	c := newTestController(t, &fakeClient{})

	var mu sync.Mutex
	var snaps []Snapshot
	cancel := c.Subscribe(func(s Snapshot) {
		mu.Lock()
		snaps = append(snaps, s)
		mu.Unlock()
	})

	if err := c.Login(context.Background(), "driver", "pw"); err != nil {
		t.Fatal(err)
	}
	c.Wait()
	cancel()

	mu.Lock()
	defer mu.Unlock()
	if len(snaps) == 0 {
		t.Fatal("no snapshots published")
	}
	last := snaps[len(snaps)-1]
	if !last.LoggedIn || last.Path != "/vehicles" || len(last.Vehicles) != 2 {
		t.Errorf("last snapshot = %+v", last)
	}
	if last.Vehicles[0].Label != "Blue - Ioniq 5 (tok-driver)" || last.Vehicles[0].Action != "Unlock" {
		t.Errorf("vehicle view = %+v", last.Vehicles[0])
	}
}

func TestParseRoute(t *testing.T) {
	tests := []struct {
		path    string
		want    Route
		wantErr bool
	}{
		{"/", Home(), false},
		{"", Home(), false},
		{"/login", Login(), false},
		{"/vehicles/", Vehicles(), false},
		{"/vehicle/k1", Vehicle("k1"), false},
		{"/vehicle/key%2Fslash", Vehicle("key/slash"), false},
		{"/vehicle", Route{}, true},
		{"/vehicle/a/b", Route{}, true},
		{"/settings", Route{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ParseRoute(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRoute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownRoute) {
					t.Errorf("error = %v, want ErrUnknownRoute", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseRoute() = %v, want %v", got, tt.want)
			}
			if round, _ := ParseRoute(got.Path()); round != got {
				t.Errorf("Path() round trip = %v, want %v", round, got)
			}
		})
	}
}
