package session

import (
	"errors"
	"testing"

	"github.com/lockbar-io/lockbar/internal/models"
)

func TestSlotWatchIsEdgeSensitive(t *testing.T) {
	slot := NewComparableSlot[models.Token]("")

	var seen []models.Token
	cancel := slot.Watch(func(_, v models.Token) {
		seen = append(seen, v)
	})

	for _, tok := range []models.Token{"", "tok1", "tok1", "tok2"} {
		slot.Set(tok)
	}

	want := []models.Token{"tok1", "tok2"}
	if len(seen) != len(want) {
		t.Fatalf("watcher saw %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("change %d = %q, want %q", i, seen[i], want[i])
		}
	}

	cancel()
	slot.Set("tok3")
	if len(seen) != 2 {
		t.Errorf("watcher called after cancel: %v", seen)
	}
	if slot.Get() != "tok3" {
		t.Errorf("Get() = %q, want tok3", slot.Get())
	}
}

func TestSlotWithoutEqualAlwaysNotifies(t *testing.T) {
	slot := NewSlot[[]models.Vehicle](nil, nil)
	calls := 0
	slot.Watch(func(_, _ []models.Vehicle) { calls++ })

	slot.Set([]models.Vehicle{{Key: "k1"}})
	slot.Set([]models.Vehicle{{Key: "k1"}})
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestSlotWatcherOrder(t *testing.T) {
	slot := NewComparableSlot(0)
	var order []string
	slot.Watch(func(_, _ int) { order = append(order, "first") })
	slot.Watch(func(_, _ int) { order = append(order, "second") })

	slot.Set(1)
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("order = %v", order)
	}
}

func TestLockStateHelpers(t *testing.T) {
	tests := []struct {
		state   LockState
		locked  bool
		settled bool
		action  string
		toggled LockState
	}{
		{LockLocked, true, true, "Unlock", LockUnlocked},
		{LockUnlocked, false, true, "Lock", LockLocked},
		{LockBusy, false, false, "", LockUnlocked},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			locked, ok := tt.state.Settled()
			if locked != tt.locked || ok != tt.settled {
				t.Errorf("Settled() = %v, %v; want %v, %v", locked, ok, tt.locked, tt.settled)
			}
			if got := tt.state.Action(); got != tt.action {
				t.Errorf("Action() = %q, want %q", got, tt.action)
			}
			if tt.settled && tt.state.Toggled() != tt.toggled {
				t.Errorf("Toggled() = %v, want %v", tt.state.Toggled(), tt.toggled)
			}
		})
	}
}

func TestLockFlagsBeginResolve(t *testing.T) {
	flags := NewLockFlags(LockLocked)

	if got := flags.Get("k1"); got != LockLocked {
		t.Fatalf("initial Get() = %v, want locked", got)
	}

	var changes []LockState
	flags.Watch(func(key string, s LockState) {
		if key == "k1" {
			changes = append(changes, s)
		}
	})

	prev, err := flags.Begin("k1")
	if err != nil || prev != LockLocked {
		t.Fatalf("Begin() = %v, %v; want locked, nil", prev, err)
	}
	if flags.Get("k1") != LockBusy {
		t.Errorf("Get() during command = %v, want busy", flags.Get("k1"))
	}

	if _, err := flags.Begin("k1"); !errors.Is(err, ErrCommandInFlight) {
		t.Errorf("second Begin() error = %v, want ErrCommandInFlight", err)
	}

	// Other vehicles are independent.
	if _, err := flags.Begin("k2"); err != nil {
		t.Errorf("Begin(k2) error = %v", err)
	}

	failure := errors.New("timeout")
	flags.Resolve("k1", prev, failure)
	if flags.Get("k1") != LockLocked || flags.Err("k1") != failure {
		t.Errorf("after failed command: %v, %v", flags.Get("k1"), flags.Err("k1"))
	}

	if _, err := flags.Begin("k1"); err != nil {
		t.Fatalf("Begin() after resolve error = %v", err)
	}
	if flags.Err("k1") != nil {
		t.Error("Begin() did not clear the previous error")
	}
	flags.Resolve("k1", LockUnlocked, nil)

	want := []LockState{LockBusy, LockLocked, LockBusy, LockUnlocked}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("change %d = %v, want %v", i, changes[i], want[i])
		}
	}
}

func TestLockFlagsResolveNeverStaysBusy(t *testing.T) {
	flags := NewLockFlags(LockUnlocked)
	_, _ = flags.Begin("k1")
	flags.Resolve("k1", LockBusy, nil)

	if _, ok := flags.Get("k1").Settled(); !ok {
		t.Errorf("Resolve(busy) left flag %v", flags.Get("k1"))
	}
}

func TestStateWatchAndFind(t *testing.T) {
	state := NewState(nil)
	calls := 0
	cancel := state.Watch(func() { calls++ })

	state.Token.Set("tok1")
	state.Vehicles.Set([]models.Vehicle{{Key: "k1", NickName: "Blue"}})
	state.LoginErr.Set(nil) // nil -> nil is not a change
	state.ListErr.Set(errors.New("boom"))
	_, _ = state.Locks.Begin("k1")

	if calls != 4 {
		t.Errorf("calls = %d, want 4", calls)
	}

	if v, ok := state.FindVehicle("k1"); !ok || v.NickName != "Blue" {
		t.Errorf("FindVehicle(k1) = %+v, %v", v, ok)
	}
	if _, ok := state.FindVehicle("missing"); ok {
		t.Error("FindVehicle(missing) ok = true")
	}

	cancel()
	state.Token.Set("tok2")
	if calls != 4 {
		t.Errorf("calls after cancel = %d, want 4", calls)
	}
}
