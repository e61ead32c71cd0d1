package session

import (
	"context"

	"github.com/lockbar-io/lockbar/internal/models"
)

// Client is the remote vehicle-control service as the views see it.
type Client interface {
	Login(ctx context.Context, username, password string) (models.Token, error)
	ListVehicles(ctx context.Context, token models.Token) ([]models.Vehicle, error)
	Lock(ctx context.Context, token models.Token, vehicleKey string) error
	Unlock(ctx context.Context, token models.Token, vehicleKey string) error
}

// State is the application state shared by every view. Create one per
// process and pass it to whoever needs it.
type State struct {
	Client *Slot[Client]

	// Token is empty until a login succeeds.
	Token *Slot[models.Token]

	// Vehicles is nil until the first list call returns.
	Vehicles *Slot[[]models.Vehicle]

	Locks *LockFlags

	// LoginErr and ListErr hold the last failure surfaced to the user.
	LoginErr *Slot[error]
	ListErr  *Slot[error]
}

// NewState creates the state around a client.
func NewState(client Client) *State {
	return &State{
		Client:   NewSlot[Client](client, nil),
		Token:    NewComparableSlot[models.Token](""),
		Vehicles: NewSlot[[]models.Vehicle](nil, nil),
		Locks:    NewLockFlags(LockLocked),
		LoginErr: NewSlot[error](nil, sameError),
		ListErr:  NewSlot[error](nil, sameError),
	}
}

// Watch calls fn after any slot changes. The returned func unregisters it.
func (s *State) Watch(fn func()) (cancel func()) {
	cancels := []func(){
		s.Client.Watch(func(_, _ Client) { fn() }),
		s.Token.Watch(func(_, _ models.Token) { fn() }),
		s.Vehicles.Watch(func(_, _ []models.Vehicle) { fn() }),
		s.Locks.Watch(func(string, LockState) { fn() }),
		s.LoginErr.Watch(func(_, _ error) { fn() }),
		s.ListErr.Watch(func(_, _ error) { fn() }),
	}
	return func() {
		for _, c := range cancels {
			c()
		}
	}
}

// FindVehicle looks key up in the fetched list.
func (s *State) FindVehicle(key string) (models.Vehicle, bool) {
	for _, v := range s.Vehicles.Get() {
		if v.Key == key {
			return v, true
		}
	}
	return models.Vehicle{}, false
}

// sameError treats only nil -> nil as "no change"; arbitrary error values are
// not safely comparable.
func sameError(a, b error) bool {
	return a == nil && b == nil
}
