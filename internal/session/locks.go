package session

import (
	"errors"
	"sync"
)

// ErrCommandInFlight is returned when a vehicle already has a pending command.
var ErrCommandInFlight = errors.New("a command is already in flight for this vehicle")

// LockState is the tri-state lock flag of a vehicle.
type LockState int

const (
	// LockLocked means the doors are locked; the view offers "Unlock".
	LockLocked LockState = iota + 1
	// LockUnlocked means the doors are unlocked; the view offers "Lock".
	LockUnlocked
	// LockBusy means a command is in flight.
	LockBusy
)

// Settled returns the lock state when no command is in flight.
func (s LockState) Settled() (locked bool, ok bool) {
	switch s {
	case LockLocked:
		return true, true
	case LockUnlocked:
		return false, true
	default:
		return false, false
	}
}

// Action is the label of the command the view offers in this state.
func (s LockState) Action() string {
	switch s {
	case LockLocked:
		return "Unlock"
	case LockUnlocked:
		return "Lock"
	default:
		return ""
	}
}

func (s LockState) String() string {
	switch s {
	case LockLocked:
		return "locked"
	case LockUnlocked:
		return "unlocked"
	case LockBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Toggled returns the settled state a successful command leads to.
func (s LockState) Toggled() LockState {
	if s == LockUnlocked {
		return LockLocked
	}
	return LockUnlocked
}

// LockFlags tracks the lock flag and last command error of every vehicle.
type LockFlags struct {
	mu       sync.Mutex
	flags    map[string]LockState
	errs     map[string]error
	initial  LockState
	watchers map[int]func(key string, state LockState)
	nextID   int
}

// NewLockFlags creates flags where unseen vehicles start in initial.
func NewLockFlags(initial LockState) *LockFlags {
	if _, ok := initial.Settled(); !ok {
		initial = LockLocked
	}
	return &LockFlags{
		flags:    make(map[string]LockState),
		errs:     make(map[string]error),
		initial:  initial,
		watchers: make(map[int]func(string, LockState)),
	}
}

// Get returns the flag for key.
func (l *LockFlags) Get(key string) LockState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getLocked(key)
}

func (l *LockFlags) getLocked(key string) LockState {
	if s, ok := l.flags[key]; ok {
		return s
	}
	return l.initial
}

// Err returns the error of the last failed command for key, if any.
func (l *LockFlags) Err(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errs[key]
}

// Begin marks key busy and returns the settled state it had. It fails with
// ErrCommandInFlight when key is already busy.
func (l *LockFlags) Begin(key string) (LockState, error) {
	l.mu.Lock()
	prev := l.getLocked(key)
	if prev == LockBusy {
		l.mu.Unlock()
		return prev, ErrCommandInFlight
	}
	l.flags[key] = LockBusy
	delete(l.errs, key)
	l.mu.Unlock()

	l.notify(key, LockBusy)
	return prev, nil
}

// Resolve settles key into state and records err (nil clears it).
func (l *LockFlags) Resolve(key string, state LockState, err error) {
	if _, ok := state.Settled(); !ok {
		state = l.initial
	}

	l.mu.Lock()
	l.flags[key] = state
	if err != nil {
		l.errs[key] = err
	} else {
		delete(l.errs, key)
	}
	l.mu.Unlock()

	l.notify(key, state)
}

// Watch registers fn for flag changes. The returned func unregisters it.
func (l *LockFlags) Watch(fn func(key string, state LockState)) (cancel func()) {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.watchers[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.watchers, id)
			l.mu.Unlock()
		})
	}
}

func (l *LockFlags) notify(key string, state LockState) {
	l.mu.Lock()
	watchers := make([]func(string, LockState), 0, len(l.watchers))
	for id := 0; id < l.nextID; id++ {
		if fn, ok := l.watchers[id]; ok {
			watchers = append(watchers, fn)
		}
	}
	l.mu.Unlock()

	for _, fn := range watchers {
		fn(key, state)
	}
}
