// Package session holds the process-wide application state: the API client,
// the session token, the fetched vehicle list, and per-vehicle lock flags.
//
// Every value lives in a Slot. Slots are safe for concurrent use and notify
// watchers only when the stored value actually changes.
package session

import "sync"

// Slot is a reactive value with get/set accessors and change watchers.
type Slot[T any] struct {
	// setMu serializes Set so watchers observe changes in order.
	setMu sync.Mutex

	mu       sync.RWMutex
	value    T
	equal    func(a, b T) bool
	watchers map[int]func(old, new T)
	nextID   int
}

// NewSlot creates a slot. equal decides whether a Set is a change; nil means
// every Set is a change.
func NewSlot[T any](initial T, equal func(a, b T) bool) *Slot[T] {
	return &Slot[T]{
		value:    initial,
		equal:    equal,
		watchers: make(map[int]func(old, new T)),
	}
}

// NewComparableSlot creates a slot compared with ==.
func NewComparableSlot[T comparable](initial T) *Slot[T] {
	return NewSlot(initial, func(a, b T) bool { return a == b })
}

// Get returns the current value.
func (s *Slot[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set stores v and, if it differs from the current value, calls the watchers
// on the calling goroutine. Watchers must not Set the same slot synchronously.
func (s *Slot[T]) Set(v T) bool {
	s.setMu.Lock()
	defer s.setMu.Unlock()

	s.mu.Lock()
	old := s.value
	if s.equal != nil && s.equal(old, v) {
		s.mu.Unlock()
		return false
	}
	s.value = v
	watchers := make([]func(old, new T), 0, len(s.watchers))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.watchers[id]; ok {
			watchers = append(watchers, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(old, v)
	}
	return true
}

// Watch registers fn for future changes. The returned func unregisters it.
func (s *Slot[T]) Watch(fn func(old, new T)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers, id)
			s.mu.Unlock()
		})
	}
}
