// Package session holds the view state shared between the GUI and background
// requests. Every slot is guarded by a generation counter, so a response that
// arrives after a newer request was started is discarded.
package session

import "sync"

// Ticket identifies one request against a slot
type Ticket uint64

// Slot holds the latest value of one asynchronously loaded resource
type Slot[T any] struct {
	mu      sync.RWMutex
	gen     uint64
	value   T
	err     error
	loading bool
}

// Begin starts a request and returns its ticket. Earlier tickets become stale.
func (s *Slot[T]) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.loading = true
	return Ticket(s.gen)
}

// Apply stores v if t is still current
func (s *Slot[T]) Apply(t Ticket, v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if uint64(t) != s.gen {
		return false
	}
	s.value = v
	s.err = nil
	s.loading = false
	return true
}

// Fail records err and resets the value if t is still current
func (s *Slot[T]) Fail(t Ticket, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if uint64(t) != s.gen {
		return false
	}
	var zero T
	s.value = zero
	s.err = err
	s.loading = false
	return true
}

// Invalidate clears the slot and makes every outstanding ticket stale
func (s *Slot[T]) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	var zero T
	s.value = zero
	s.err = nil
	s.loading = false
}

// Current reports whether t is the latest ticket
func (s *Slot[T]) Current(t Ticket) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(t) == s.gen
}

func (s *Slot[T]) Value() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

func (s *Slot[T]) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Slot[T]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}
