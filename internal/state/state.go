// Package state provides a minimal observable state container: one value,
// pure-function updates, synchronous subscriber fan-out.
package state

import "sync"

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Store holds a single state value. Updates are pure functions from the
// current state to the next one; after every update all subscribers are
// invoked synchronously, in registration order, with the new state. There is
// no coalescing of rapid updates.
type Store[T any] struct {
	mu     sync.Mutex
	state  T
	base   T
	nextID int
	subs   []subscriber[T]
}

// New creates a store. The initial value is also captured as the base state
// used by Reset.
func New[T any](initial T) *Store[T] {
	return &Store[T]{state: initial, base: initial}
}

func (s *Store[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Set applies update to the current state and fans the result out. The update
// function must be pure: it runs under the store lock and must not call back
// into the store. Panics inside update propagate to the caller.
func (s *Store[T]) Set(update func(T) T) T {
	return s.apply(update, false)
}

// Reset applies update to the base state instead of the current one,
// replacing the current state wholesale. Used to rewind to a known starting
// point, primarily in tests.
func (s *Store[T]) Reset(update func(T) T) T {
	return s.apply(update, true)
}

func (s *Store[T]) apply(update func(T) T, fromBase bool) T {
	s.mu.Lock()
	prev := s.state
	if fromBase {
		prev = s.base
	}
	next := update(prev)
	s.state = next
	listeners := make([]func(T), len(s.subs))
	for i, sub := range s.subs {
		listeners[i] = sub.fn
	}
	s.mu.Unlock()

	// Fan-out happens outside the lock so listeners may freely call Get,
	// Subscribe, or unsubscribe. A listener removed mid-notification may
	// still see the current update; that is left unspecified on purpose.
	for _, fn := range listeners {
		fn(next)
	}
	return next
}

// Subscribe registers a listener and returns its unsubscribe function.
// Unsubscribing twice is harmless.
func (s *Store[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber[T]{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}
