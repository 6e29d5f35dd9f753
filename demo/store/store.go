// Package store provides an observable value with explicit subscriptions.
package store

import "sync"

// Store holds a value and notifies subscribers whenever it changes.
type Store[T any] struct {
	mu     sync.Mutex
	value  T
	subs   map[uint64]*Subscription[T]
	nextID uint64
	closed bool
}

// New creates a store holding initial.
func New[T any](initial T) *Store[T] {
	return &Store[T]{
		value: initial,
		subs:  make(map[uint64]*Subscription[T]),
	}
}

// Get returns the current value.
func (s *Store[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set replaces the current value and delivers it to all subscribers. Set never blocks on slow
// subscribers. Setting a value on a closed store only updates the value.
func (s *Store[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	for _, sub := range s.subs {
		sub.deliver(v)
	}
}

// Subscribe starts a new subscription. The current value is available on the subscription's
// channel right away. The channel is closed if the store is closed already.
func (s *Store[T]) Subscribe() *Subscription[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &Subscription[T]{
		id:    s.nextID,
		c:     make(chan T, 1),
		store: s,
	}
	s.nextID++
	if s.closed {
		close(sub.c)
		sub.done = true
		return sub
	}
	s.subs[sub.id] = sub
	sub.deliver(s.value)
	return sub
}

// Close ends all subscriptions.
func (s *Store[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, sub := range s.subs {
		sub.close()
		delete(s.subs, id)
	}
}

// Subscription is a stream of values of a [Store].
//
// The stream has room for a single pending value. A subscriber that falls behind observes only the
// most recent value, never a stale one.
type Subscription[T any] struct {
	id    uint64
	c     chan T
	store *Store[T]
	done  bool // guarded by store.mu
}

// C returns the channel values are delivered on. It's closed when the subscription ends.
func (sub *Subscription[T]) C() <-chan T { return sub.c }

// Unsubscribe ends the subscription. It's safe to call Unsubscribe more than once.
func (sub *Subscription[T]) Unsubscribe() {
	s := sub.store
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, sub.id)
	sub.close()
}

// deliver replaces the pending value, if any, with v. Must be called with store.mu held, which
// makes the store the only sender and guarantees that the send doesn't block.
func (sub *Subscription[T]) deliver(v T) {
	select {
	case <-sub.c:
	default:
	}
	sub.c <- v
}

func (sub *Subscription[T]) close() {
	if sub.done {
		return
	}
	sub.done = true
	close(sub.c)
}
