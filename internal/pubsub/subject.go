package pubsub

import (
	"context"
	"sync"
)

// Subject holds the latest published value and broadcasts every new value to
// its subscribers. New subscribers receive the current value immediately.
//
// Each subscriber channel has a single slot: a reader that falls behind only
// ever sees the most recent value, and Publish never blocks on a slow reader.
type Subject[T any] struct {
	mu    sync.Mutex
	value T
	subs  map[chan T]struct{}
}

// NewSubject creates a Subject seeded with initial
func NewSubject[T any](initial T) *Subject[T] {
	return &Subject[T]{
		value: initial,
		subs:  make(map[chan T]struct{}),
	}
}

// Value returns the latest published value
func (s *Subject[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Publish stores v and offers it to every subscriber
func (s *Subject[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = v
	for ch := range s.subs {
		offer(ch, v)
	}
}

// Subscribe returns a channel that yields the current value and then every
// later one. The channel is closed once ctx is done.
func (s *Subject[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	s.mu.Lock()
	ch <- s.value
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()

		s.mu.Lock()
		delete(s.subs, ch)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Subscribers returns the number of live subscriptions
func (s *Subject[T]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// offer replaces whatever is buffered in ch with v. Callers hold s.mu, so no
// other sender can refill the slot between the drain and the send.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}

	select {
	case <-ch:
	default:
	}
	ch <- v
}
