package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("cart session not found")
)

type session struct {
	cart     *Cart
	lastSeen time.Time
}

// Registry keeps one Cart per client session. Sessions untouched for longer
// than the idle limit are dropped by Sweep.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
	logger   *zap.Logger
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithClock replaces time.Now for idle tracking
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates an empty registry
func NewRegistry(logger *zap.Logger, opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions: make(map[string]*session),
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create opens a new session with an empty cart
func (r *Registry) Create() (string, *Cart) {
	id := uuid.NewString()
	c := New(r.logger.With(zap.String("cart_session", id)))

	r.mu.Lock()
	r.sessions[id] = &session{cart: c, lastSeen: r.now()}
	r.mu.Unlock()

	r.logger.Debug("Cart session created", zap.String("cart_session", id))
	return id, c
}

// Get returns the cart of a session and marks the session as active
func (r *Registry) Get(id string) (*Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastSeen = r.now()
	return s.cart, nil
}

// Delete drops a session. It reports whether the session existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		r.logger.Debug("Cart session closed", zap.String("cart_session", id))
	}
	return ok
}

// Len returns the number of open sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than idle and returns how many went
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle sessions every interval until ctx is done
func (r *Registry) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				r.logger.Info("Expired idle cart sessions",
					zap.Int("removed", n),
					zap.Int("open", r.Len()),
				)
			}
		}
	}
}
