package session

import (
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound is returned by registry lookups for unknown or already
// removed session ids.
var ErrSessionNotFound = errors.New("session not found")

// Registry tracks live session contexts by id. It backs the lookup done on
// every authenticated request and the idle sweep performed by the session
// sweeper worker. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Context
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Context),
	}
}

// Put registers a context under its current id.
func (r *Registry) Put(c *Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[c.ID()] = c
}

// Resolve returns the context registered under id.
func (r *Registry) Resolve(id string) (*Context, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

// RotateID rotates the id of the session registered under id and re-maps it
// under the new one. The registry entry is untouched if the rotation fails.
func (r *Registry) RotateID(id string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.sessions[id]
	if !ok {
		return "", ErrSessionNotFound
	}

	newID, err := c.RotateID()
	if err != nil {
		return "", err
	}

	delete(r.sessions, id)
	r.sessions[newID] = c

	return newID, nil
}

// Remove destroys the session's vault and drops it from the registry.
// Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.sessions[id]; ok {
		c.Destroy()
		delete(r.sessions, id)
	}
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// SweepIdle destroys and removes every session idle longer than ttl,
// returning the ids that were removed.
func (r *Registry) SweepIdle(ttl time.Duration) []string {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for id, c := range r.sessions {
		if c.IdleFor(now) > ttl {
			c.Destroy()
			delete(r.sessions, id)
			removed = append(removed, id)
		}
	}

	return removed
}
