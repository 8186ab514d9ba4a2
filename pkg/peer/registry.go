package peer

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry errors.
var (
	ErrDuplicateDevice = errors.New("device already registered")
	ErrInvalidSession  = errors.New("invalid session")
)

// Registry holds the sessions of connected peers keyed by device ID.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Add registers a session.
// Returns ErrDuplicateDevice if the device ID is already present; the
// existing entry is left untouched.
func (r *Registry) Add(s *Session) error {
	if s == nil || s.DeviceID == "" {
		return ErrInvalidSession
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s.DeviceID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateDevice, s.DeviceID)
	}
	r.sessions[s.DeviceID] = s
	return nil
}

// Remove deletes the session for deviceID. Safe to call on absent devices.
// Returns true if a session was removed.
func (r *Registry) Remove(deviceID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[deviceID]; !exists {
		return false
	}
	delete(r.sessions, deviceID)
	return true
}

// Get returns a copy of the session for deviceID.
func (r *Registry) Get(deviceID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.sessions[deviceID]
	if !exists {
		return Session{}, false
	}
	return s.clone(), true
}

// Has returns true if deviceID is registered.
func (r *Registry) Has(deviceID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.sessions[deviceID]
	return exists
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Clear removes every session and returns how many were removed.
func (r *Registry) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.sessions)
	r.sessions = make(map[string]*Session)
	return n
}

// Snapshot returns copies of all sessions ordered by device ID.
func (r *Registry) Snapshot() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DeviceID < out[j].DeviceID
	})
	return out
}
