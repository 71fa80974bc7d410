package game

import (
	"sync"
	"time"
)

// Registry is the process-wide map from session UUID to Session.
// Entries are created by the queue watchdog (via Create) and destroyed
// by the session watchdog (via Remove) — spec §3 "Session registry".
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Create registers a freshly formed session.
func (r *Registry) Create(uuid string, playerIDs []string, playerNames map[string]string, numTiles int, colourSelectionTimeout time.Duration) *Session {
	session := NewSession(uuid, playerIDs, playerNames, numTiles, colourSelectionTimeout)

	r.mu.Lock()
	r.sessions[uuid] = session
	r.mu.Unlock()

	return session
}

// Get returns the session for uuid, or nil if it doesn't exist.
func (r *Registry) Get(uuid string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[uuid]
}

// Remove deletes a session from the registry.
func (r *Registry) Remove(uuid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, uuid)
}

// Snapshot returns a (uuid, *Session) copy of the registry, used by the
// session watchdog so it doesn't hold the registry lock while sweeping
// individual sessions (spec §4.6).
func (r *Registry) Snapshot() map[string]*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]*Session, len(r.sessions))
	for uuid, session := range r.sessions {
		out[uuid] = session
	}
	return out
}
