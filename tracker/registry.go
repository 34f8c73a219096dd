package tracker

import "sync"

// Registry maps session tokens to live tracker sessions. It replaces the
// original's module-level singleton: each logged-in client gets its own
// Session, and lookups are safe from any goroutine.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func (r *Registry) Put(token string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[token] = s
}

func (r *Registry) Get(token string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[token]
	return s, ok
}

// Remove drops the session for the token and returns it, or nil if none
// was registered.
func (r *Registry) Remove(token string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sessions[token]
	delete(r.sessions, token)
	return s
}

// Snapshot returns a copy of the token to session map, safe to iterate
// while other goroutines register and remove sessions.
func (r *Registry) Snapshot() map[string]*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*Session, len(r.sessions))
	for token, s := range r.sessions {
		out[token] = s
	}
	return out
}

// Len reports the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
