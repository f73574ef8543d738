package realtime

import (
	"sync"
	"time"
)

// SessionRegistry hands out one Manager per logical session identity, so each
// connected user's subscriptions and typing state stay isolated.
type SessionRegistry struct {
	transport    Transport
	TypingExpiry time.Duration

	mu       sync.Mutex
	sessions map[string]*Manager
}

func NewSessionRegistry(transport Transport) *SessionRegistry {
	return &SessionRegistry{
		transport: transport,
		sessions:  make(map[string]*Manager),
	}
}

// For returns the manager for the given identity, creating it on first use.
func (r *SessionRegistry) For(self string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	manager, ok := r.sessions[self]
	if !ok {
		manager = NewManager(r.transport, self)
		manager.TypingExpiry = r.TypingExpiry
		r.sessions[self] = manager
	}
	return manager
}
