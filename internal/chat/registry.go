package chat

import (
	"sync"

	"go.uber.org/zap"

	"github.com/helpmesh/helpmesh/internal/observability"
)

// Registry maps a user id to its single live session. Last-connected wins: a
// reconnect replaces the previous session for the same user. The raw map is
// never exposed; all access goes through the mutex-guarded methods. Nothing
// is persisted, so presence always reflects actually registered connections.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Register installs the session as the user's live connection, replacing and
// closing any previous one. The close runs after the lock is released: it may
// write a close frame to a dead socket, and that wait must not block lookups.
func (r *Registry) Register(s *Session) {
	r.mu.Lock()
	old, replaced := r.sessions[s.UserID]
	r.sessions[s.UserID] = s
	r.mu.Unlock()

	if replaced && old.ID != s.ID {
		observability.Logger().Info("registry: replacing existing connection",
			zap.String("user_id", s.UserID),
			zap.String("old_sid", old.ID),
			zap.String("new_sid", s.ID),
		)
		old.CloseWithReason(4000, "session_replaced")
	}
}

// Unregister removes the mapping only when it still points at the same
// session. A late disconnect from a replaced session must not evict the
// newer connection.
func (r *Registry) Unregister(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.sessions[s.UserID]; ok && current.ID == s.ID {
		delete(r.sessions, s.UserID)
	}
}

// Lookup returns the user's live session, if any.
func (r *Registry) Lookup(userID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[userID]
	return s, ok
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		s.Close()
	}
}
