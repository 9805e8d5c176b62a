package server

import (
	"sync"

	"github.com/NicolasHaas/gotrivia/pkg/model"
)

// SessionTable maps live connection ids to their authentication state.
//
// The key is the server-assigned monotonic connection id, never anything the
// peer can influence: peer ports are reused across reconnects and would
// collide. Only the engine goroutine mutates the table; the mutex lets tests
// and metrics read safely.
type SessionTable struct {
	mu       sync.RWMutex
	sessions map[uint64]*model.Session
}

// NewSessionTable creates an empty session table.
func NewSessionTable() *SessionTable {
	return &SessionTable{sessions: make(map[uint64]*model.Session)}
}

// Register creates an unauthenticated session for a newly accepted connection.
func (t *SessionTable) Register(connID uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[connID] = &model.Session{ConnID: connID}
}

// MarkAuthenticated binds a session to a username after a successful login.
func (t *SessionTable) MarkAuthenticated(connID uint64, username string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sessions[connID]; ok {
		s.Authenticated = true
		s.Username = username
	}
}

// Get returns a snapshot of the session for a connection id.
func (t *SessionTable) Get(connID uint64) (model.Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[connID]
	if !ok {
		return model.Session{}, false
	}
	return *s, true
}

// Remove deletes a session. Removing an unknown id is a no-op.
func (t *SessionTable) Remove(connID uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, connID)
}

// Count returns the number of live sessions.
func (t *SessionTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}
