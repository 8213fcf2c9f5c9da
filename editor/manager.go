package editor

import (
	"sync"

	"github.com/google/uuid"
	"github.com/vtpl1/ruleserver/geometry"
)

// Manager tracks the live editing sessions, one per open editor connection.
// Sessions stay single-threaded; only the registry itself is guarded, so
// multiple cameras open in parallel tabs never share drawing state.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Open creates a session seeded with the given zones and returns its id.
func (m *Manager) Open(initial []geometry.Zone) (string, *Session) {
	id := uuid.NewString()
	s := NewSession(initial)
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return id, s
}

// Get looks up a session by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close discards a session.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Count reports the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
