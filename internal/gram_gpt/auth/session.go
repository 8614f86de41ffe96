package auth

import (
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"github.com/google/uuid"
	"sync"
)

// SessionManager maps opaque session tokens to signed-in principals. Sessions live in
// memory only.
type SessionManager struct {
	sessions map[string]models.Principal
	mu       sync.RWMutex
}

// NewSessionManager creates an empty session table.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]models.Principal)}
}

// Create issues a new session token for the principal.
func (m *SessionManager) Create(p models.Principal) models.Principal {
	token := uuid.NewString()
	p.Session = token

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = p
	return p
}

// Lookup returns the principal of a session token.
func (m *SessionManager) Lookup(token string) (models.Principal, bool) {
	if _, err := uuid.Parse(token); err != nil {
		return models.Principal{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.sessions[token]
	return p, ok
}

// Revoke ends the session; unknown tokens are ignored.
func (m *SessionManager) Revoke(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}
