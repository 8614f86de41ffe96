package repository

import (
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"sync"
)

// Sessions manages the conversation logs of all sessions.
//
// A session key is a Telegram chat ID or an authenticated user ID. Logs live only in memory
// and are lost on restart.
type Sessions struct {
	stores map[string]*ConversationStore // In-memory map of session key to conversation log
	mu     sync.RWMutex                  // Mutex for thread-safe access
}

// NewSessions creates an empty session registry.
func NewSessions() *Sessions {
	return &Sessions{stores: make(map[string]*ConversationStore)}
}

// Store returns the conversation log of the session, creating it on first use.
//
// Parameters:
//   - key: the session key.
//
// Returns:
//   - *ConversationStore: the log owned by the session.
func (s *Sessions) Store(key string) *ConversationStore {
	s.mu.RLock()
	store, ok := s.stores[key]
	s.mu.RUnlock()
	if ok {
		return store
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if store, ok = s.stores[key]; ok {
		return store
	}
	store = NewConversationStore()
	s.stores[key] = store
	return store
}

// AppendTurns commits the turns of one completed exchange to the session log.
func (s *Sessions) AppendTurns(key string, turns ...models.Turn) error {
	return s.Store(key).AppendAll(turns...)
}

// History returns a copy of the session log in insertion order.
func (s *Sessions) History(key string) []models.Turn {
	var turns []models.Turn
	for turn := range s.Store(key).Turns() {
		turns = append(turns, turn)
	}
	return turns
}

// Exchanges returns the numbered history items of the session.
func (s *Sessions) Exchanges(key string) []models.Exchange {
	return s.Store(key).Exchanges()
}

// ClearHistory removes the session log.
//
// Parameters:
//   - key: the session key whose history is to be cleared.
func (s *Sessions) ClearHistory(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stores, key)
}

// Len returns the number of sessions with a log.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stores)
}
