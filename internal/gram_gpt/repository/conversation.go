// Package repository keeps conversation logs in memory and the theme preference on disk.
package repository

import (
	"fmt"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"iter"
	"sync"
)

// ConversationStore is the ordered, append-only log of one conversation.
//
// Writes happen only when a turn completes, reads come from front-ends rendering history,
// so access is guarded by a read-write mutex and readers always see a snapshot.
type ConversationStore struct {
	turns []models.Turn // Turns in insertion order
	mu    sync.RWMutex  // Mutex for thread-safe access
}

// NewConversationStore creates an empty conversation log.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{}
}

// Append adds a turn to the end of the log.
//
// Parameters:
//   - turn: the turn to store; it must carry at least one part.
//
// Returns:
//   - error: ErrInvalidRequest if the turn has no parts; nil otherwise.
func (s *ConversationStore) Append(turn models.Turn) error {
	return s.AppendAll(turn)
}

// AppendAll adds several turns as one step: either all of them are stored or none.
func (s *ConversationStore) AppendAll(turns ...models.Turn) error {
	owned := make([]models.Turn, 0, len(turns))
	for _, turn := range turns {
		if len(turn.Parts) == 0 {
			return fmt.Errorf("%w: %s turn without parts", models.ErrInvalidRequest, turn.Role)
		}
		// Копия частей, чтобы вызывающий код не мог изменить историю
		parts := make([]models.ContentPart, len(turn.Parts))
		copy(parts, turn.Parts)
		owned = append(owned, models.Turn{Role: turn.Role, Parts: parts})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, owned...)
	return nil
}

// Clear removes every turn.
func (s *ConversationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}

// Len returns the number of stored turns.
func (s *ConversationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Turns returns a restartable sequence over the log in insertion order. Each iteration
// works on the snapshot taken when it starts, so appends during a range are not observed.
func (s *ConversationStore) Turns() iter.Seq[models.Turn] {
	return func(yield func(models.Turn) bool) {
		for _, turn := range s.snapshot() {
			if !yield(turn) {
				return
			}
		}
	}
}

// Exchanges pairs each user turn with the model turn that follows it. Items are numbered
// from 1 in conversation order; a user turn without an answer is not reported.
func (s *ConversationStore) Exchanges() []models.Exchange {
	turns := s.snapshot()
	exchanges := make([]models.Exchange, 0, len(turns)/2)
	for i := 0; i+1 < len(turns); i++ {
		if turns[i].Role != models.RoleUser || turns[i+1].Role != models.RoleModel {
			continue
		}
		exchanges = append(exchanges, models.Exchange{
			Index:  len(exchanges) + 1,
			Prompt: turns[i],
			Answer: turns[i+1],
		})
		i++
	}
	return exchanges
}

func (s *ConversationStore) snapshot() []models.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}
