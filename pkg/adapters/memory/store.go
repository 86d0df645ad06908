package memory

import (
	"context"
	"sync"

	"github.com/aretw0/tgadmin/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use. States are plain values, so no copy is needed on read.
type Store struct {
	data map[int64]domain.ConversationState
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[int64]domain.ConversationState),
	}
}

// Save keeps the state in memory.
func (s *Store) Save(ctx context.Context, chatID int64, state domain.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[chatID] = state
	return nil
}

// Load retrieves the state from memory.
func (s *Store) Load(ctx context.Context, chatID int64) (domain.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[chatID]
	if !ok {
		return nil, domain.ErrStateNotFound
	}
	return state, nil
}

// Delete removes the state.
func (s *Store) Delete(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, chatID)
	return nil
}

// List returns the known chats.
func (s *Store) List(ctx context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chats := make([]int64, 0, len(s.data))
	for id := range s.data {
		chats = append(chats, id)
	}
	return chats, nil
}
