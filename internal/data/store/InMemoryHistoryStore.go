package store

import (
	"context"
	"sync"

	"github.com/docmind/docmind/internal/domain/docModel"
)

type InMemoryHistoryStore struct {
	mu            sync.RWMutex
	conversations map[string][]docModel.Turn
}

func InitInMemoryHistoryStore() *InMemoryHistoryStore {
	return &InMemoryHistoryStore{
		conversations: make(map[string][]docModel.Turn),
	}
}

func (s *InMemoryHistoryStore) ValidateConversationId(ctx context.Context, conversationId string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.conversations[conversationId]
	return ok
}

func (s *InMemoryHistoryStore) InitNewConversation(ctx context.Context, conversationId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[conversationId] = make([]docModel.Turn, 0)
	return nil
}

func (s *InMemoryHistoryStore) AppendTurns(ctx context.Context, conversationId string, turns ...docModel.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[conversationId] = append(s.conversations[conversationId], turns...)
	return nil
}

func (s *InMemoryHistoryStore) RecentTurns(ctx context.Context, conversationId string, limit int) ([]docModel.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.conversations[conversationId]
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]docModel.Turn, len(turns))
	copy(out, turns)
	return out, nil
}
