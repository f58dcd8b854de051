package store

import (
	"context"
	"sync"
	"time"

	"github.com/docmind/docmind/internal/domain/docModel"
)

type InMemoryDocumentStore struct {
	mu     sync.RWMutex
	states map[string]docModel.DocumentState
}

func InitInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		states: make(map[string]docModel.DocumentState),
	}
}

func (s *InMemoryDocumentStore) GetState(ctx context.Context, documentId string) (docModel.DocumentState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[documentId]
	return state, ok
}

func (s *InMemoryDocumentStore) SaveState(ctx context.Context, state docModel.DocumentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.states[state.DocumentId]; ok && state.Generation == "" {
		state.Generation = existing.Generation
	}
	s.states[state.DocumentId] = state
	return nil
}

func (s *InMemoryDocumentStore) DeleteState(ctx context.Context, documentId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, documentId)
}

func (s *InMemoryDocumentStore) ActiveGeneration(ctx context.Context, documentId string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[documentId]
	if !ok || state.Generation == "" {
		return "", false
	}
	return state.Generation, true
}

func (s *InMemoryDocumentStore) SetActiveGeneration(ctx context.Context, documentId string, generation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.states[documentId]
	state.DocumentId = documentId
	state.Generation = generation
	state.UpdatedAt = time.Now()
	s.states[documentId] = state
	return nil
}
