package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/docmind/docmind/internal/config"
	"github.com/docmind/docmind/internal/data/redisStore"
	"github.com/docmind/docmind/internal/domain/docModel"
	"github.com/docmind/docmind/pkg/logger_i"
)

// RedisDocumentStore tracks per-document processing state: processed flag,
// chunk count, summary, and the active chunk generation the vector store
// pivots its shadow-swap replace on.
type RedisDocumentStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisDocumentStore(ctx context.Context) *RedisDocumentStore {
	internal := redisStore.GetRedisStore(ctx, config.RedisDocumentStore)
	if internal == nil {
		return nil
	}
	return &RedisDocumentStore{
		store:  internal,
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

// TestDocumentStore wires a store around an injected redis client, for tests.
func TestDocumentStore(internal *redisStore.Store) *RedisDocumentStore {
	return &RedisDocumentStore{
		store:  internal,
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

func documentKey(documentId string) string {
	return "document:" + documentId
}

func (s *RedisDocumentStore) GetState(ctx context.Context, documentId string) (docModel.DocumentState, bool) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", documentId)

	raw, err := s.store.Get(ctx, documentKey(documentId))
	if s.store.IsNil(err) {
		return docModel.DocumentState{}, false
	}
	if err != nil {
		log.Error("Error reading document state", "err", err)
		return docModel.DocumentState{}, false
	}

	var state docModel.DocumentState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		log.Error("Error unmarshalling document state", "err", err)
		return docModel.DocumentState{}, false
	}
	return state, true
}

func (s *RedisDocumentStore) SaveState(ctx context.Context, state docModel.DocumentState) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", state.DocumentId)

	//the processor rewrites the whole record, keep the generation the vector
	//store flipped in between
	if existing, found := s.GetState(ctx, state.DocumentId); found && state.Generation == "" {
		state.Generation = existing.Generation
	}

	data, err := json.Marshal(state)
	if err != nil {
		log.Error("Error marshalling document state", "err", err)
		return err
	}
	//document state has no TTL, it lives as long as the document
	return s.store.Set(ctx, documentKey(state.DocumentId), data, 0)
}

func (s *RedisDocumentStore) DeleteState(ctx context.Context, documentId string) {
	if err := s.store.Del(ctx, documentKey(documentId)); err != nil && !s.store.IsNil(err) {
		s.logger.Error("Error deleting document state", "err", err)
	}
}

// ActiveGeneration / SetActiveGeneration implement vectorDB.GenerationTracker.

func (s *RedisDocumentStore) ActiveGeneration(ctx context.Context, documentId string) (string, bool) {
	state, found := s.GetState(ctx, documentId)
	if !found || state.Generation == "" {
		return "", false
	}
	return state.Generation, true
}

func (s *RedisDocumentStore) SetActiveGeneration(ctx context.Context, documentId string, generation string) error {
	state, _ := s.GetState(ctx, documentId)
	state.DocumentId = documentId
	state.Generation = generation
	state.UpdatedAt = time.Now()

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, documentKey(documentId), data, 0)
}
