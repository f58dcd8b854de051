package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/docmind/docmind/internal/config"
	"github.com/docmind/docmind/internal/data/redisStore"
	"github.com/docmind/docmind/internal/domain/docModel"
	"github.com/docmind/docmind/pkg/logger_i"
)

// RedisHistoryStore keeps each conversation's turns in a Redis list, newest
// at the tail. The core only ever reads a bounded recent window and appends
// the turn pair of a successful exchange.
type RedisHistoryStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisHistoryStore(ctx context.Context) *RedisHistoryStore {
	internal := redisStore.GetRedisStore(ctx, config.RedisHistoryStore)
	if internal == nil {
		return nil
	}
	return &RedisHistoryStore{
		store:  internal,
		logger: logger_i.NewLogger("HistoryStore"),
	}
}

// TestHistoryStore wires a store around an injected redis client, for tests.
func TestHistoryStore(internal *redisStore.Store) *RedisHistoryStore {
	return &RedisHistoryStore{
		store:  internal,
		logger: logger_i.NewLogger("HistoryStore"),
	}
}

func conversationKey(conversationId string) string {
	return "conversation:" + conversationId
}

func turnsKey(conversationId string) string {
	return "turns:" + conversationId
}

func (s *RedisHistoryStore) ValidateConversationId(ctx context.Context, conversationId string) bool {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "conversationId", conversationId)
	isFound, err := s.store.Exists(ctx, conversationKey(conversationId))
	if err != nil && !s.store.IsNil(err) {
		log.Error("Failed to check if conversation exists", "err", err)
		return false
	}
	return isFound
}

func (s *RedisHistoryStore) InitNewConversation(ctx context.Context, conversationId string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "conversationId", conversationId)
	log.Debug("Initializing new conversation")

	if err := s.store.Del(ctx, turnsKey(conversationId)); err != nil && !s.store.IsNil(err) {
		log.Error("Error clearing previous turns", "err", err)
	}
	return s.store.Set(ctx, conversationKey(conversationId), "1", config.RedisHistoryStoreTTL)
}

func (s *RedisHistoryStore) AppendTurns(ctx context.Context, conversationId string, turns ...docModel.Turn) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "conversationId", conversationId)

	if !s.ValidateConversationId(ctx, conversationId) {
		err := errors.New("invalid conversation id")
		log.Error("Failed validation before saving turns", "err", err)
		return err
	}

	values := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		data, err := json.Marshal(t)
		if err != nil {
			log.Error("Error marshalling turn", "err", err)
			return err
		}
		values = append(values, data)
	}

	if err := s.store.ListPush(ctx, turnsKey(conversationId), values...); err != nil {
		log.Error("Error saving turns", "err", err)
		return err
	}

	//keep the turns list on the same clock as the conversation key, so the
	//turns never outlive the conversation they belong to
	if err := s.store.Expire(ctx, turnsKey(conversationId), config.RedisHistoryStoreTTL); err != nil {
		log.Error("Error refreshing turns expiry", "err", err)
	}
	if err := s.store.Expire(ctx, conversationKey(conversationId), config.RedisHistoryStoreTTL); err != nil {
		log.Error("Error refreshing conversation expiry", "err", err)
	}
	return nil
}

func (s *RedisHistoryStore) RecentTurns(ctx context.Context, conversationId string, limit int) ([]docModel.Turn, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "conversationId", conversationId)

	raw, err := s.store.ListRecent(ctx, turnsKey(conversationId), limit)
	if err != nil && !s.store.IsNil(err) {
		log.Error("Error getting history", "err", err)
		return nil, err
	}

	turns := make([]docModel.Turn, 0, len(raw))
	for _, r := range raw {
		var t docModel.Turn
		if err := json.Unmarshal([]byte(r), &t); err != nil {
			log.Error("Error unmarshalling turn", "err", err)
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}
