package store

import (
	"context"
	"encoding/json"

	"github.com/docmind/docmind/internal/config"
	"github.com/docmind/docmind/internal/data/redisStore"
	"github.com/docmind/docmind/internal/domain/jobModel"
	"github.com/docmind/docmind/pkg/logger_i"
)

type RedisJobStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisJobStore(ctx context.Context) *RedisJobStore {
	internal := redisStore.GetRedisStore(ctx, config.RedisJobStore)
	if internal == nil {
		return nil
	}
	return &RedisJobStore{
		store:  internal,
		logger: logger_i.NewLogger("JobStore"),
	}
}

// TestJobStore wires a store around an injected redis client, for tests.
func TestJobStore(internal *redisStore.Store) *RedisJobStore {
	return &RedisJobStore{
		store:  internal,
		logger: logger_i.NewLogger("JobStore"),
	}
}

func jobKey(jobId string) string {
	return "job:" + jobId
}

func (s *RedisJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "jobId", job.Id)

	data, err := json.Marshal(job)
	if err != nil {
		log.Error("Error marshalling job", "err", err)
		return err
	}
	return s.store.Set(ctx, jobKey(job.Id), data, config.RedisJobStoreTTL)
}

func (s *RedisJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "jobId", jobId)

	raw, err := s.store.Get(ctx, jobKey(jobId))
	if s.store.IsNil(err) {
		return jobModel.Job{}, false
	}
	if err != nil {
		log.Error("Error reading job", "err", err)
		return jobModel.Job{}, false
	}

	var job jobModel.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error("Error unmarshalling job", "err", err)
		return jobModel.Job{}, false
	}
	return job, true
}

func (s *RedisJobStore) DeleteJob(ctx context.Context, jobID string) {
	if err := s.store.Del(ctx, jobKey(jobID)); err != nil && !s.store.IsNil(err) {
		s.logger.Error("Error deleting job", "err", err)
	}
}
