package handlers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/docmind/docmind/internal/domain/docModel"
	"github.com/docmind/docmind/internal/domain/jobModel"
	"github.com/docmind/docmind/internal/job"
	"github.com/docmind/docmind/pkg/logger_i"
)

type trackingHistoryStore struct {
	mu            sync.Mutex
	conversations map[string]bool
}

func (s *trackingHistoryStore) ValidateConversationId(ctx context.Context, conversationId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversations[conversationId]
}

func (s *trackingHistoryStore) InitNewConversation(ctx context.Context, conversationId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[conversationId] = true
	return nil
}

func (s *trackingHistoryStore) AppendTurns(ctx context.Context, conversationId string, turns ...docModel.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.conversations[conversationId] {
		return fmt.Errorf("invalid conversation id %s", conversationId)
	}
	return nil
}

func (s *trackingHistoryStore) RecentTurns(ctx context.Context, conversationId string, limit int) ([]docModel.Turn, error) {
	return nil, nil
}

// A worker may pull a chat job off the channel the instant it is enqueued, so
// the conversation has to be registered before the push or the exchange's
// history append fails validation and the turns are lost.
func TestCreateNewJob_ConversationExistsBeforeJobIsVisible(t *testing.T) {
	history := &trackingHistoryStore{conversations: make(map[string]bool)}
	jobService := &job.Service{
		JobChannel:        make(chan jobModel.Job, 1),
		DispatcherChannel: make(chan bool, 64),
		HistoryStore:      history,
	}
	handlerInstance = &JobHandler{service: jobService}
	logJH = logger_i.NewLogger("JobHandler")
	logRH = logger_i.NewLogger("RequestHandler")

	const iterations = 200
	appendErrors := make(chan error, iterations)
	go func() {
		for i := 0; i < iterations; i++ {
			_job := <-jobService.JobChannel
			appendErrors <- history.AppendTurns(context.Background(), _job.JobPayload.ConversationId,
				docModel.Turn{Role: docModel.RoleUser, Content: "what does the report say", CreatedAt: time.Now()})
		}
	}()

	for i := 0; i < iterations; i++ {
		CreateNewJob(newJobData{
			id:             fmt.Sprintf("job_%d", i),
			traceId:        "trace_f1",
			jobType:        jobModel.JobTypeChat,
			ownerId:        "owner_1",
			documentId:     "doc_1",
			conversationId: fmt.Sprintf("conv_%d", i),
			isNewChat:      true,
			message:        "what does the report say",
		})
	}

	for i := 0; i < iterations; i++ {
		if err := <-appendErrors; err != nil {
			t.Fatalf("history append raced conversation setup: %v", err)
		}
	}
}
