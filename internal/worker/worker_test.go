package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/docmind/docmind/internal/domain/docModel"
	"github.com/docmind/docmind/internal/domain/jobModel"
	"github.com/docmind/docmind/internal/job"
)

// MockRagService to track if jobs are executed
type MockRagService struct {
	ProcessedCount int32
	AnsweredCount  int32
}

func (m *MockRagService) ProcessDocument(ctx context.Context, documentId string, ownerId string, content string) (int, error) {
	atomic.AddInt32(&m.ProcessedCount, 1)
	return 3, nil
}

func (m *MockRagService) Answer(ctx context.Context, question string, documentId string, ownerId string, conversationId string) (string, error) {
	atomic.AddInt32(&m.AnsweredCount, 1)
	return "an answer", nil
}

func (m *MockRagService) Summarize(ctx context.Context, content string) (string, error) {
	return "a summary", nil
}

type MockJobStore struct {
	mu    sync.Mutex
	saved map[string]jobModel.Job
}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = make(map[string]jobModel.Job)
	}
	m.saved[j.Id] = j
	return nil
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.saved[jobId]
	return j, ok
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

type MockHistoryStore struct {
	appended int32
}

func (m *MockHistoryStore) ValidateConversationId(ctx context.Context, id string) bool { return true }
func (m *MockHistoryStore) InitNewConversation(ctx context.Context, id string) error   { return nil }
func (m *MockHistoryStore) AppendTurns(ctx context.Context, id string, turns ...docModel.Turn) error {
	atomic.AddInt32(&m.appended, int32(len(turns)))
	return nil
}
func (m *MockHistoryStore) RecentTurns(ctx context.Context, id string, limit int) ([]docModel.Turn, error) {
	return nil, nil
}

type MockDocumentStore struct{}

func (m *MockDocumentStore) GetState(ctx context.Context, documentId string) (docModel.DocumentState, bool) {
	return docModel.DocumentState{DocumentId: documentId, Processed: true, Summary: "a summary"}, true
}
func (m *MockDocumentStore) SaveState(ctx context.Context, state docModel.DocumentState) error {
	return nil
}
func (m *MockDocumentStore) DeleteState(ctx context.Context, documentId string) {}

func TestWorkerPool_Flow(t *testing.T) {
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          &MockJobStore{},
		HistoryStore:      &MockHistoryStore{},
		DocumentStore:     &MockDocumentStore{},
	}
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc, mockRag)
	InitWorkerPool(stopChan, wg)

	// Reset global state for test
	atomic.StoreInt64(&currentWorkerCount, 0)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true

		time.Sleep(50 * time.Millisecond)

		count := atomic.LoadInt64(&currentWorkerCount)
		if count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker runs a chat job", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{
			Id:      "chat-1",
			JobType: jobModel.JobTypeChat,
			JobPayload: jobModel.JobPayload{
				Question:       "a question",
				DocumentId:     "doc-1",
				OwnerId:        "owner-1",
				ConversationId: "conv-1",
			},
		}

		time.Sleep(50 * time.Millisecond)

		if atomic.LoadInt32(&mockRag.AnsweredCount) != 1 {
			t.Errorf("Expected 1 answered job, got %d", mockRag.AnsweredCount)
		}

		saved, found := jobSvc.JobStore.GetJob(context.Background(), "chat-1")
		if !found {
			t.Fatal("Finished job was not saved")
		}
		if saved.Status != jobModel.JobStatusComplete {
			t.Errorf("Job status got %s, want %s", saved.Status, jobModel.JobStatusComplete)
		}
		if saved.JobPayload.Answer != "an answer" {
			t.Errorf("Job answer got %q", saved.JobPayload.Answer)
		}

		history := jobSvc.HistoryStore.(*MockHistoryStore)
		if atomic.LoadInt32(&history.appended) != 2 {
			t.Errorf("Expected the question and answer appended to history, got %d turns", history.appended)
		}
	})

	t.Run("Worker runs a processing job", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{
			Id:      "process-1",
			JobType: jobModel.JobTypeProcess,
			JobPayload: jobModel.JobPayload{
				DocumentId: "doc-1",
				OwnerId:    "owner-1",
				Content:    "raw document text",
			},
		}

		time.Sleep(50 * time.Millisecond)

		if atomic.LoadInt32(&mockRag.ProcessedCount) != 1 {
			t.Errorf("Expected 1 processed job, got %d", mockRag.ProcessedCount)
		}

		saved, found := jobSvc.JobStore.GetJob(context.Background(), "process-1")
		if !found {
			t.Fatal("Finished job was not saved")
		}
		if saved.JobPayload.ChunksCreated != 3 {
			t.Errorf("Chunks created got %d, want 3", saved.JobPayload.ChunksCreated)
		}
		if saved.JobPayload.Summary != "a summary" {
			t.Errorf("Summary got %q", saved.JobPayload.Summary)
		}
		if saved.JobPayload.Content != "" {
			t.Error("Raw content should be dropped from the stored job")
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			// Success
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestWorkerPool_IdleRetireKeepsMinimum(t *testing.T) {
	defer atomic.StoreInt64(&currentWorkerCount, 0)

	atomic.StoreInt64(&currentWorkerCount, atomic.LoadInt64(&minWorkerCount))
	if idleRetireAllowed() {
		t.Error("The last worker at the pool floor must not retire on idle timeout")
	}

	atomic.StoreInt64(&currentWorkerCount, atomic.LoadInt64(&minWorkerCount)+2)
	if !idleRetireAllowed() {
		t.Error("Surplus idle workers above the floor should retire")
	}
}
