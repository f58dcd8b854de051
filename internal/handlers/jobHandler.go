package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/docmind/docmind/internal/api"
	"github.com/docmind/docmind/internal/config"
	"github.com/docmind/docmind/internal/domain/jobModel"
	"github.com/docmind/docmind/internal/job"
	"github.com/docmind/docmind/internal/metrics"
	"github.com/docmind/docmind/internal/rag/vectorDB"
	"github.com/docmind/docmind/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service    *job.Service
	chunkStore vectorDB.ChunkStore
}

type newJobData struct {
	id             string
	traceId        string
	jobType        jobModel.JobType
	ownerId        string
	documentId     string
	conversationId string
	isNewChat      bool
	message        string
	content        string
}

func InitJobHandler(jobService *job.Service, chunkStore vectorDB.ChunkStore) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService, chunkStore: chunkStore}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})
}

func CreateNewJob(newJob newJobData) {
	logJH.With("traceId", newJob.traceId, "job id", newJob.id)
	logJH.Info("To create new job")
	//the conversation must exist before any worker can pick the job up,
	//or the exchange's history append fails validation and is lost
	if newJob.isNewChat {
		logJH.Info("Create new conversation")
		handlerInstance.initNewConversation(newJob.conversationId, newJob.traceId)
	}
	handlerInstance.pushToJobChannel(newJob)
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

func ValidateChatRequest(chatReq api.ChatRequest) bool {
	if handlerInstance == nil {
		return false
	}
	if chatReq.Message == "" || chatReq.OwnerID == "" || chatReq.DocumentID == "" {
		return false
	}
	if chatReq.ConversationID == "" {
		return true
	}
	logJH.Debug(" Validating conversation id ", "conversationId :", chatReq.ConversationID)
	return handlerInstance.service.HistoryStore.ValidateConversationId(context.Background(), chatReq.ConversationID)
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {

	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobModel.JobStatusQueued
	_job.JobType = newJob.jobType
	_job.JobPayload.OwnerId = newJob.ownerId
	_job.JobPayload.DocumentId = newJob.documentId

	if newJob.jobType == jobModel.JobTypeProcess {
		_job.CurrentStep = jobModel.ProcessInit
		_job.JobPayload.Content = newJob.content

	} else {
		_job.CurrentStep = jobModel.ChatInit
		_job.JobPayload.ConversationId = newJob.conversationId
		_job.JobPayload.Question = newJob.message
	}

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //blocking send so the system is not overwhelmed
	logJH.Info("Created new job")

	//a new worker is added every N requests, and immediately for a processing
	//job since embedding a whole document can hold a worker for a while
	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _job.JobType == jobModel.JobTypeProcess {
		metrics.StartDispatcherSignalCount()
		logJH.Debug("Request count ", accurateCount)
		h.service.DispatcherChannel <- true
	}
}

func (h *JobHandler) initNewConversation(conversationId string, traceId string) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	err := h.service.HistoryStore.InitNewConversation(ctxC, conversationId)
	if err != nil {
		logJH.Error("Error initiating new conversation", conversationId, err)
		return
	}
}
