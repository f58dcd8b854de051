package worker

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/docmind/docmind/internal/config"
	"github.com/docmind/docmind/internal/domain/docModel"
	jobmodel "github.com/docmind/docmind/internal/domain/jobModel"
	"github.com/docmind/docmind/internal/metrics"
	"github.com/docmind/docmind/pkg/logger_i"
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		// Record total time at the end
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.JobExecutionTimeout)
	defer cancel()
	jobLogger := logger.With("traceId", job.TraceId, "jobId", job.Id)
	jobLogger.Debug("Processing job", "jobType", job.JobType)

	saveJobState(ctx, job, jobmodel.JobStatusRunning)

	if job.JobType == jobmodel.JobTypeProcess {
		job = processDocument(ctx, job, jobLogger)
	} else {
		job = answerQuestion(ctx, job, jobLogger)
	}

	job.EndTime = time.Now()
	if job.Status != jobmodel.JobStatusError {
		job.Status = jobmodel.JobStatusComplete
		job.CurrentStep = jobmodel.Complete
	}
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		jobLogger.Error("Failed to save finished job", "err", err)
	}
}

func removeWorker(reason string) {

	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()

}

func processDocument(ctx context.Context, job jobmodel.Job, jobLogger *logger_i.Logger) jobmodel.Job {
	job.CurrentStep = jobmodel.ProcessChunking
	payload := job.JobPayload

	count, err := _ragService.ProcessDocument(ctx, payload.DocumentId, payload.OwnerId, payload.Content)
	if err != nil {
		jobLogger.Error("Document processing failed", "err", err)
		return failJob(job, err)
	}

	job.JobPayload.ChunksCreated = count
	job.JobPayload.Content = "" //done with the raw text, keep the stored job small
	if state, ok := _jobService.DocumentStore.GetState(ctx, payload.DocumentId); ok {
		job.JobPayload.Summary = state.Summary
	}
	return job
}

func answerQuestion(ctx context.Context, job jobmodel.Job, jobLogger *logger_i.Logger) jobmodel.Job {
	job.CurrentStep = jobmodel.RAGCall
	payload := job.JobPayload

	answer, err := _ragService.Answer(ctx, payload.Question, payload.DocumentId, payload.OwnerId, payload.ConversationId)
	if err != nil {
		jobLogger.Error("Chat exchange failed", "err", err)
		return failJob(job, err)
	}
	job.JobPayload.Answer = answer

	//the exchange only becomes history once the answer exists
	job.CurrentStep = jobmodel.RedisCall
	turns := []docModel.Turn{
		{Role: docModel.RoleUser, Content: payload.Question, CreatedAt: time.Now()},
		{Role: docModel.RoleAssistant, Content: answer, CreatedAt: time.Now()},
	}
	if err := _jobService.HistoryStore.AppendTurns(ctx, payload.ConversationId, turns...); err != nil {
		jobLogger.Error("Failed to save conversation history", "err", err)
	}
	return job
}

func failJob(job jobmodel.Job, err error) jobmodel.Job {
	job.Status = jobmodel.JobStatusError
	job.CurrentStep = jobmodel.Error
	job.Error = toJobError(err)
	return job
}

// toJobError maps pipeline failures onto the externally visible error shape.
// Provider and timeout failures are retryable, contract violations are not.
func toJobError(err error) jobmodel.JobError {
	switch {
	case errors.Is(err, docModel.ErrInvalidInput):
		return jobmodel.JobError{Code: http.StatusBadRequest, Message: err.Error(), Retry: false}
	case errors.Is(err, docModel.ErrProviderUnavailable):
		return jobmodel.JobError{Code: http.StatusBadGateway, Message: err.Error(), Retry: true}
	case errors.Is(err, docModel.ErrPartialWriteRisk):
		return jobmodel.JobError{Code: http.StatusInternalServerError, Message: err.Error(), Retry: true}
	case errors.Is(err, context.DeadlineExceeded):
		return jobmodel.JobError{Code: http.StatusGatewayTimeout, Message: "job timed out", Retry: true}
	default:
		return jobmodel.JobError{Code: http.StatusInternalServerError, Message: err.Error(), Retry: false}
	}
}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update job status", "err", err)
	}
}
