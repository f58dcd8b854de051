package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	ChatInit         InternalStatus = "Init"
	RAGCall          InternalStatus = "RAG"
	EmbeddingAPICall InternalStatus = "EmbeddingAPI"
	VectorDBCall     InternalStatus = "VectorDB"
	LLMCall          InternalStatus = "LLM"
	RedisCall        InternalStatus = "Redis"

	ProcessInit     InternalStatus = "ProcessInit"
	ProcessChunking InternalStatus = "ProcessChunking"
	Error           InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeChat    JobType = "Chat"
	JobTypeProcess JobType = "Process"
)

type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	//scope keys - every chunk read and write is filtered by these
	DocumentId string `json:"document_id,omitempty"`
	OwnerId    string `json:"owner_id,omitempty"`

	//chat exchange
	ConversationId string `json:"conversation_id,omitempty"`
	Question       string `json:"question,omitempty"`
	Answer         string `json:"answer,omitempty"`

	//document processing
	Content       string `json:"content,omitempty"`
	ChunksCreated int    `json:"chunks_created,omitempty"`
	Summary       string `json:"summary,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
