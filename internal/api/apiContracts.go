package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type ChatResult struct {
	ConversationId string `json:"conversation_id"`
	Question       string `json:"question"`
	Answer         string `json:"answer"`
}

type ProcessResult struct {
	DocumentId    string `json:"document_id"`
	ChunksCreated int    `json:"chunks_created"`
	Summary       string `json:"summary,omitempty"`
}

type Result struct {
	Status        string         `json:"status"`
	ChatResult    *ChatResult    `json:"chat_result,omitempty"`
	ProcessResult *ProcessResult `json:"process_result,omitempty"`
}

type InitJobResponse struct {
	Id             string `json:"id"`
	ConversationId string `json:"conversation_id,omitempty"`
	StatusURL      string `json:"status_url"`
}

// requests---------------------

type ChatRequest struct {
	Message        string `json:"message" validate:"required"`
	OwnerID        string `json:"owner_id" validate:"required"`
	DocumentID     string `json:"document_id" validate:"required"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type ProcessDocumentRequest struct {
	OwnerID string `json:"owner_id" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// diagnostic views --------------

type DocumentResponse struct {
	DocumentId string `json:"document_id"`
	Processed  bool   `json:"is_processed"`
	ChunkCount int    `json:"chunk_count"`
	Summary    string `json:"summary,omitempty"`
}

type ChunkPreview struct {
	Index   int    `json:"index"`
	Preview string `json:"preview"`
}

type DocumentChunksResponse struct {
	DocumentId string         `json:"document_id"`
	Processed  bool           `json:"is_processed"`
	ChunkCount int            `json:"chunk_count"`
	Chunks     []ChunkPreview `json:"chunks"`
}
