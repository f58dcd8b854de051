package adapter

import (
	"fmt"
	"time"

	"github.com/docmind/docmind/internal/api"
	"github.com/docmind/docmind/internal/domain/docModel"
	"github.com/docmind/docmind/internal/domain/jobModel"
)

func ToInitJobResponse(id string, conversationId string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:             id,
		ConversationId: conversationId,
		StatusURL:      fmt.Sprintf("status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{Status: string(job.Status)}
	switch job.JobType {
	case jobModel.JobTypeProcess:
		result.ProcessResult = toProcessResult(job.JobPayload)
	default:
		result.ChatResult = toChatResult(job.JobPayload)
	}

	return api.JobResponse{
		Id:        job.Id,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func toChatResult(payload jobModel.JobPayload) *api.ChatResult {
	if payload.Answer == "" {
		return nil
	}
	return &api.ChatResult{
		ConversationId: payload.ConversationId,
		Question:       payload.Question,
		Answer:         payload.Answer,
	}
}

func toProcessResult(payload jobModel.JobPayload) *api.ProcessResult {
	return &api.ProcessResult{
		DocumentId:    payload.DocumentId,
		ChunksCreated: payload.ChunksCreated,
		Summary:       payload.Summary,
	}
}

func ToDocumentResponse(state docModel.DocumentState) api.DocumentResponse {
	return api.DocumentResponse{
		DocumentId: state.DocumentId,
		Processed:  state.Processed,
		ChunkCount: state.ChunkCount,
		Summary:    state.Summary,
	}
}

func ToDocumentChunksResponse(state docModel.DocumentState, chunks []docModel.Chunk) api.DocumentChunksResponse {
	previews := make([]api.ChunkPreview, len(chunks))
	for i, c := range chunks {
		previews[i] = api.ChunkPreview{
			Index:   c.SequenceIndex,
			Preview: preview(c.Text, 200),
		}
	}
	return api.DocumentChunksResponse{
		DocumentId: state.DocumentId,
		Processed:  state.Processed,
		ChunkCount: len(chunks),
		Chunks:     previews,
	}
}

func preview(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
