package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/docmind/docmind/internal/adapter"
	"github.com/docmind/docmind/internal/adapter/utils"
	"github.com/docmind/docmind/internal/api"
	"github.com/docmind/docmind/internal/config"
	"github.com/docmind/docmind/internal/domain/jobModel"
	"github.com/docmind/docmind/pkg/logger_i"
)

var logRH *logger_i.Logger

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ChatHandler godoc
// @Summary      Ask a question about a document
// @Description  Accepts a question scoped to an owner's document, queues a grounded answering job, and returns a job ID to track status.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest      true  "Question, scope keys and optional conversation ID"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data or conversation ID"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {

	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request ", request.RemoteAddr)
		return
	}

	var requestData api.ChatRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the Chat handler reader :", err)
		}
	}(request.Body)

	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !ValidateChatRequest(requestData) {
		logRH.Warn("Bad Chat Request: ", "error:", err, "request data:", requestData)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.ConversationID, "Bad Request")
		return
	}

	//a question against an unprocessed document is a normal client error,
	//not a pipeline failure
	state, found := handlerInstance.service.DocumentStore.GetState(request.Context(), requestData.DocumentID)
	if !found || !state.Processed {
		WriteErrorResponse(w, http.StatusBadRequest, requestData.ConversationID,
			"Document not processed yet. Call POST /documents/{id}/process first.")
		return
	}

	conversationId := requestData.ConversationID
	isNewChat := false
	if conversationId == "" {
		conversationId = utils.GetNewUUID()
		isNewChat = true
		logRH.Debug(" New conversation : ", "conversationId:", conversationId)
	}

	newJob := newJobData{
		id:             utils.GetNewUUID(),
		traceId:        request.Context().Value(config.TRACE_ID_KEY).(string),
		jobType:        jobModel.JobTypeChat,
		ownerId:        requestData.OwnerID,
		documentId:     requestData.DocumentID,
		conversationId: conversationId,
		isNewChat:      isNewChat,
		message:        requestData.Message,
	}
	CreateNewJob(newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id, conversationId))
}

// ProcessDocumentHandler godoc
// @Summary      Process a document for retrieval
// @Description  Chunks and embeds the supplied content, replacing any prior chunk set for the document, then generates a summary. Runs as a background job.
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Document ID"
// @Param        request  body      api.ProcessDocumentRequest true  "Owner and document content"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Missing owner or content"
// @Router       /documents/{id}/process [post]
func ProcessDocumentHandler(w http.ResponseWriter, request *http.Request) {

	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request ", request.RemoteAddr)
		return
	}

	documentId := utils.GetChiURLParam(request, "id")

	var requestData api.ProcessDocumentRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the Process handler reader :", err)
		}
	}(request.Body)

	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || documentId == "" || requestData.OwnerID == "" {
		logRH.Warn("Bad Process Request: ", "error:", err, "documentId:", documentId)
		WriteErrorResponse(w, http.StatusBadRequest, documentId, "Bad Request")
		return
	}
	if requestData.Content == "" {
		WriteErrorResponse(w, http.StatusBadRequest, documentId, "Document has no content to process")
		return
	}

	newJob := newJobData{
		id:         utils.GetNewUUID(),
		traceId:    request.Context().Value(config.TRACE_ID_KEY).(string),
		jobType:    jobModel.JobTypeProcess,
		ownerId:    requestData.OwnerID,
		documentId: documentId,
		content:    requestData.Content,
	}
	CreateNewJob(newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id, ""))
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse  "The current status of the job"
// @Failure      404  {object}  api.JobResponse  "Job not found"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	idString := utils.GetChiURLParam(r, "id")
	result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

	logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// GetDocumentHandler godoc
// @Summary      Get document processing state
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentResponse
// @Failure      404  {object}  api.JobResponse  "Document not found"
// @Router       /documents/{id} [get]
func GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	documentId := utils.GetChiURLParam(r, "id")
	state, found := handlerInstance.service.DocumentStore.GetState(r.Context(), documentId)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, documentId, "Document not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(state))
}

// GetDocumentChunksHandler godoc
// @Summary      List a document's chunks
// @Description  Returns the stored chunk set in sequence order with short previews - useful to see exactly how a document was split.
// @Tags         Documents
// @Produce      json
// @Param        id     path      string  true  "Document ID"
// @Param        owner  query     string  true  "Owner ID"
// @Success      200  {object}  api.DocumentChunksResponse
// @Failure      404  {object}  api.JobResponse  "Document not found"
// @Router       /documents/{id}/chunks [get]
func GetDocumentChunksHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	documentId := utils.GetChiURLParam(r, "id")
	ownerId := r.URL.Query().Get("owner")

	state, found := handlerInstance.service.DocumentStore.GetState(r.Context(), documentId)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, documentId, "Document not found")
		return
	}

	chunks, err := handlerInstance.chunkStore.ListChunks(r.Context(), ownerId, documentId)
	if err != nil {
		logRH.Error("Error listing chunks", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, documentId, "Internal Server Error")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentChunksResponse(state, chunks))
}
