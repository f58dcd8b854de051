package rag

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/docmind/docmind/internal/config"
	"github.com/docmind/docmind/internal/domain/docModel"
	"github.com/docmind/docmind/internal/metrics"
	"github.com/docmind/docmind/internal/rag/chunker"
	"github.com/docmind/docmind/internal/rag/embedding"
	"github.com/docmind/docmind/internal/rag/llm"
	"github.com/docmind/docmind/internal/rag/vectorDB"
	"github.com/docmind/docmind/pkg/logger_i"
	"github.com/google/uuid"
)

// Service is the retrieval-augmented answering core. The worker only calls
// this - it doesn't need to know the llm, embedder or the vector store.
//
// All three operations are synchronous return-or-fail calls: ProcessDocument
// is idempotent by replacement, Answer persists nothing itself, so the caller
// can safely retry either one.
type Service interface {
	ProcessDocument(ctx context.Context, documentId string, ownerId string, content string) (int, error)
	Answer(ctx context.Context, question string, documentId string, ownerId string, conversationId string) (string, error)
	Summarize(ctx context.Context, content string) (string, error)
}

// Config carries the pipeline knobs explicitly so nothing reaches for
// process-wide ambient state. Model credentials live with the injected
// providers, not here.
type Config struct {
	ChunkSizeWords    int
	ChunkOverlapWords int
	TopK              int
	HistoryTurnLimit  int
	Dimensionality    int
}

func DefaultConfig() Config {
	return Config{
		ChunkSizeWords:    config.ChunkSizeWords,
		ChunkOverlapWords: config.ChunkOverlapWords,
		TopK:              config.TopKChunks,
		HistoryTurnLimit:  config.HistoryTurnLimit,
		Dimensionality:    int(config.EmbeddingOutputDimensionality),
	}
}

type service struct {
	chunkStore  vectorDB.ChunkStore
	llmProvider llm.Provider
	embedder    embedding.Embedder
	history     docModel.HistoryStore
	documents   docModel.DocumentStore
	cfg         Config
	logger      *logger_i.Logger

	//at most one in-flight processing run per document
	docLocks sync.Map
}

// NewService constructor
func NewService(chunks vectorDB.ChunkStore, llm llm.Provider, em embedding.Embedder, history docModel.HistoryStore, documents docModel.DocumentStore, cfg Config) Service {
	return &service{
		chunkStore:  chunks,
		llmProvider: llm,
		embedder:    em,
		history:     history,
		documents:   documents,
		cfg:         cfg,
		logger:      logger_i.NewLogger("RAG Service :"),
	}
}

// ProcessDocument replaces the document's chunk set with a freshly chunked and
// embedded one. Deleting first means a run that dies mid-embedding leaves the
// corpus empty ("unprocessed"), never a stale+fresh mix.
func (s *service) ProcessDocument(ctx context.Context, documentId string, ownerId string, content string) (int, error) {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", documentId)

	unlock := s.lockDocument(documentId)
	defer unlock()

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_processing", time.Since(start)) }()

	if err := s.chunkStore.DeleteChunks(ctx, documentId); err != nil {
		return 0, fmt.Errorf("clearing previous chunks: %w", err)
	}
	s.markUnprocessed(ctx, documentId, ownerId)

	texts := chunker.Chunk(content, s.cfg.ChunkSizeWords, s.cfg.ChunkOverlapWords)
	if len(texts) == 1 && strings.TrimSpace(texts[0]) == "" {
		inMethodLogger.Warn("Document has no content to process")
		return 0, fmt.Errorf("%w: document has no content to process", docModel.ErrInvalidInput)
	}
	inMethodLogger.Debug("Chunked document", "chunks", len(texts))

	vectors, err := s.executeCorpusEmbeddingStep(ctx, texts)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	chunks := make([]docModel.Chunk, len(texts))
	for i, text := range texts {
		if len(vectors[i]) != s.cfg.Dimensionality {
			return 0, fmt.Errorf("%w: embedding %d came back with dimensionality %d, corpus uses %d",
				docModel.ErrInvalidInput, i, len(vectors[i]), s.cfg.Dimensionality)
		}
		chunks[i] = docModel.Chunk{
			Id:            uuid.New().String(),
			DocumentId:    documentId,
			OwnerId:       ownerId,
			SequenceIndex: i,
			Text:          text,
			Vector:        vectors[i],
			CreatedAt:     now,
		}
	}

	//single durable unit - the store guarantees readers see all of it or none
	if err := s.chunkStore.ReplaceChunks(ctx, documentId, ownerId, chunks); err != nil {
		return 0, fmt.Errorf("replacing chunks: %w", err)
	}

	//the chunk set is committed, a failed summary does not invalidate it
	summary, err := s.Summarize(ctx, content)
	if err != nil {
		inMethodLogger.Warn("Summary generation failed", "error", err)
		summary = ""
	}

	state := docModel.DocumentState{
		DocumentId: documentId,
		OwnerId:    ownerId,
		Processed:  true,
		ChunkCount: len(chunks),
		Summary:    summary,
		UpdatedAt:  time.Now(),
	}
	if err := s.documents.SaveState(ctx, state); err != nil {
		inMethodLogger.Error("Failed to save document state", "error", err)
	}

	return len(chunks), nil
}

// Answer runs one grounded chat exchange: retrieve, assemble, generate. A
// document with no stored chunks short-circuits to the fixed insufficient
// information response without spending a generation call.
func (s *service) Answer(ctx context.Context, question string, documentId string, ownerId string, conversationId string) (string, error) {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", documentId)

	processContext, cancel := context.WithTimeout(ctx, config.ExternalCallStepTimeout)
	defer cancel()

	questionVector, err := s.executeQueryEmbeddingStep(processContext, question)
	if err != nil {
		return "", err
	}

	matches, err := s.executeVectorSearchStep(processContext, ownerId, documentId, questionVector)
	if err != nil {
		return "", err
	}

	if len(matches) == 0 {
		inMethodLogger.Debug("No relevant chunks, returning the ungrounded short-circuit answer")
		metrics.CountUngroundedAnswer()
		return config.InsufficientContextAnswer, nil
	}

	turns, err := s.assemblePrompt(ctx, question, conversationId, matches)
	if err != nil {
		return "", err
	}

	return s.executeLLMStep(processContext, turns, config.AnswerMaxTokens, config.AnswerTemperature)
}

// Summarize produces a three sentence abstract. Input is truncated to bound
// cost, so summaries of very long documents only reflect the leading portion.
func (s *service) Summarize(ctx context.Context, content string) (string, error) {
	processContext, cancel := context.WithTimeout(ctx, config.ExternalCallStepTimeout)
	defer cancel()

	prompt := fmt.Sprintf(config.SummaryPrompt, truncate(content, config.SummaryInputCharLimit))
	turns := []docModel.Turn{{Role: docModel.RoleUser, Content: prompt}}

	answer, err := s.executeLLMStep(processContext, turns, config.SummaryMaxTokens, config.SummaryTemperature)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}
