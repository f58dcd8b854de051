package rag

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/docmind/docmind/internal/config"
	"github.com/docmind/docmind/internal/domain/docModel"
	"github.com/docmind/docmind/internal/metrics"
	"golang.org/x/sync/errgroup"
)

func (s *service) lockDocument(documentId string) func() {
	v, _ := s.docLocks.LoadOrStore(documentId, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *service) markUnprocessed(ctx context.Context, documentId string, ownerId string) {
	err := s.documents.SaveState(ctx, docModel.DocumentState{
		DocumentId: documentId,
		OwnerId:    ownerId,
		Processed:  false,
		UpdatedAt:  time.Now(),
	})
	if err != nil {
		s.logger.Error("Failed to mark document unprocessed", "error", err)
	}
}

// executeCorpusEmbeddingStep embeds chunk texts in batches with bounded
// parallelism. Results land at their original offsets, so chunk writes keep
// sequence order no matter which call finishes first.
func (s *service) executeCorpusEmbeddingStep(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	vectors := make([][]float32, len(texts))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(config.EmbeddingMaxParallelism)

	for offset := 0; offset < len(texts); offset += config.EmbeddingBatchSize {
		end := offset + config.EmbeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		offset, batch := offset, texts[offset:end]

		group.Go(func() error {
			callCtx, cancel := context.WithTimeout(groupCtx, config.ExternalCallStepTimeout)
			defer cancel()

			batchVectors, err := s.embedder.EmbedBatch(callCtx, batch)
			if err != nil {
				return err
			}
			copy(vectors[offset:], batchVectors)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

func (s *service) executeQueryEmbeddingStep(ctx context.Context, question string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.Embed(ctx, question)
}

func (s *service) executeVectorSearchStep(ctx context.Context, ownerId string, documentId string, questionVector []float32) ([]docModel.ScoredChunk, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	return s.chunkStore.TopKBySimilarity(ctx, ownerId, documentId, questionVector, s.cfg.TopK)
}

// assemblePrompt builds the ordered prompt: one grounding instruction turn
// carrying the context block, the recent history oldest first, then the new
// question.
func (s *service) assemblePrompt(ctx context.Context, question string, conversationId string, matches []docModel.ScoredChunk) ([]docModel.Turn, error) {
	contextTexts := make([]string, len(matches))
	for i, m := range matches {
		contextTexts[i] = m.Text
	}
	contextBlock := strings.Join(contextTexts, config.ContextJoinSeparator)

	history, err := s.history.RecentTurns(ctx, conversationId, s.cfg.HistoryTurnLimit)
	if err != nil {
		return nil, err
	}

	turns := make([]docModel.Turn, 0, len(history)+2)
	turns = append(turns, docModel.Turn{
		Role:    docModel.RoleSystem,
		Content: config.GroundingPrompt + contextBlock,
	})
	turns = append(turns, history...)
	turns = append(turns, docModel.Turn{Role: docModel.RoleUser, Content: question})
	return turns, nil
}

func (s *service) executeLLMStep(ctx context.Context, turns []docModel.Turn, maxTokens int32, temperature float32) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.Generate(ctx, turns, maxTokens, temperature)
}

func truncate(content string, limit int) string {
	if len(content) <= limit {
		return content
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}
