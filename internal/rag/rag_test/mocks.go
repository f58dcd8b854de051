package rag_test

import (
	"context"

	"github.com/docmind/docmind/internal/domain/docModel"
)

// MockChunkStore implements vectorDB.ChunkStore
type MockChunkStore struct {
	// Control fields to simulate different behaviors
	OnReplaceChunks    func(ctx context.Context, documentId string, ownerId string, chunks []docModel.Chunk) error
	OnDeleteChunks     func(ctx context.Context, documentId string) error
	OnTopKBySimilarity func(ctx context.Context, ownerId string, documentId string, queryVector []float32, k int) ([]docModel.ScoredChunk, error)
	OnListChunks       func(ctx context.Context, ownerId string, documentId string) ([]docModel.Chunk, error)
}

func (m *MockChunkStore) ReplaceChunks(ctx context.Context, documentId string, ownerId string, chunks []docModel.Chunk) error {
	if m.OnReplaceChunks != nil {
		return m.OnReplaceChunks(ctx, documentId, ownerId, chunks)
	}
	return nil
}

func (m *MockChunkStore) DeleteChunks(ctx context.Context, documentId string) error {
	if m.OnDeleteChunks != nil {
		return m.OnDeleteChunks(ctx, documentId)
	}
	return nil
}

func (m *MockChunkStore) TopKBySimilarity(ctx context.Context, ownerId string, documentId string, queryVector []float32, k int) ([]docModel.ScoredChunk, error) {
	if m.OnTopKBySimilarity != nil {
		return m.OnTopKBySimilarity(ctx, ownerId, documentId, queryVector, k)
	}
	return []docModel.ScoredChunk{{Text: "default context", Distance: 0.1, SequenceIndex: 0}}, nil
}

func (m *MockChunkStore) ListChunks(ctx context.Context, ownerId string, documentId string) ([]docModel.Chunk, error) {
	if m.OnListChunks != nil {
		return m.OnListChunks(ctx, ownerId, documentId)
	}
	return nil, nil
}

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnEmbed      func(ctx context.Context, text string) ([]float32, error)
	OnEmbedBatch func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.OnEmbed != nil {
		return m.OnEmbed(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnEmbedBatch != nil {
		return m.OnEmbedBatch(ctx, texts)
	}
	// Return dummy vectors matching the batch size
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, turns []docModel.Turn, maxTokens int32, temperature float32) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, turns []docModel.Turn, maxTokens int32, temperature float32) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, turns, maxTokens, temperature)
	}
	return "mocked llm response", nil
}

// MockHistoryStore implements docModel.HistoryStore
type MockHistoryStore struct {
	OnRecentTurns func(ctx context.Context, conversationId string, limit int) ([]docModel.Turn, error)
	OnAppendTurns func(ctx context.Context, conversationId string, turns ...docModel.Turn) error
}

func (m *MockHistoryStore) ValidateConversationId(ctx context.Context, conversationId string) bool {
	return true
}

func (m *MockHistoryStore) InitNewConversation(ctx context.Context, conversationId string) error {
	return nil
}

func (m *MockHistoryStore) AppendTurns(ctx context.Context, conversationId string, turns ...docModel.Turn) error {
	if m.OnAppendTurns != nil {
		return m.OnAppendTurns(ctx, conversationId, turns...)
	}
	return nil
}

func (m *MockHistoryStore) RecentTurns(ctx context.Context, conversationId string, limit int) ([]docModel.Turn, error) {
	if m.OnRecentTurns != nil {
		return m.OnRecentTurns(ctx, conversationId, limit)
	}
	return nil, nil
}

// MockDocumentStore implements docModel.DocumentStore, keeping the last
// saved state so tests can assert on it
type MockDocumentStore struct {
	Saved       []docModel.DocumentState
	OnSaveState func(ctx context.Context, state docModel.DocumentState) error
}

func (m *MockDocumentStore) GetState(ctx context.Context, documentId string) (docModel.DocumentState, bool) {
	for i := len(m.Saved) - 1; i >= 0; i-- {
		if m.Saved[i].DocumentId == documentId {
			return m.Saved[i], true
		}
	}
	return docModel.DocumentState{}, false
}

func (m *MockDocumentStore) SaveState(ctx context.Context, state docModel.DocumentState) error {
	if m.OnSaveState != nil {
		return m.OnSaveState(ctx, state)
	}
	m.Saved = append(m.Saved, state)
	return nil
}

func (m *MockDocumentStore) DeleteState(ctx context.Context, documentId string) {}
