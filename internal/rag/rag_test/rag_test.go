package rag_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/docmind/docmind/internal/config"
	"github.com/docmind/docmind/internal/domain/docModel"
	"github.com/docmind/docmind/internal/rag"
)

// small windows so a short test document produces several chunks
func testConfig() rag.Config {
	return rag.Config{
		ChunkSizeWords:    4,
		ChunkOverlapWords: 1,
		TopK:              5,
		HistoryTurnLimit:  10,
		Dimensionality:    3,
	}
}

func newTestService(chunks *MockChunkStore, llm *MockLLM, embedder *MockEmbedder, history *MockHistoryStore, documents *MockDocumentStore) rag.Service {
	return rag.NewService(chunks, llm, embedder, history, documents, testConfig())
}

func TestAnswer_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(e *MockEmbedder, c *MockChunkStore, l *MockLLM, h *MockHistoryStore)
		expectedAnswer string
		wantErr        bool
	}{
		{
			name:           "Success_Full_Flow",
			setupMocks:     func(e *MockEmbedder, c *MockChunkStore, l *MockLLM, h *MockHistoryStore) {},
			expectedAnswer: "mocked llm response",
		},
		{
			name: "Empty_Retrieval_Short_Circuit",
			setupMocks: func(e *MockEmbedder, c *MockChunkStore, l *MockLLM, h *MockHistoryStore) {
				c.OnTopKBySimilarity = func(ctx context.Context, ownerId string, documentId string, v []float32, k int) ([]docModel.ScoredChunk, error) {
					return nil, nil
				}
				l.OnGenerate = func(ctx context.Context, turns []docModel.Turn, maxTokens int32, temperature float32) (string, error) {
					t.Error("Generate must not be called when retrieval finds nothing")
					return "", nil
				}
			},
			expectedAnswer: config.InsufficientContextAnswer,
		},
		{
			name: "Failure_Embedding",
			setupMocks: func(e *MockEmbedder, c *MockChunkStore, l *MockLLM, h *MockHistoryStore) {
				e.OnEmbed = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			wantErr: true,
		},
		{
			name: "Failure_Vector_Search",
			setupMocks: func(e *MockEmbedder, c *MockChunkStore, l *MockLLM, h *MockHistoryStore) {
				c.OnTopKBySimilarity = func(ctx context.Context, ownerId string, documentId string, v []float32, k int) ([]docModel.ScoredChunk, error) {
					return nil, errors.New("db timeout")
				}
			},
			wantErr: true,
		},
		{
			name: "Failure_History_Read",
			setupMocks: func(e *MockEmbedder, c *MockChunkStore, l *MockLLM, h *MockHistoryStore) {
				h.OnRecentTurns = func(ctx context.Context, conversationId string, limit int) ([]docModel.Turn, error) {
					return nil, errors.New("redis down")
				}
			},
			wantErr: true,
		},
		{
			name: "Failure_LLM_Generation",
			setupMocks: func(e *MockEmbedder, c *MockChunkStore, l *MockLLM, h *MockHistoryStore) {
				l.OnGenerate = func(ctx context.Context, turns []docModel.Turn, maxTokens int32, temperature float32) (string, error) {
					return "", errors.New("provider down")
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mChunks := &MockChunkStore{}
			mLLM := &MockLLM{}
			mHistory := &MockHistoryStore{}

			tt.setupMocks(mEmbed, mChunks, mLLM, mHistory)

			s := newTestService(mChunks, mLLM, mEmbed, mHistory, &MockDocumentStore{})

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
			answer, err := s.Answer(ctx, "test question", "doc-1", "owner-1", "conv-1")

			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected an error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Answer failed: %v", err)
			}
			if answer != tt.expectedAnswer {
				t.Errorf("Answer got %q, want %q", answer, tt.expectedAnswer)
			}
		})
	}
}

func TestAnswer_PromptAssembly(t *testing.T) {
	mEmbed := &MockEmbedder{}
	mChunks := &MockChunkStore{
		OnTopKBySimilarity: func(ctx context.Context, ownerId string, documentId string, v []float32, k int) ([]docModel.ScoredChunk, error) {
			return []docModel.ScoredChunk{
				{Text: "chunk one", Distance: 0.1, SequenceIndex: 3},
				{Text: "chunk two", Distance: 0.2, SequenceIndex: 0},
			}, nil
		},
	}
	mHistory := &MockHistoryStore{
		OnRecentTurns: func(ctx context.Context, conversationId string, limit int) ([]docModel.Turn, error) {
			if limit != 10 {
				t.Errorf("History limit got %d, want 10", limit)
			}
			return []docModel.Turn{
				{Role: docModel.RoleUser, Content: "earlier question"},
				{Role: docModel.RoleAssistant, Content: "earlier answer"},
			}, nil
		},
	}

	var gotTurns []docModel.Turn
	var gotMaxTokens int32
	var gotTemperature float32
	mLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, turns []docModel.Turn, maxTokens int32, temperature float32) (string, error) {
			gotTurns = turns
			gotMaxTokens = maxTokens
			gotTemperature = temperature
			return "final answer", nil
		},
	}

	s := newTestService(mChunks, mLLM, mEmbed, mHistory, &MockDocumentStore{})

	answer, err := s.Answer(context.Background(), "new question", "doc-1", "owner-1", "conv-1")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if answer != "final answer" {
		t.Errorf("Answer got %q, want %q", answer, "final answer")
	}

	if len(gotTurns) != 4 {
		t.Fatalf("Turn count got %d, want 4", len(gotTurns))
	}

	system := gotTurns[0]
	if system.Role != docModel.RoleSystem {
		t.Errorf("First turn role got %s, want system", system.Role)
	}
	wantContext := "chunk one" + config.ContextJoinSeparator + "chunk two"
	if system.Content != config.GroundingPrompt+wantContext {
		t.Errorf("System turn does not carry the grounding prompt plus the joined context block")
	}

	if gotTurns[1].Content != "earlier question" || gotTurns[2].Content != "earlier answer" {
		t.Error("History turns are not in oldest-first order between the system turn and the question")
	}

	last := gotTurns[len(gotTurns)-1]
	if last.Role != docModel.RoleUser || last.Content != "new question" {
		t.Errorf("Last turn got %s %q, want the new user question", last.Role, last.Content)
	}

	if gotMaxTokens != config.AnswerMaxTokens {
		t.Errorf("Max tokens got %d, want %d", gotMaxTokens, config.AnswerMaxTokens)
	}
	if gotTemperature != config.AnswerTemperature {
		t.Errorf("Temperature got %v, want %v", gotTemperature, config.AnswerTemperature)
	}
}

func TestProcessDocument_Scenarios(t *testing.T) {
	// 10 words with window 4 and overlap 1 means four chunks, the last one
	// a single-word remainder starting at index 9
	content := "w0 w1 w2 w3 w4 w5 w6 w7 w8 w9"

	tests := []struct {
		name          string
		content       string
		setupMocks    func(e *MockEmbedder, c *MockChunkStore, l *MockLLM)
		expectedCount int
		wantErr       error
		wantAnyErr    bool
	}{
		{
			name:          "Success_Full_Flow",
			content:       content,
			setupMocks:    func(e *MockEmbedder, c *MockChunkStore, l *MockLLM) {},
			expectedCount: 4,
		},
		{
			name:       "Empty_Content",
			content:    "   \n ",
			setupMocks: func(e *MockEmbedder, c *MockChunkStore, l *MockLLM) {},
			wantErr:    docModel.ErrInvalidInput,
		},
		{
			name:    "Failure_Embedding",
			content: content,
			setupMocks: func(e *MockEmbedder, c *MockChunkStore, l *MockLLM) {
				e.OnEmbedBatch = func(ctx context.Context, texts []string) ([][]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			wantAnyErr: true,
		},
		{
			name:    "Dimension_Mismatch",
			content: content,
			setupMocks: func(e *MockEmbedder, c *MockChunkStore, l *MockLLM) {
				e.OnEmbedBatch = func(ctx context.Context, texts []string) ([][]float32, error) {
					vectors := make([][]float32, len(texts))
					for i := range vectors {
						vectors[i] = []float32{0.1, 0.2} //wrong width
					}
					return vectors, nil
				}
			},
			wantErr: docModel.ErrInvalidInput,
		},
		{
			name:    "Failure_Chunk_Replace",
			content: content,
			setupMocks: func(e *MockEmbedder, c *MockChunkStore, l *MockLLM) {
				c.OnReplaceChunks = func(ctx context.Context, documentId string, ownerId string, chunks []docModel.Chunk) error {
					return errors.New("qdrant unavailable")
				}
			},
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mChunks := &MockChunkStore{}
			mLLM := &MockLLM{}
			mDocs := &MockDocumentStore{}

			var replaced []docModel.Chunk
			mChunks.OnReplaceChunks = func(ctx context.Context, documentId string, ownerId string, chunks []docModel.Chunk) error {
				replaced = chunks
				return nil
			}
			tt.setupMocks(mEmbed, mChunks, mLLM)

			s := newTestService(mChunks, mLLM, mEmbed, &MockHistoryStore{}, mDocs)

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
			count, err := s.ProcessDocument(ctx, "doc-1", "owner-1", tt.content)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Error got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if tt.wantAnyErr {
				if err == nil {
					t.Fatal("Expected an error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("ProcessDocument failed: %v", err)
			}

			if count != tt.expectedCount {
				t.Errorf("Chunk count got %d, want %d", count, tt.expectedCount)
			}
			if len(replaced) != tt.expectedCount {
				t.Fatalf("Stored chunk count got %d, want %d", len(replaced), tt.expectedCount)
			}
			for i, c := range replaced {
				if c.SequenceIndex != i {
					t.Errorf("Chunk %d stored with sequence index %d", i, c.SequenceIndex)
				}
				if c.DocumentId != "doc-1" || c.OwnerId != "owner-1" {
					t.Errorf("Chunk %d stored with wrong scope keys", i)
				}
			}

			state, found := mDocs.GetState(ctx, "doc-1")
			if !found || !state.Processed {
				t.Error("Document state was not marked processed after a successful run")
			}
			if state.ChunkCount != tt.expectedCount {
				t.Errorf("State chunk count got %d, want %d", state.ChunkCount, tt.expectedCount)
			}
			if state.Summary != "mocked llm response" {
				t.Errorf("State summary got %q", state.Summary)
			}
		})
	}
}

func TestProcessDocument_DeletesBeforeWriting(t *testing.T) {
	var calls []string
	mChunks := &MockChunkStore{
		OnDeleteChunks: func(ctx context.Context, documentId string) error {
			calls = append(calls, "delete")
			return nil
		},
		OnReplaceChunks: func(ctx context.Context, documentId string, ownerId string, chunks []docModel.Chunk) error {
			calls = append(calls, "replace")
			return nil
		},
	}

	s := newTestService(mChunks, &MockLLM{}, &MockEmbedder{}, &MockHistoryStore{}, &MockDocumentStore{})

	if _, err := s.ProcessDocument(context.Background(), "doc-1", "owner-1", "some document words"); err != nil {
		t.Fatalf("ProcessDocument failed: %v", err)
	}

	if len(calls) != 2 || calls[0] != "delete" || calls[1] != "replace" {
		t.Errorf("Call order got %v, want delete before replace", calls)
	}
}

func TestProcessDocument_SummaryFailureStillSucceeds(t *testing.T) {
	summaryCalls := 0
	mLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, turns []docModel.Turn, maxTokens int32, temperature float32) (string, error) {
			summaryCalls++
			return "", errors.New("provider down")
		},
	}
	mDocs := &MockDocumentStore{}

	s := newTestService(&MockChunkStore{}, mLLM, &MockEmbedder{}, &MockHistoryStore{}, mDocs)

	count, err := s.ProcessDocument(context.Background(), "doc-1", "owner-1", "some document words")
	if err != nil {
		t.Fatalf("A failed summary must not fail the processing run: %v", err)
	}
	if count != 1 {
		t.Errorf("Chunk count got %d, want 1", count)
	}
	if summaryCalls == 0 {
		t.Error("Summary generation was never attempted")
	}

	state, found := mDocs.GetState(context.Background(), "doc-1")
	if !found || !state.Processed {
		t.Fatal("Document state was not marked processed")
	}
	if state.Summary != "" {
		t.Errorf("Summary got %q, want empty after a failed generation", state.Summary)
	}
}

func TestSummarize_TruncatesInput(t *testing.T) {
	var gotPrompt string
	var gotMaxTokens int32
	mLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, turns []docModel.Turn, maxTokens int32, temperature float32) (string, error) {
			if len(turns) != 1 || turns[0].Role != docModel.RoleUser {
				t.Fatalf("Summary prompt should be a single user turn, got %d turns", len(turns))
			}
			gotPrompt = turns[0].Content
			gotMaxTokens = maxTokens
			return "  a short summary  ", nil
		},
	}

	s := newTestService(&MockChunkStore{}, mLLM, &MockEmbedder{}, &MockHistoryStore{}, &MockDocumentStore{})

	content := strings.Repeat("x", 5000)
	summary, err := s.Summarize(context.Background(), content)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if summary != "a short summary" {
		t.Errorf("Summary got %q, want the trimmed generation output", summary)
	}
	if gotMaxTokens != config.SummaryMaxTokens {
		t.Errorf("Max tokens got %d, want %d", gotMaxTokens, config.SummaryMaxTokens)
	}
	//the instruction text has its own letters, so check the substituted
	//content run rather than counting characters across the whole prompt
	if !strings.Contains(gotPrompt, strings.Repeat("x", config.SummaryInputCharLimit)) {
		t.Errorf("Prompt is missing the %d char content run", config.SummaryInputCharLimit)
	}
	if strings.Contains(gotPrompt, strings.Repeat("x", config.SummaryInputCharLimit+1)) {
		t.Errorf("Prompt content run exceeds the %d char limit", config.SummaryInputCharLimit)
	}
}
