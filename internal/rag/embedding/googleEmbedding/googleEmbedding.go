package googleEmbedding

import (
	"context"
	"fmt"

	"github.com/docmind/docmind/internal/config"
	"github.com/docmind/docmind/internal/domain/docModel"
	"github.com/docmind/docmind/internal/rag/embedding"
	"github.com/docmind/docmind/pkg/logger_i"
	"google.golang.org/genai"
)

var dimension int32 = config.EmbeddingOutputDimensionality

// Gemini embeddings are asymmetric: corpus text and search queries are
// embedded with different task types so they land in matching vector spaces.
const (
	corpusTaskType = "RETRIEVAL_DOCUMENT"
	queryTaskType  = "RETRIEVAL_QUERY"
)

type client struct {
	genAi  *genai.Client
	model  string
	logger *logger_i.Logger
}

// NewClient builds the gemini-embedding-001 embedder. The model's output is
// pinned to the corpus dimensionality so it stays interchangeable with the
// OpenAI embedder - mixing dimensionalities in one corpus is a contract
// violation the stores reject.
func NewClient(ctx context.Context, modelName string, apikey string) (embedding.Embedder, error) {
	logger := logger_i.NewLogger("google_embedding")

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Google Embedding client:", "error", err)
		return nil, err
	}

	logger.Info("Google Embedding client created", "model", modelName)
	return &client{genAi: c, model: modelName, logger: logger}, nil
}

func (c *client) Embed(ctx context.Context, query string) ([]float32, error) {
	result, err := c.doCall(ctx, genai.Text(query), queryTaskType)
	if err != nil {
		c.logger.Error("Error getting Embedding from Google", "error", err)
		return nil, fmt.Errorf("%w: %v", docModel.ErrProviderUnavailable, err)
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result, err := c.doCall(ctx, getContent(texts), corpusTaskType)
	if err != nil {
		c.logger.Error("Error getting Embeddings from Google", "error", err)
		return nil, fmt.Errorf("%w: %v", docModel.ErrProviderUnavailable, err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: asked for %d embeddings, got %d", docModel.ErrProviderUnavailable, len(texts), len(result.Embeddings))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, r := range result.Embeddings {
		vectors[i] = r.Values
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, taskType string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, embedConfig(taskType))
}

func embedConfig(taskType string) *genai.EmbedContentConfig {
	return &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
		TaskType:             taskType,
	}
}

func getContent(texts []string) []*genai.Content {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}
	return contents
}
