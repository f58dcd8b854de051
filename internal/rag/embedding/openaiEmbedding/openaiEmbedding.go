package openaiEmbedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/docmind/docmind/internal/config"
	"github.com/docmind/docmind/internal/domain/docModel"
	"github.com/docmind/docmind/internal/rag/embedding"
	"github.com/docmind/docmind/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type client struct {
	openai openai.Client
	model  string
	logger *logger_i.Logger
}

// NewClient builds the text-embedding-3-small embedder. Its native output is
// 1536 values, which is the corpus dimensionality, so no truncation is asked
// for.
func NewClient(apikey string) embedding.Embedder {
	return &client{
		openai: openai.NewClient(option.WithAPIKey(apikey)),
		model:  config.OpenAIEmbeddingModel,
		logger: logger_i.NewLogger("openai_embedding"),
	}
}

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := c.openai.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: c.model,
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(flatten(text)),
		},
	})
	if err != nil {
		c.logger.Error("Error getting embedding from OpenAI", "error", err)
		return nil, fmt.Errorf("%w: %v", docModel.ErrProviderUnavailable, err)
	}
	return toFloat32(res.Data[0].Embedding), nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = flatten(t)
	}

	res, err := c.openai.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: c.model,
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: inputs,
		},
	})
	if err != nil {
		c.logger.Error("Error getting batch embeddings from OpenAI", "error", err)
		return nil, fmt.Errorf("%w: %v", docModel.ErrProviderUnavailable, err)
	}
	if len(res.Data) != len(texts) {
		return nil, fmt.Errorf("%w: asked for %d embeddings, got %d", docModel.ErrProviderUnavailable, len(texts), len(res.Data))
	}

	//the API tags each embedding with its input index, keep that ordering
	vectors := make([][]float32, len(texts))
	for _, d := range res.Data {
		vectors[d.Index] = toFloat32(d.Embedding)
	}
	return vectors, nil
}

// flatten strips newlines, they degrade embedding quality for this model.
func flatten(text string) string {
	return strings.ReplaceAll(text, "\n", " ")
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
