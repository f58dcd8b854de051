package gemini

import (
	"context"
	"fmt"

	"github.com/docmind/docmind/internal/domain/docModel"
	"github.com/docmind/docmind/internal/rag/llm"
	"github.com/docmind/docmind/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client *genai.Client
	model  string
	logger *logger_i.Logger
}

func NewClient(ctx context.Context, modelName string, apikey string) (llm.Provider, error) {
	logger := logger_i.NewLogger("llm_gemini")

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
		return nil, err
	}

	logger.Info("Gemini client created", "model", modelName)
	return &llmClient{client: c, model: modelName, logger: logger}, nil
}

func (c *llmClient) Generate(ctx context.Context, turns []docModel.Turn, maxTokens int32, temperature float32) (string, error) {
	//gemini takes the instruction out of band, the rest becomes alternating
	//user/model contents
	var systemInstruction *genai.Content
	var contents []*genai.Content

	for _, t := range turns {
		switch t.Role {
		case docModel.RoleSystem:
			systemInstruction = &genai.Content{Parts: []*genai.Part{{Text: t.Content}}}
		case docModel.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleUser))
		}
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
		Temperature:       genai.Ptr(temperature),
		MaxOutputTokens:   maxTokens,
	})
	if err != nil {
		c.logger.Error("Error generating content from Gemini", "error", err)
		return "", fmt.Errorf("%w: %v", docModel.ErrProviderUnavailable, err)
	}
	return result.Text(), nil
}
