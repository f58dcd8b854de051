package openaiLLM

import (
	"context"
	"fmt"

	"github.com/docmind/docmind/internal/config"
	"github.com/docmind/docmind/internal/domain/docModel"
	"github.com/docmind/docmind/internal/rag/llm"
	"github.com/docmind/docmind/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	openai openai.Client
	model  string
	logger *logger_i.Logger
}

func NewClient(apikey string) llm.Provider {
	return &llmClient{
		openai: openai.NewClient(option.WithAPIKey(apikey)),
		model:  config.OpenAIChatModel,
		logger: logger_i.NewLogger("llm_openai"),
	}
}

func (c *llmClient) Generate(ctx context.Context, turns []docModel.Turn, maxTokens int32, temperature float32) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case docModel.RoleSystem:
			messages = append(messages, openai.SystemMessage(t.Content))
		case docModel.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(t.Content))
		default:
			messages = append(messages, openai.UserMessage(t.Content))
		}
	}

	result, err := c.openai.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(float64(temperature)),
	})
	if err != nil {
		c.logger.Error("Error generating completion from OpenAI", "error", err)
		return "", fmt.Errorf("%w: %v", docModel.ErrProviderUnavailable, err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: completion came back empty", docModel.ErrProviderUnavailable)
	}
	return result.Choices[0].Message.Content, nil
}
