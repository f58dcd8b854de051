package llm

import (
	"context"

	"github.com/docmind/docmind/internal/domain/docModel"
)

type Provider interface {
	Generate(ctx context.Context, turns []docModel.Turn, maxTokens int32, temperature float32) (string, error)
}
