package embedding

import "context"

// Embedder maps text to fixed-dimensionality vectors. The same implementation
// must embed both the corpus and the queries against it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
