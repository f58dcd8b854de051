package vectorDB

import (
	"context"

	"github.com/docmind/docmind/internal/domain/docModel"
)

// ChunkStore persists embedded chunks scoped by (owner, document).
//
// ReplaceChunks must be observed as atomic for a document: concurrent readers
// see either the previous complete set or the new complete set, never a
// partial or mixed one.
type ChunkStore interface {
	ReplaceChunks(ctx context.Context, documentId string, ownerId string, chunks []docModel.Chunk) error
	DeleteChunks(ctx context.Context, documentId string) error

	// TopKBySimilarity ranks the scoped chunk set by cosine distance to the
	// query vector, ascending, ties broken by sequence index.
	TopKBySimilarity(ctx context.Context, ownerId string, documentId string, queryVector []float32, k int) ([]docModel.ScoredChunk, error)

	// ListChunks returns the scoped set in sequence order, for diagnostics.
	ListChunks(ctx context.Context, ownerId string, documentId string) ([]docModel.Chunk, error)
}

// GenerationTracker records which write generation of a document's chunks is
// the live one. Backends without transactions use it for shadow-write-then-
// swap: write the new generation, flip the pointer, then drop the old points.
// Readers filter on the active generation and never see a mixed set.
type GenerationTracker interface {
	ActiveGeneration(ctx context.Context, documentId string) (string, bool)
	SetActiveGeneration(ctx context.Context, documentId string, generation string) error
}
