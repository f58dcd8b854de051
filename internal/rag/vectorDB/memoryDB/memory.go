package memoryDB

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/docmind/docmind/internal/domain/docModel"
)

// Store is an exact linear-scan chunk store. Scope is a single document's
// chunk set, so brute force cosine over it is the reference design, not a
// shortcut. Replacement swaps the whole per-document slice under the lock,
// which is what makes the replace observably atomic.
type Store struct {
	mu        sync.RWMutex
	dimension int
	chunks    map[string][]docModel.Chunk //keyed by documentId
}

func NewStore(dimension int) *Store {
	return &Store{
		dimension: dimension,
		chunks:    make(map[string][]docModel.Chunk),
	}
}

func (s *Store) ReplaceChunks(ctx context.Context, documentId string, ownerId string, chunks []docModel.Chunk) error {
	for _, c := range chunks {
		if len(c.Vector) != s.dimension {
			return fmt.Errorf("%w: chunk %d has dimensionality %d, store expects %d",
				docModel.ErrInvalidInput, c.SequenceIndex, len(c.Vector), s.dimension)
		}
	}

	fresh := make([]docModel.Chunk, len(chunks))
	copy(fresh, chunks)

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(fresh) == 0 {
		delete(s.chunks, documentId)
		return nil
	}
	s.chunks[documentId] = fresh
	return nil
}

func (s *Store) DeleteChunks(ctx context.Context, documentId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chunks, documentId)
	return nil
}

func (s *Store) TopKBySimilarity(ctx context.Context, ownerId string, documentId string, queryVector []float32, k int) ([]docModel.ScoredChunk, error) {
	if len(queryVector) != s.dimension {
		return nil, fmt.Errorf("%w: query dimensionality %d, store expects %d",
			docModel.ErrInvalidInput, len(queryVector), s.dimension)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var scored []docModel.ScoredChunk
	for _, c := range s.chunks[documentId] {
		if c.OwnerId != ownerId {
			continue
		}
		scored = append(scored, docModel.ScoredChunk{
			Text:          c.Text,
			Distance:      cosineDistance(queryVector, c.Vector),
			SequenceIndex: c.SequenceIndex,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Distance != scored[j].Distance {
			return scored[i].Distance < scored[j].Distance
		}
		return scored[i].SequenceIndex < scored[j].SequenceIndex
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}

func (s *Store) ListChunks(ctx context.Context, ownerId string, documentId string) ([]docModel.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []docModel.Chunk
	for _, c := range s.chunks[documentId] {
		if c.OwnerId == ownerId {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SequenceIndex < out[j].SequenceIndex })
	return out, nil
}

// cosineDistance = 1 - cosine similarity, so lower means more similar.
func cosineDistance(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)))
}
