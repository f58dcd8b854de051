package qdrantDB

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/docmind/docmind/internal/config"
	"github.com/docmind/docmind/internal/domain/docModel"
	"github.com/docmind/docmind/internal/rag/vectorDB"
	"github.com/docmind/docmind/pkg/logger_i"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

var dimension = uint64(config.EmbeddingOutputDimensionality)

// Store keeps every document's chunks in one collection, partitioned by
// (owner_id, document_id) payload filters. Qdrant has no transactions, so the
// replace protocol is shadow-write-then-swap: upsert the new chunk set under a
// fresh generation id, flip the active-generation pointer, then drop stale
// points. Readers always filter on the active generation.
type Store struct {
	client      *qdrant.Client
	collection  string
	generations vectorDB.GenerationTracker
	logger      *logger_i.Logger
}

func NewStore(ctx context.Context, generations vectorDB.GenerationTracker) (*Store, error) {
	logger := logger_i.NewLogger("Qdrant")

	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))
	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil, err
	}

	s := &Store{
		client:      client,
		collection:  config.ChunkCollectionName,
		generations: generations,
		logger:      logger,
	}

	if err := s.ensureCollection(ctx); err != nil {
		logger.Error("could not create collection: ", "collectionName", s.collection, "error:", err)
		return nil, err
	}

	go s.closeOnDone(ctx)
	return s, nil
}

func (s *Store) closeOnDone(ctx context.Context) {
	<-ctx.Done()
	s.logger.Info("Shutting down Qdrant")
	if err := s.client.Close(); err != nil {
		s.logger.Error("could not close Qdrant: ", "error:", err)
	}
}

func (s *Store) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func (s *Store) ReplaceChunks(ctx context.Context, documentId string, ownerId string, chunks []docModel.Chunk) error {
	loggr := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", documentId)

	if len(chunks) == 0 {
		return s.DeleteChunks(ctx, documentId)
	}

	generation := uuid.New().String()
	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		if len(chunk.Vector) != int(dimension) {
			return fmt.Errorf("%w: chunk %d has dimensionality %d, collection expects %d",
				docModel.ErrInvalidInput, chunk.SequenceIndex, len(chunk.Vector), dimension)
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.Id),
			Vectors: qdrant.NewVectors(chunk.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":        chunk.Text,
				"document_id":    chunk.DocumentId,
				"owner_id":       chunk.OwnerId,
				"sequence_index": chunk.SequenceIndex,
				"generation":     generation,
				"created_at":     chunk.CreatedAt.Unix(),
			}),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		//nothing flipped yet, readers still see the previous generation
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}

	if err := s.generations.SetActiveGeneration(ctx, documentId, generation); err != nil {
		return fmt.Errorf("%w: could not activate chunk generation: %v", docModel.ErrPartialWriteRisk, err)
	}

	//stale generations are invisible already, failing to prune is not fatal
	if err := s.deleteWhere(ctx, documentId, generation); err != nil {
		loggr.Warn("could not prune superseded chunk generation", "error", err)
	}
	return nil
}

func (s *Store) DeleteChunks(ctx context.Context, documentId string) error {
	if err := s.generations.SetActiveGeneration(ctx, documentId, ""); err != nil {
		return fmt.Errorf("%w: could not clear chunk generation: %v", docModel.ErrPartialWriteRisk, err)
	}
	return s.deleteWhere(ctx, documentId, "")
}

// deleteWhere removes the document's points, sparing keepGeneration when set.
func (s *Store) deleteWhere(ctx context.Context, documentId string, keepGeneration string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch("document_id", documentId)},
	}
	if keepGeneration != "" {
		filter.MustNot = []*qdrant.Condition{qdrant.NewMatch("generation", keepGeneration)}
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelectorFilter(filter),
		Wait:           qdrant.PtrOf(true),
	})
	return err
}

func (s *Store) TopKBySimilarity(ctx context.Context, ownerId string, documentId string, queryVector []float32, k int) ([]docModel.ScoredChunk, error) {
	loggr := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if len(queryVector) != int(dimension) {
		return nil, fmt.Errorf("%w: query dimensionality %d, collection expects %d",
			docModel.ErrInvalidInput, len(queryVector), dimension)
	}

	generation, ok := s.generations.ActiveGeneration(ctx, documentId)
	if !ok {
		//not processed yet - an empty result, not an error
		return nil, nil
	}

	result, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(queryVector...),
		Filter:         s.scopeFilter(ownerId, documentId, generation),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	matches := make([]docModel.ScoredChunk, 0, len(result))
	for _, hit := range result {
		matches = append(matches, docModel.ScoredChunk{
			Text: hit.Payload["content"].GetStringValue(),
			//qdrant cosine scores are similarities, higher = closer
			Distance:      1 - hit.Score,
			SequenceIndex: int(hit.Payload["sequence_index"].GetIntegerValue()),
		})
	}
	//qdrant already ranks by score, this only settles exact-tie order
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].SequenceIndex < matches[j].SequenceIndex
	})
	return matches, nil
}

func (s *Store) ListChunks(ctx context.Context, ownerId string, documentId string) ([]docModel.Chunk, error) {
	generation, ok := s.generations.ActiveGeneration(ctx, documentId)
	if !ok {
		return nil, nil
	}

	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Filter:         s.scopeFilter(ownerId, documentId, generation),
		Limit:          qdrant.PtrOf(uint32(10000)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	chunks := make([]docModel.Chunk, 0, len(points))
	for _, p := range points {
		chunks = append(chunks, docModel.Chunk{
			Id:            p.Id.GetUuid(),
			DocumentId:    documentId,
			OwnerId:       ownerId,
			SequenceIndex: int(p.Payload["sequence_index"].GetIntegerValue()),
			Text:          p.Payload["content"].GetStringValue(),
			CreatedAt:     time.Unix(p.Payload["created_at"].GetIntegerValue(), 0),
		})
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].SequenceIndex < chunks[j].SequenceIndex })
	return chunks, nil
}

func (s *Store) scopeFilter(ownerId string, documentId string, generation string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("owner_id", ownerId),
			qdrant.NewMatch("document_id", documentId),
			qdrant.NewMatch("generation", generation),
		},
	}
}
