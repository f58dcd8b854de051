package docModel

import (
	"context"
	"time"
)

type TurnRole string

const (
	RoleSystem    TurnRole = "system"
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// Chunk is an immutable unit of retrievable content. The full chunk set of a
// document is only ever replaced wholesale, never patched.
type Chunk struct {
	Id            string    `json:"id"`
	DocumentId    string    `json:"document_id"`
	OwnerId       string    `json:"owner_id"`
	SequenceIndex int       `json:"sequence_index"`
	Text          string    `json:"text"`
	Vector        []float32 `json:"vector"`
	CreatedAt     time.Time `json:"created_at"`
}

// ScoredChunk is an ephemeral retrieval result, lower distance = more similar.
type ScoredChunk struct {
	Text          string
	Distance      float32
	SequenceIndex int
}

// Turn is one conversation message. The core only reads a bounded recent
// window and appends the pair produced by a successful exchange.
type Turn struct {
	Role      TurnRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentState is what the service tracks per document aside from the
// chunks themselves.
type DocumentState struct {
	DocumentId string    `json:"document_id"`
	OwnerId    string    `json:"owner_id"`
	Processed  bool      `json:"processed"`
	ChunkCount int       `json:"chunk_count"`
	Summary    string    `json:"summary,omitempty"`
	Generation string    `json:"generation,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type HistoryStore interface {
	ValidateConversationId(ctx context.Context, conversationId string) bool
	InitNewConversation(ctx context.Context, conversationId string) error
	AppendTurns(ctx context.Context, conversationId string, turns ...Turn) error
	RecentTurns(ctx context.Context, conversationId string, limit int) ([]Turn, error)
}

type DocumentStore interface {
	GetState(ctx context.Context, documentId string) (DocumentState, bool)
	SaveState(ctx context.Context, state DocumentState) error
	DeleteState(ctx context.Context, documentId string)
}
