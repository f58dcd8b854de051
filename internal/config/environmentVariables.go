package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	IS_PROD                     = false
	LOG_LEVEL_PROD              = slog.LevelInfo
	TRACE_ID_KEY                = "traceId"
	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//chunking - word windows, whitespace bounded
	ChunkSizeWords    = 400
	ChunkOverlapWords = 50

	//retrieval
	TopKChunks = 5

	//a single dimensionality is enforced across corpus and queries
	//text-embedding-3-small is 1536 natively, gemini-embedding-001 is pinned to it
	EmbeddingOutputDimensionality int32 = 1536
	ChunkCollectionName                 = "document-chunks"

	//grounded answering
	HistoryTurnLimit                = 10
	AnswerMaxTokens           int32 = 1000
	AnswerTemperature               = float32(0.3)
	ContextJoinSeparator            = "\n\n---\n\n"
	InsufficientContextAnswer       = "I couldn't find relevant information in this document to answer your question."

	GroundingPrompt = `You are a helpful document assistant for DocMind.
Answer questions about the document provided.

RULES:
- Answer ONLY based on the context below
- If the answer is not in the context, say:
  "I don't have enough information in this document to answer that"
- Be concise and clear
- Quote relevant parts when helpful

DOCUMENT CONTEXT:
`

	//summaries
	SummaryMaxTokens      int32 = 200
	SummaryTemperature          = float32(0.3)
	SummaryInputCharLimit       = 3000
	SummaryPrompt               = `Summarize the following document in exactly 3 sentences.
Be specific about the main topics covered. Be concise.

Document:
%s

Summary:`

	//embedding fan-out during document processing
	EmbeddingBatchSize      = 100
	EmbeddingMaxParallelism = 4
	ExternalCallStepTimeout = 30 * time.Second
	JobExecutionTimeout     = 60 * time.Second

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//vectorDB
	QdrantHost     = ""
	QdrantGrpcPort = 6334
	QdrantUseTLS   = false
	QdrantPoolSize = 1

	//llm + embedding models
	OpenAIEmbeddingModel = "text-embedding-3-small"
	OpenAIChatModel      = "gpt-4o-mini"
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DBs we can use
	RedisJobStore      = 0
	RedisHistoryStore  = 1
	RedisDocumentStore = 2

	//redis timeouts
	RedisJobStoreTTL     = 24 * time.Hour
	RedisHistoryStoreTTL = 24 * time.Hour
)

// env backed settings - the CRUD layer owns real secret management,
// we only read what the process is handed
var (
	OpenAIAPIKey          = os.Getenv("OPENAI_API_KEY")
	GoogleEmbeddingAPIKey = os.Getenv("GEMINI_API_KEY")
	RedisPassword         = os.Getenv("REDIS_PASSWORD")
	AuthToken             = os.Getenv("API_AUTH_TOKEN")
	NoAuthBypass          = os.Getenv("NO_AUTH_BYPASS") == "true"

	//"openai" (default, matches the corpus dimensionality natively) or "gemini"
	ModelProvider = os.Getenv("MODEL_PROVIDER")
)
