// @title           DocMind RAG API
// @version         1.0
// @description     Grounds conversational answers in a document via retrieval-augmented generation.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/docmind/docmind/internal/config"
	"github.com/docmind/docmind/internal/data/store"
	jobmodel "github.com/docmind/docmind/internal/domain/jobModel"
	"github.com/docmind/docmind/internal/handlers"
	"github.com/docmind/docmind/internal/job"
	"github.com/docmind/docmind/internal/rag"
	"github.com/docmind/docmind/internal/rag/embedding"
	"github.com/docmind/docmind/internal/rag/embedding/googleEmbedding"
	"github.com/docmind/docmind/internal/rag/embedding/openaiEmbedding"
	"github.com/docmind/docmind/internal/rag/llm"
	"github.com/docmind/docmind/internal/rag/llm/gemini"
	"github.com/docmind/docmind/internal/rag/llm/openaiLLM"
	"github.com/docmind/docmind/internal/rag/vectorDB"
	"github.com/docmind/docmind/internal/rag/vectorDB/memoryDB"
	"github.com/docmind/docmind/internal/rag/vectorDB/qdrantDB"
	"github.com/docmind/docmind/internal/server"
	"github.com/docmind/docmind/internal/worker"
	"github.com/docmind/docmind/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and the backing stores, falling back to in-memory
	//variants when redis is offline
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	jobStore := store.GetRedisJobStore(serviceContext)
	historyStore := store.GetRedisHistoryStore(serviceContext)
	documentStore := store.GetRedisDocumentStore(serviceContext)

	var generations vectorDB.GenerationTracker
	if jobStore == nil || historyStore == nil || documentStore == nil {
		logger.Error("Redis stores are offline, falling back to in-memory stores")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.HistoryStore = store.InitInMemoryHistoryStore()
		memoryDocuments := store.InitInMemoryDocumentStore()
		serviceConfig.DocumentStore = memoryDocuments
		generations = memoryDocuments
	} else {
		serviceConfig.JobStore = jobStore
		serviceConfig.HistoryStore = historyStore
		serviceConfig.DocumentStore = documentStore
		generations = documentStore
	}
	service := job.InitJobService(serviceConfig)

	chunkStore := buildChunkStore(serviceContext, generations, logger)
	embeddingService, llmProvider := buildModelProviders(serviceContext, logger)

	if chunkStore == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "ChunkStore", chunkStore != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	ragService := rag.NewService(chunkStore, llmProvider, embeddingService,
		serviceConfig.HistoryStore, serviceConfig.DocumentStore, rag.DefaultConfig())

	handlers.InitJobHandler(service, chunkStore)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

func buildChunkStore(ctx context.Context, generations vectorDB.GenerationTracker, logger *logger_i.Logger) vectorDB.ChunkStore {
	qdrantStore, err := qdrantDB.NewStore(ctx, generations)
	if err != nil {
		logger.Error("Qdrant is offline, falling back to the in-memory chunk store", "err", err)
		return memoryDB.NewStore(int(config.EmbeddingOutputDimensionality))
	}
	return qdrantStore
}

// buildModelProviders wires the embedding and generation clients for the
// configured vendor. Both clients come from the same vendor so the corpus and
// query vectors always share one embedding space.
func buildModelProviders(ctx context.Context, logger *logger_i.Logger) (embedding.Embedder, llm.Provider) {
	if config.ModelProvider == "gemini" {
		embedder, err := googleEmbedding.NewClient(ctx, config.GoogleEmbeddingModel, config.GoogleEmbeddingAPIKey)
		if err != nil {
			logger.Error("Failed to create the Google embedding client", "err", err)
			return nil, nil
		}
		provider, err := gemini.NewClient(ctx, config.GeminiModelName, config.GoogleEmbeddingAPIKey)
		if err != nil {
			logger.Error("Failed to create the Gemini client", "err", err)
			return nil, nil
		}
		return embedder, provider
	}

	if config.OpenAIAPIKey == "" {
		logger.Error("OPENAI_API_KEY is not set")
		return nil, nil
	}
	return openaiEmbedding.NewClient(config.OpenAIAPIKey), openaiLLM.NewClient(config.OpenAIAPIKey)
}
