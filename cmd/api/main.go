package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"floorplan-ai/internal/config"
	"floorplan-ai/internal/http"
	"floorplan-ai/internal/hybrid"
	"floorplan-ai/internal/indexer"
	"floorplan-ai/internal/llm"
	"floorplan-ai/internal/retrieval"
	"floorplan-ai/internal/service"
	"floorplan-ai/internal/storage"
	"floorplan-ai/internal/vectorstore"
	"floorplan-ai/internal/vision"
	"floorplan-ai/internal/websearch"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	docRepo := storage.NewDocumentRepo(db)
	pageRepo := storage.NewPageRepo(db)
	passageRepo := storage.NewPassageRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Ensure collection exists with correct vector size
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.QdrantVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.QdrantVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)

	// Create ingestion pipeline
	pipeline := indexer.NewPipeline(
		docRepo,
		pageRepo,
		passageRepo,
		embedder,
		vectorStore,
		cfg.QdrantCollection,
	)

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	// Web search is optional: without a provider key every answer comes
	// from the document alone.
	var searcher websearch.Searcher = websearch.Disabled{}
	if cfg.WebSearchEnabled {
		searcher, err = websearch.NewSearcher(websearch.TavilyProvider, cfg.TavilyAPIKey)
		if err != nil {
			log.Fatalf("Failed to create web searcher: %v", err)
		}
		slog.Info("Web search enabled", "provider", string(websearch.TavilyProvider))
	} else {
		slog.Info("Web search disabled, no provider key configured")
	}

	retriever := retrieval.NewQdrantRetriever(embedder, vectorStore, cfg.QdrantCollection, passageRepo)
	analyzer := vision.NewLLMAnalyzer(pageRepo, llmClient)

	engine := hybrid.NewEngine(retriever, analyzer, searcher, llmClient,
		hybrid.WithFetchTimeout(cfg.FetchTimeout))
	slog.Info("Hybrid answer engine initialized")

	documents := service.NewDocumentService(docRepo, pipeline)

	// Create router with dependencies
	deps := &http.Deps{
		Engine:             engine,
		Documents:          documents,
		Pipeline:           pipeline,
		DB:                 db,
		VectorStore:        vectorStore,
		CollectionName:     cfg.QdrantCollection,
		EmbeddingModelName: cfg.EmbeddingModelName,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
