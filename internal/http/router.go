package http

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"floorplan-ai/internal/handlers"
	"floorplan-ai/internal/hybrid"
	"floorplan-ai/internal/indexer"
	"floorplan-ai/internal/service"
)

// VectorStoreChecker is the slice of the vector store the HTTP layer needs.
type VectorStoreChecker interface {
	CollectionExists(ctx context.Context, collection string) (bool, error)
}

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine             hybrid.Engine
	Documents          service.DocumentService
	Pipeline           *indexer.Pipeline
	DB                 *sql.DB
	VectorStore        VectorStoreChecker
	CollectionName     string
	EmbeddingModelName string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.Engine, deps.Documents)
	documentsHandler := handlers.NewDocumentsHandler(deps.Documents)
	statsHandler := handlers.NewStatsHandler(deps.Pipeline, deps.EmbeddingModelName)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.VectorStore, deps.CollectionName)

	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodPost, "/ask", askHandler)
		r.Post("/documents", documentsHandler.Create)
		r.Get("/documents", documentsHandler.List)
		r.Get("/documents/{id}", documentsHandler.Get)
		r.Delete("/documents/{id}", documentsHandler.Delete)
		r.Method(http.MethodGet, "/index/stats", statsHandler)
	})

	r.Method(http.MethodGet, "/healthz", healthHandler)

	return r
}
