package handlers

import (
	"encoding/json"
	"net/http"

	"floorplan-ai/internal/contextutil"
	"floorplan-ai/internal/indexer"
)

// StatsHandler reports indexing coverage statistics.
type StatsHandler struct {
	pipeline           *indexer.Pipeline
	embeddingModelName string
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(pipeline *indexer.Pipeline, embeddingModelName string) *StatsHandler {
	return &StatsHandler{
		pipeline:           pipeline,
		embeddingModelName: embeddingModelName,
	}
}

// ServeHTTP handles GET /api/v1/index/stats.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	stats, err := h.pipeline.GetIndexingCoverageStats(ctx, h.embeddingModelName)
	if err != nil {
		logger.ErrorContext(ctx, "failed to compute index stats", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to compute index stats")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
