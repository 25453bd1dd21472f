package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"floorplan-ai/internal/contextutil"
	"floorplan-ai/internal/storage"
	"floorplan-ai/internal/vectorstore"
)

// Embedder turns texts into embedding vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// QdrantRetriever implements Retriever on top of a vector store for
// similarity search and the passage repository for passage text.
type QdrantRetriever struct {
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	passageRepo storage.PassageStore
	logger      *slog.Logger
}

// NewQdrantRetriever creates a new QdrantRetriever.
func NewQdrantRetriever(
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	passageRepo storage.PassageStore,
) *QdrantRetriever {
	return &QdrantRetriever{
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		passageRepo: passageRepo,
		logger:      slog.Default(),
	}
}

// Retrieve embeds the question, searches the document's points in the vector
// store, and hydrates each hit with its passage text from the database.
// Results come back in descending score order.
func (r *QdrantRetriever) Retrieve(ctx context.Context, docID, question string, k int) ([]Passage, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	embeddings, err := r.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed question", "error", err)
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for question")
	}
	queryVector := embeddings[0]

	filters := map[string]any{"doc_id": docID}
	results, err := r.vectorStore.Search(ctx, r.collection, queryVector, k, filters)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search vector store", "doc_id", docID, "error", err)
		return nil, fmt.Errorf("failed to search vector store: %w", err)
	}

	// Deduplicate by point ID and sort by score, highest first.
	seen := make(map[string]bool, len(results))
	deduplicated := make([]vectorstore.SearchResult, 0, len(results))
	for _, result := range results {
		if !seen[result.PointID] {
			seen[result.PointID] = true
			deduplicated = append(deduplicated, result)
		}
	}
	sort.SliceStable(deduplicated, func(i, j int) bool {
		return deduplicated[i].Score > deduplicated[j].Score
	})
	if len(deduplicated) > k {
		deduplicated = deduplicated[:k]
	}

	passages := make([]Passage, 0, len(deduplicated))
	for _, result := range deduplicated {
		record, err := r.passageRepo.GetByID(ctx, result.PointID)
		if err != nil {
			logger.WarnContext(ctx, "failed to fetch passage text", "passage_id", result.PointID, "error", err)
			continue
		}

		page := record.PageNumber
		if page < 1 {
			page = metaPageNumber(result.Meta)
		}

		passages = append(passages, Passage{
			Page:  page,
			Text:  record.Text,
			Score: result.Score,
		})
	}

	logger.InfoContext(ctx, "retrieval completed",
		"doc_id", docID,
		"hits", len(results),
		"passages", len(passages),
		"k", k,
	)
	return passages, nil
}

// metaPageNumber reads the page number from point metadata. Qdrant integers
// come back as int64; JSON round-trips may produce float64.
func metaPageNumber(meta map[string]any) int {
	switch v := meta["page_number"].(type) {
	case int64:
		return int(v)
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
