package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"floorplan-ai/internal/contextutil"
	"floorplan-ai/internal/storage"
	"floorplan-ai/internal/vectorstore"
)

// Embedder turns texts into embedding vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline orchestrates document ingestion: page text into SQLite, passage
// vectors into Qdrant.
type Pipeline struct {
	docRepo     storage.DocumentStore
	pageRepo    storage.PageStore
	passageRepo storage.PassageStore
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	logger      *slog.Logger
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	docRepo storage.DocumentStore,
	pageRepo storage.PageStore,
	passageRepo storage.PassageStore,
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
) *Pipeline {
	return &Pipeline{
		docRepo:     docRepo,
		pageRepo:    pageRepo,
		passageRepo: passageRepo,
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		logger:      slog.Default(),
	}
}

// IndexDocument ingests one document: stores the document record and its
// page texts, splits every page into passages, embeds them, and writes the
// vectors to the vector store. The doc.ID must be set (UUID) before calling.
func (p *Pipeline) IndexDocument(ctx context.Context, doc *storage.Document, pages []PageText) error {
	logger := contextutil.LoggerFromContext(ctx)

	if doc.ID == "" {
		return fmt.Errorf("document ID must be set")
	}
	if len(pages) == 0 {
		return fmt.Errorf("document has no pages")
	}

	ordered := make([]PageText, len(pages))
	copy(ordered, pages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PageNumber < ordered[j].PageNumber
	})

	doc.PageCount = len(ordered)
	if err := p.docRepo.Insert(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	// Store page texts and collect passages in page order.
	type pendingPassage struct {
		pageNumber int
		text       string
	}
	var pending []pendingPassage

	for _, page := range ordered {
		if page.PageNumber < 1 {
			return fmt.Errorf("invalid page number %d", page.PageNumber)
		}

		record := &storage.Page{
			DocID:      doc.ID,
			PageNumber: page.PageNumber,
			Text:       page.Text,
		}
		if err := p.pageRepo.Insert(ctx, record); err != nil {
			return fmt.Errorf("failed to insert page %d: %w", page.PageNumber, err)
		}

		for _, text := range SplitPageText(page.Text) {
			pending = append(pending, pendingPassage{pageNumber: page.PageNumber, text: text})
		}
	}

	if len(pending) == 0 {
		logger.WarnContext(ctx, "document produced no passages", "doc_id", doc.ID, "pages", len(ordered))
		return nil
	}

	texts := make([]string, len(pending))
	for i, passage := range pending {
		texts[i] = passage.text
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(pending) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(pending), len(embeddings))
	}

	points := make([]vectorstore.Point, len(pending))
	for i, passage := range pending {
		passageID := uuid.New().String()

		record := &storage.Passage{
			ID:           passageID,
			DocID:        doc.ID,
			PageNumber:   passage.pageNumber,
			PassageIndex: i,
			Text:         passage.text,
		}
		if err := p.passageRepo.Insert(ctx, record); err != nil {
			return fmt.Errorf("failed to insert passage: %w", err)
		}

		points[i] = vectorstore.Point{
			ID:  passageID,
			Vec: embeddings[i],
			Meta: map[string]any{
				"doc_id":        doc.ID,
				"page_number":   passage.pageNumber,
				"passage_index": i,
				"doc_title":     doc.Title,
			},
		}
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}

	logger.InfoContext(ctx, "indexed document",
		"doc_id", doc.ID,
		"pages", len(ordered),
		"passages", len(pending),
		"title", doc.Title,
	)
	return nil
}

// RemoveDocument deletes a document's vectors and database records.
// Vector deletion failures are logged but do not block the database delete.
func (p *Pipeline) RemoveDocument(ctx context.Context, docID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	passageIDs, err := p.passageRepo.ListIDsByDocument(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to list passage IDs: %w", err)
	}

	if len(passageIDs) > 0 {
		if err := p.vectorStore.Delete(ctx, p.collection, passageIDs); err != nil {
			logger.WarnContext(ctx, "failed to delete vectors", "doc_id", docID, "count", len(passageIDs), "error", err)
		}
	}

	if err := p.docRepo.Delete(ctx, docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	logger.InfoContext(ctx, "removed document", "doc_id", docID, "passages", len(passageIDs))
	return nil
}
