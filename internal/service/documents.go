package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_service.go -package=mocks -mock_names=DocumentService=MockDocumentService floorplan-ai/internal/service DocumentService

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"floorplan-ai/internal/contextutil"
	"floorplan-ai/internal/indexer"
	"floorplan-ai/internal/storage"
)

// Ingestor indexes and removes documents. This interface is defined from the
// service layer's perspective (consumer-first).
type Ingestor interface {
	IndexDocument(ctx context.Context, doc *storage.Document, pages []indexer.PageText) error
	RemoveDocument(ctx context.Context, docID string) error
}

// IngestRequest carries the extracted text of an uploaded document.
type IngestRequest struct {
	Filename string
	Title    string
	Pages    []indexer.PageText
}

// DocumentService manages the document lifecycle.
type DocumentService interface {
	// IngestDocument stores a document's pages and indexes its passages.
	IngestDocument(ctx context.Context, req IngestRequest) (*storage.Document, error)
	// ListDocuments returns all indexed documents, newest first.
	ListDocuments(ctx context.Context) ([]storage.Document, error)
	// GetDocument returns one document by ID.
	GetDocument(ctx context.Context, id string) (*storage.Document, error)
	// DeleteDocument removes a document, its pages, and its vectors.
	DeleteDocument(ctx context.Context, id string) error
}

type documentService struct {
	docRepo  storage.DocumentStore
	ingestor Ingestor
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(docRepo storage.DocumentStore, ingestor Ingestor) DocumentService {
	return &documentService{
		docRepo:  docRepo,
		ingestor: ingestor,
	}
}

func (s *documentService) IngestDocument(ctx context.Context, req IngestRequest) (*storage.Document, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Filename) == "" {
		logger.WarnContext(ctx, "ingest request missing filename")
		return nil, &ValidationError{Field: "filename", Message: "cannot be empty"}
	}
	if len(req.Pages) == 0 {
		logger.WarnContext(ctx, "ingest request has no pages", "filename", req.Filename)
		return nil, &ValidationError{Field: "pages", Message: "cannot be empty"}
	}
	for _, page := range req.Pages {
		if page.PageNumber < 1 {
			return nil, &ValidationError{Field: "pages", Message: "page numbers start at 1"}
		}
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = titleFromFilename(req.Filename)
	}

	doc := &storage.Document{
		ID:       uuid.New().String(),
		Filename: req.Filename,
		Title:    title,
	}

	if err := s.ingestor.IndexDocument(ctx, doc, req.Pages); err != nil {
		logger.ErrorContext(ctx, "failed to index document", "filename", req.Filename, "error", err)
		return nil, WrapError(err, "failed to index document")
	}

	logger.InfoContext(ctx, "document ingested", "doc_id", doc.ID, "title", doc.Title, "pages", doc.PageCount)
	return doc, nil
}

func (s *documentService) ListDocuments(ctx context.Context) ([]storage.Document, error) {
	docs, err := s.docRepo.ListAll(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to list documents")
	}
	return docs, nil
}

func (s *documentService) GetDocument(ctx context.Context, id string) (*storage.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, WrapError(err, "failed to get document")
	}
	return doc, nil
}

func (s *documentService) DeleteDocument(ctx context.Context, id string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := s.ingestor.RemoveDocument(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		logger.ErrorContext(ctx, "failed to delete document", "doc_id", id, "error", err)
		return WrapError(err, "failed to delete document")
	}

	logger.InfoContext(ctx, "document deleted", "doc_id", id)
	return nil
}

// titleFromFilename derives a display title from an uploaded filename.
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.TrimSpace(base)
}
