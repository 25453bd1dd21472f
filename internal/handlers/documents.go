package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"floorplan-ai/internal/contextutil"
	"floorplan-ai/internal/indexer"
	"floorplan-ai/internal/service"
	"floorplan-ai/internal/storage"
)

// DocumentsHandler handles HTTP requests for document management.
type DocumentsHandler struct {
	documents service.DocumentService
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(documents service.DocumentService) *DocumentsHandler {
	return &DocumentsHandler{documents: documents}
}

// IngestRequest represents the HTTP request payload for document ingestion.
// The caller extracts page texts from the PDF and submits them here.
type IngestRequest struct {
	Filename string        `json:"filename"`
	Title    string        `json:"title,omitempty"`
	Pages    []PagePayload `json:"pages"`
}

// PagePayload is one page of extracted text.
type PagePayload struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// DocumentResponse represents a document in HTTP responses.
type DocumentResponse struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Title     string `json:"title"`
	PageCount int    `json:"page_count"`
	CreatedAt string `json:"created_at"`
}

// DocumentListResponse wraps the document listing.
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

// Create handles POST /api/v1/documents.
func (h *DocumentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pages := make([]indexer.PageText, len(req.Pages))
	for i, page := range req.Pages {
		pages[i] = indexer.PageText{PageNumber: page.PageNumber, Text: page.Text}
	}

	doc, err := h.documents.IngestDocument(ctx, service.IngestRequest{
		Filename: req.Filename,
		Title:    req.Title,
		Pages:    pages,
	})
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, validationErr.Error())
			return
		}
		logger.ErrorContext(ctx, "failed to ingest document", "filename", req.Filename, "error", err)
		writeError(w, http.StatusBadGateway, "Failed to index document")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toDocumentResponse(doc))
}

// List handles GET /api/v1/documents.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	docs, err := h.documents.ListDocuments(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	resp := DocumentListResponse{Documents: make([]DocumentResponse, len(docs))}
	for i := range docs {
		resp.Documents[i] = toDocumentResponse(&docs[i])
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Get handles GET /api/v1/documents/{id}.
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id := chi.URLParam(r, "id")
	doc, err := h.documents.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		logger.ErrorContext(ctx, "failed to get document", "doc_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get document")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toDocumentResponse(doc))
}

// Delete handles DELETE /api/v1/documents/{id}.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id := chi.URLParam(r, "id")
	if err := h.documents.DeleteDocument(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		logger.ErrorContext(ctx, "failed to delete document", "doc_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete document")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toDocumentResponse(doc *storage.Document) DocumentResponse {
	return DocumentResponse{
		ID:        doc.ID,
		Filename:  doc.Filename,
		Title:     doc.Title,
		PageCount: doc.PageCount,
		CreatedAt: doc.CreatedAt.UTC().Format(time.RFC3339),
	}
}
