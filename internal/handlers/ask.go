package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghhtml "github.com/yuin/goldmark/renderer/html"

	"floorplan-ai/internal/contextutil"
	"floorplan-ai/internal/hybrid"
	"floorplan-ai/internal/service"
)

// AskHandler handles HTTP requests for document questions.
type AskHandler struct {
	engine    hybrid.Engine
	documents service.DocumentService
	markdown  goldmark.Markdown
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(engine hybrid.Engine, documents service.DocumentService) *AskHandler {
	return &AskHandler{
		engine:    engine,
		documents: documents,
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
			),
			goldmark.WithRendererOptions(
				ghhtml.WithHardWraps(),
			),
		),
	}
}

// AskRequest represents the HTTP request payload for document questions.
type AskRequest struct {
	DocID              string `json:"doc_id"`
	Question           string `json:"question"`
	IncludeSuggestions bool   `json:"include_suggestions,omitempty"`
}

// AskResponse represents the HTTP response payload for document questions.
type AskResponse struct {
	// Answer is the synthesized answer as plain markdown.
	Answer string `json:"answer"`

	// AnswerHTML is the answer rendered to HTML for direct display.
	AnswerHTML string `json:"answer_html"`

	// Citations reference the document passages the answer is grounded on.
	Citations []CitationResponse `json:"citations"`

	// MostReferencedPage is the page cited most often, if anything was cited.
	MostReferencedPage *int `json:"most_referenced_page"`

	// HasDocumentContent reports whether document passages contributed.
	HasDocumentContent bool `json:"has_document_content"`

	// HasWebContent reports whether web results contributed.
	HasWebContent bool `json:"has_web_content"`

	// Suggestions are related pages, present only when requested.
	Suggestions []SuggestionResponse `json:"suggestions,omitempty"`
}

// CitationResponse represents a citation in the HTTP response.
type CitationResponse struct {
	ID             int     `json:"id"`
	Page           int     `json:"page"`
	Text           string  `json:"text"`
	RelevanceScore float32 `json:"relevance_score"`
	DocID          string  `json:"doc_id"`
}

// SuggestionResponse represents a related-page suggestion.
type SuggestionResponse struct {
	Title       string `json:"title"`
	Page        int    `json:"page"`
	Description string `json:"description"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles POST /api/v1/ask.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		logger.WarnContext(ctx, "empty question in request")
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}
	if strings.TrimSpace(req.DocID) == "" {
		logger.WarnContext(ctx, "missing doc_id in request")
		writeError(w, http.StatusBadRequest, "doc_id is required")
		return
	}

	if _, err := h.documents.GetDocument(ctx, req.DocID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			logger.WarnContext(ctx, "unknown document in ask request", "doc_id", req.DocID)
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		logger.ErrorContext(ctx, "failed to look up document", "doc_id", req.DocID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to look up document")
		return
	}

	// The engine never returns an error; failures degrade the answer.
	answer := h.engine.AnswerQuestion(ctx, req.DocID, req.Question, req.IncludeSuggestions)

	citations := make([]CitationResponse, len(answer.Citations))
	for i, citation := range answer.Citations {
		citations[i] = CitationResponse{
			ID:             citation.ID,
			Page:           citation.Page,
			Text:           citation.Text,
			RelevanceScore: citation.RelevanceScore,
			DocID:          citation.DocID,
		}
	}

	var suggestions []SuggestionResponse
	for _, suggestion := range answer.Suggestions {
		suggestions = append(suggestions, SuggestionResponse{
			Title:       suggestion.Title,
			Page:        suggestion.Page,
			Description: suggestion.Description,
		})
	}

	resp := AskResponse{
		Answer:             answer.Answer,
		AnswerHTML:         h.renderAnswerHTML(r, answer.Answer),
		Citations:          citations,
		MostReferencedPage: answer.MostReferencedPage,
		HasDocumentContent: answer.HasDocumentContent,
		HasWebContent:      answer.HasWebContent,
		Suggestions:        suggestions,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// renderAnswerHTML converts the markdown answer to HTML. A render failure
// leaves AnswerHTML empty rather than failing the whole response.
func (h *AskHandler) renderAnswerHTML(r *http.Request, answer string) string {
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(answer), &buf); err != nil {
		logger := contextutil.LoggerFromContext(r.Context())
		logger.WarnContext(r.Context(), "failed to render answer markdown", "error", err)
		return ""
	}
	return buf.String()
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
