package vision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"floorplan-ai/internal/contextutil"
	"floorplan-ai/internal/llm"
	"floorplan-ai/internal/storage"
)

// maxPageTextChars bounds how much raw page text goes into the analysis
// prompt.
const maxPageTextChars = 4000

// ChatClient sends a chat completion with full message history.
type ChatClient interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// LLMAnalyzer describes the visual content of a document page. Floor plan
// pages are mostly drawings with little surrounding prose, so the analyzer
// reconstructs the spatial picture from whatever annotations, labels, and
// measurements the page text carries.
type LLMAnalyzer struct {
	pages  storage.PageStore
	client ChatClient
	logger *slog.Logger
}

// NewLLMAnalyzer creates a new LLMAnalyzer.
func NewLLMAnalyzer(pages storage.PageStore, client ChatClient) *LLMAnalyzer {
	return &LLMAnalyzer{
		pages:  pages,
		client: client,
		logger: slog.Default(),
	}
}

// AnalyzePage returns a textual description of the page's visual and spatial
// content. Returns an empty description (no error) when the page holds no
// text to work from.
func (a *LLMAnalyzer) AnalyzePage(ctx context.Context, docID string, page int) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	text, err := a.pages.GetText(ctx, docID, page)
	if err != nil {
		return "", fmt.Errorf("failed to load page text: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		logger.InfoContext(ctx, "page has no text to analyze", "doc_id", docID, "page", page)
		return "", nil
	}
	if len(text) > maxPageTextChars {
		text = text[:maxPageTextChars]
	}

	systemPrompt := "You are an expert at reading architectural floor plans. " +
		"From the annotations, room labels, and measurements on a page, describe the visual layout: " +
		"which rooms appear, how they are arranged, and any notable dimensions or markings. " +
		"Be concise and only describe what the annotations support."

	userMessage := fmt.Sprintf("Page %d annotations and labels:\n\n%s\n\nDescribe the visual layout of this page.", page, text)

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userMessage},
	}

	description, err := a.client.ChatWithMessages(ctx, messages, llm.ChatParams{
		MaxTokens:   400,
		Temperature: 0.3,
	})
	if err != nil {
		logger.ErrorContext(ctx, "page analysis failed", "doc_id", docID, "page", page, "error", err)
		return "", fmt.Errorf("failed to analyze page: %w", err)
	}

	logger.InfoContext(ctx, "page analyzed", "doc_id", docID, "page", page, "description_length", len(description))
	return strings.TrimSpace(description), nil
}
