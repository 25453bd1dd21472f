package hybrid

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"floorplan-ai/internal/contextutil"
	"floorplan-ai/internal/retrieval"
	"floorplan-ai/internal/websearch"
)

// PageAnalyzer describes visual content on a document page. Consumed when
// retrieved passages are text-sparse and the question is visual.
type PageAnalyzer interface {
	// AnalyzePage returns a textual description of the page's visual content.
	AnalyzePage(ctx context.Context, docID string, page int) (string, error)
}

// WebSearcher returns a small ranked list of web results for a query.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]websearch.Result, error)
}

// Generator performs a single-turn generative completion.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Engine answers questions about a document by fusing document retrieval,
// optional visual page analysis, and optional live web search into one
// cited answer.
type Engine interface {
	// AnswerQuestion runs the full hybrid pipeline for one question. It
	// always returns a well-formed Answer and never an error: every failure
	// degrades to a coarser fallback instead of aborting the request.
	AnswerQuestion(ctx context.Context, docID, question string, includeSuggestions bool) Answer
}

const (
	// defaultFetchTimeout bounds the wait for the two fetch branches.
	defaultFetchTimeout = 10 * time.Second

	// retrievalTopK is the passage count requested from the retriever.
	retrievalTopK = 8

	// documentChunkTokens is the chunking ceiling for the document branch,
	// below the 4000-token default because this path runs under the fetch
	// deadline.
	documentChunkTokens = 3000

	// maxSuggestions caps the related-page suggestions in a response.
	maxSuggestions = 3
)

// hybridEngine implements the Engine interface.
type hybridEngine struct {
	retriever    retrieval.Retriever
	analyzer     PageAnalyzer
	searcher     WebSearcher
	generator    Generator
	fetchTimeout time.Duration
	logger       *slog.Logger
}

// Option configures the engine.
type Option func(*hybridEngine)

// WithFetchTimeout overrides the default deadline for the fetch branches.
func WithFetchTimeout(d time.Duration) Option {
	return func(e *hybridEngine) {
		if d > 0 {
			e.fetchTimeout = d
		}
	}
}

// NewEngine creates a hybrid question-answering engine. All collaborators
// are injected so callers and tests control the external services.
func NewEngine(retriever retrieval.Retriever, analyzer PageAnalyzer, searcher WebSearcher, generator Generator, opts ...Option) Engine {
	engine := &hybridEngine{
		retriever:    retriever,
		analyzer:     analyzer,
		searcher:     searcher,
		generator:    generator,
		fetchTimeout: defaultFetchTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// AnswerQuestion runs: classify -> dispatch(doc[, web]) -> await barrier ->
// aggregate citations -> synthesize -> return.
func (e *hybridEngine) AnswerQuestion(ctx context.Context, docID, question string, includeSuggestions bool) (answer Answer) {
	logger := contextutil.LoggerFromContext(ctx)

	// Outermost boundary: a panic anywhere below still yields a well-formed
	// answer. This path should be unreachable in normal operation.
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "hybrid pipeline panicked", "doc_id", docID, "panic", r)
			answer = fallbackAnswer()
		}
	}()

	if IsGreeting(question) {
		logger.InfoContext(ctx, "greeting detected, skipping retrieval", "question", question)
		return Answer{
			Answer:    "Hello! Ask me anything about your floor plan document and I'll look it up for you.",
			Citations: []Citation{},
		}
	}

	needsWeb := NeedsWebSearch(question)
	logger.InfoContext(ctx, "hybrid question started",
		"doc_id", docID,
		"needs_web_search", needsWeb,
		"include_suggestions", includeSuggestions,
	)

	docRes, webRes := e.fetch(ctx, docID, question, needsWeb)

	answer = Answer{
		Answer:             e.synthesize(ctx, docRes.content, webRes.content, question, docRes.citations),
		Citations:          docRes.citations,
		MostReferencedPage: docRes.mostReferencedPage,
		HasDocumentContent: docRes.content != "",
		HasWebContent:      webRes.content != "",
	}
	if answer.Citations == nil {
		answer.Citations = []Citation{}
	}
	if includeSuggestions {
		answer.Suggestions = buildSuggestions(docRes.citations)
	}

	logger.InfoContext(ctx, "hybrid question completed",
		"doc_id", docID,
		"citations", len(answer.Citations),
		"has_document_content", answer.HasDocumentContent,
		"has_web_content", answer.HasWebContent,
	)
	return answer
}

// buildSuggestions derives related-page suggestions from the distinct pages
// among the citations, keeping first-cited order.
func buildSuggestions(citations []Citation) []Suggestion {
	seen := make(map[int]bool, len(citations))
	suggestions := make([]Suggestion, 0, maxSuggestions)

	for _, citation := range citations {
		if seen[citation.Page] {
			continue
		}
		seen[citation.Page] = true

		suggestions = append(suggestions, Suggestion{
			Title:       fmt.Sprintf("Page %d Content", citation.Page),
			Page:        citation.Page,
			Description: fmt.Sprintf("Additional information available on page %d.", citation.Page),
		})
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	return suggestions
}
