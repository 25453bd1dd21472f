package hybrid

import (
	"context"
	"fmt"
	"strings"
	"time"

	"floorplan-ai/internal/contextutil"
	"floorplan-ai/internal/retrieval"
)

const (
	// sparseTextThreshold marks a passage as text-sparse when its trimmed
	// text is shorter than this many characters.
	sparseTextThreshold = 50

	// Latency caps on the visual-augmentation sub-step: at most two
	// candidate pages are considered, at most one is actually analyzed.
	maxVisualCandidates = 2
	maxVisualAnalyzed   = 1

	// maxSummarizedChunks bounds the per-chunk extraction calls when the
	// combined context does not fit one chunk. Chunks past this count are
	// ignored: completeness is traded for bounded latency.
	maxSummarizedChunks = 3

	// webResultLimit and webExcerptLimit bound the web branch: it runs
	// under the shared deadline, so fewer results than the non-urgent
	// default and a short excerpt per result.
	webResultLimit  = 2
	webExcerptLimit = 300

	// noInfoSentinel is the phrase the extraction prompt asks the model to
	// answer with when a chunk holds nothing relevant.
	noInfoSentinel = "NO_RELEVANT_INFORMATION"
)

// fetch runs the document branch (always) and the web branch (when needed).
// When both run, they execute as two goroutines joined through a bounded
// wait: the coordinator collects whichever results arrive before the fetch
// deadline and abandons the rest. Late branches keep running to completion
// in the background; their results are simply never read. Each branch
// delivers its result over a buffered channel, so an abandoned result is
// parked in the channel and there is never a read of half-written state.
func (e *hybridEngine) fetch(ctx context.Context, docID, question string, needsWeb bool) (documentResult, webResult) {
	logger := contextutil.LoggerFromContext(ctx)

	if !needsWeb {
		return e.fetchDocument(ctx, docID, question), webResult{}
	}

	docCh := make(chan documentResult, 1)
	webCh := make(chan webResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "document branch panicked", "doc_id", docID, "panic", r)
				docCh <- documentResult{}
			}
		}()
		docCh <- e.fetchDocument(ctx, docID, question)
	}()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "web branch panicked", "panic", r)
				webCh <- webResult{}
			}
		}()
		webCh <- e.fetchWeb(ctx, question)
	}()

	var docRes documentResult
	var webRes webResult

	timer := time.NewTimer(e.fetchTimeout)
	defer timer.Stop()

	for pending := 2; pending > 0; {
		select {
		case docRes = <-docCh:
			pending--
		case webRes = <-webCh:
			pending--
		case <-timer.C:
			logger.WarnContext(ctx, "fetch deadline expired, proceeding with partial results",
				"doc_id", docID,
				"timeout", e.fetchTimeout,
				"pending_branches", pending,
			)
			pending = 0
		}
	}

	return docRes, webRes
}

// fetchDocument runs the document-retrieval branch: retrieve passages,
// aggregate citations, optionally augment text-sparse pages with visual
// analysis, then reduce the combined context to a token-bounded content
// string. Errors never escape; they degrade to an empty result.
func (e *hybridEngine) fetchDocument(ctx context.Context, docID, question string) documentResult {
	logger := contextutil.LoggerFromContext(ctx)

	passages, err := e.retriever.Retrieve(ctx, docID, question, retrievalTopK)
	if err != nil {
		logger.ErrorContext(ctx, "document retrieval failed", "doc_id", docID, "error", err)
		return documentResult{}
	}
	if len(passages) == 0 {
		logger.InfoContext(ctx, "no passages retrieved", "doc_id", docID)
		return documentResult{}
	}

	citations := BuildCitations(docID, passages)
	result := documentResult{
		citations:          citations,
		mostReferencedPage: MostReferencedPage(citations),
	}

	contextText := formatPassages(passages)
	if needsVisualAnalysis(question) {
		if insights := e.visualInsights(ctx, docID, passages); insights != "" {
			contextText += "\n\nAdditional visual insights:\n" + insights
		}
	}

	chunks := ChunkContext(contextText, question, documentChunkTokens)
	if len(chunks) == 1 {
		result.content = chunks[0].Text
		return result
	}

	result.content = e.summarizeChunks(ctx, chunks, question)
	return result
}

// visualInsights finds text-sparse pages among the retrieved passages and
// asks the page analyzer to describe them. Candidate pages are capped at
// two and analyzed pages at one, bounding latency at the cost of
// completeness.
func (e *hybridEngine) visualInsights(ctx context.Context, docID string, passages []retrieval.Passage) string {
	logger := contextutil.LoggerFromContext(ctx)

	seen := make(map[int]bool)
	var sparsePages []int
	for _, passage := range passages {
		page := passage.Page
		if page < 1 || seen[page] {
			continue
		}
		if len(strings.TrimSpace(passage.Text)) >= sparseTextThreshold {
			continue
		}
		seen[page] = true
		sparsePages = append(sparsePages, page)
		if len(sparsePages) == maxVisualCandidates {
			break
		}
	}

	var insights strings.Builder
	analyzed := 0
	for _, page := range sparsePages {
		if analyzed == maxVisualAnalyzed {
			break
		}
		description, err := e.analyzer.AnalyzePage(ctx, docID, page)
		if err != nil {
			logger.WarnContext(ctx, "visual page analysis failed", "doc_id", docID, "page", page, "error", err)
			continue
		}
		if description == "" {
			continue
		}
		if insights.Len() > 0 {
			insights.WriteString("\n\n")
		}
		fmt.Fprintf(&insights, "Page %d: %s", page, description)
		analyzed++
	}
	return insights.String()
}

// summarizeChunks reduces an oversized context map-style: each of the first
// few chunks is independently condensed by an extraction call, chunks with
// nothing relevant are discarded via the sentinel phrase, and the rest are
// concatenated.
func (e *hybridEngine) summarizeChunks(ctx context.Context, chunks []ContextChunk, question string) string {
	logger := contextutil.LoggerFromContext(ctx)

	limit := len(chunks)
	if limit > maxSummarizedChunks {
		limit = maxSummarizedChunks
	}

	var parts []string
	for _, chunk := range chunks[:limit] {
		prompt := fmt.Sprintf(`Extract the information relevant to the user's question from this document excerpt (part %d of %d).

Excerpt:
%s

User question: %s

Respond with only the relevant information. If this excerpt contains nothing relevant to the question, respond with exactly: %s`,
			chunk.ChunkID, chunk.TotalChunks, chunk.Text, question, noInfoSentinel)

		summary, err := e.generator.Generate(ctx, prompt)
		if err != nil {
			logger.WarnContext(ctx, "chunk extraction failed", "chunk_id", chunk.ChunkID, "error", err)
			continue
		}
		if summary == "" || strings.Contains(summary, noInfoSentinel) {
			continue
		}
		parts = append(parts, summary)
	}
	return strings.Join(parts, "\n\n")
}

// fetchWeb runs the web-search branch. Provider failures yield an empty
// result, never an error.
func (e *hybridEngine) fetchWeb(ctx context.Context, question string) webResult {
	logger := contextutil.LoggerFromContext(ctx)

	results, err := e.searcher.Search(ctx, question, webResultLimit)
	if err != nil {
		logger.ErrorContext(ctx, "web search failed", "error", err)
		return webResult{}
	}
	if len(results) == 0 {
		return webResult{}
	}

	var content strings.Builder
	for i, result := range results {
		if i >= webResultLimit {
			break
		}
		if content.Len() > 0 {
			content.WriteString("\n\n")
		}
		excerpt := result.Content
		if len(excerpt) > webExcerptLimit {
			excerpt = excerpt[:webExcerptLimit] + "..."
		}
		fmt.Fprintf(&content, "%d. %s\n%s\nSource: %s", i+1, result.Title, excerpt, result.URL)
	}
	return webResult{content: content.String()}
}

// formatPassages renders retrieved passages as page-labeled blocks.
func formatPassages(passages []retrieval.Passage) string {
	var builder strings.Builder
	for _, passage := range passages {
		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		page := passage.Page
		if page < 1 {
			page = 1
		}
		fmt.Fprintf(&builder, "Page %d: %s", page, passage.Text)
	}
	return builder.String()
}
