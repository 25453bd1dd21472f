package hybrid

import (
	"floorplan-ai/internal/retrieval"
)

// placeholderScore is used when the retriever exposed no real relevance
// score. It is not comparable with scores from a scoring retriever.
const placeholderScore = 0.8

// BuildCitations normalizes retrieved passages into the Citation shape.
// Ids are dense and 1-based in retrieval order; a missing page number
// defaults to 1.
func BuildCitations(docID string, passages []retrieval.Passage) []Citation {
	citations := make([]Citation, 0, len(passages))
	for i, passage := range passages {
		page := passage.Page
		if page < 1 {
			page = 1
		}

		score := passage.Score
		if score <= 0 {
			score = placeholderScore
		}

		citations = append(citations, Citation{
			ID:             i + 1,
			Page:           page,
			Text:           passage.Text,
			RelevanceScore: score,
			DocID:          docID,
		})
	}
	return citations
}

// MostReferencedPage picks the page cited most often, by majority vote over
// citation page numbers. Ties break to the lowest page number so the result
// never depends on map iteration order. Returns nil for no citations.
func MostReferencedPage(citations []Citation) *int {
	if len(citations) == 0 {
		return nil
	}

	counts := make(map[int]int, len(citations))
	for _, citation := range citations {
		counts[citation.Page]++
	}

	best := 0
	bestCount := 0
	for page, count := range counts {
		if count > bestCount || (count == bestCount && page < best) {
			best = page
			bestCount = count
		}
	}
	return &best
}
