package retrieval

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_retriever.go -package=mocks floorplan-ai/internal/retrieval Retriever

import "context"

// Passage is a retrieved snippet of document text tied to a specific page.
// This is the single normalized shape all retriever implementations return;
// score semantics are "larger is better" within one retriever's output only.
type Passage struct {
	// Page is the 1-based page number the passage was extracted from.
	Page int
	// Text is the passage content.
	Text string
	// Score is the retriever's relevance score. Zero means the retriever
	// did not expose a real score.
	Score float32
}

// Retriever defines the interface for document passage retrieval.
type Retriever interface {
	// Retrieve returns up to k passages relevant to the question, ordered by
	// retrieval rank (most relevant first).
	Retrieve(ctx context.Context, docID, question string, k int) ([]Passage, error)
}
