package hybrid

// Citation is a normalized, numbered reference to a retrieved passage, shown
// to the end user alongside the synthesized answer. Ids are assigned densely
// starting at 1 in retrieval order, not relevance order, so citation numbers
// stay stable references a user can cite back ("see citation 3").
type Citation struct {
	// ID is the 1-based ordinal, unique within a response.
	ID int `json:"id"`
	// Page is the page number the cited passage came from. Defaults to 1
	// when the retriever did not report one.
	Page int `json:"page"`
	// Text is the passage content.
	Text string `json:"text"`
	// RelevanceScore is the retriever's score, or a 0.8 placeholder when the
	// retriever exposed none. Placeholder scores are not comparable with
	// real ones and must not be ranked across retrieval paths.
	RelevanceScore float32 `json:"relevance_score"`
	// DocID is the document the passage belongs to.
	DocID string `json:"doc_id"`
}

// ContextChunk is one size-bounded piece of context text produced by the
// token-budget chunker.
type ContextChunk struct {
	// ChunkID is the 1-based position of this chunk.
	ChunkID int
	// TotalChunks is the total number of chunks produced by the chunking
	// operation. Stamped on every chunk only after the full pass completes.
	TotalChunks int
	// Text is the chunk content, bounded by the caller's token budget.
	Text string
}

// Suggestion points the user at a related page worth looking at.
type Suggestion struct {
	Title       string `json:"title"`
	Page        int    `json:"page"`
	Description string `json:"description"`
}

// Answer is the response produced for one question. It is always well-formed:
// the engine degrades answer quality on failure instead of returning errors.
type Answer struct {
	// Answer is the synthesized natural-language answer.
	Answer string `json:"answer"`
	// Citations reference the document passages the answer is grounded on,
	// in retrieval order.
	Citations []Citation `json:"citations"`
	// MostReferencedPage is the page cited most often, or nil when nothing
	// was retrieved. Ties go to the lowest page number.
	MostReferencedPage *int `json:"most_referenced_page"`
	// HasDocumentContent reports whether the document branch contributed.
	HasDocumentContent bool `json:"has_document_content"`
	// HasWebContent reports whether the web branch contributed.
	HasWebContent bool `json:"has_web_content"`
	// Suggestions are related pages, present only when requested.
	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

// documentResult holds everything the document-retrieval branch produced.
// It is computed entirely inside the branch goroutine and handed to the
// coordinator over a channel, so no field is ever shared mid-write.
type documentResult struct {
	content            string
	citations          []Citation
	mostReferencedPage *int
}

// webResult holds everything the web-search branch produced.
type webResult struct {
	content string
}
