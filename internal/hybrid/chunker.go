package hybrid

import (
	"strings"
	"unicode/utf8"
)

const (
	// runesPerToken is the estimation ratio used everywhere in this package.
	// The same estimator must be used for every count within one chunking
	// operation or the budget invariant breaks.
	runesPerToken = 4

	// promptReserveTokens covers the fixed prompt template wrapped around
	// each chunk before it is sent to the model.
	promptReserveTokens = 200

	// responseReserveTokens leaves room for the model's reply.
	responseReserveTokens = 500
)

// estimateTokens estimates the token count of text. A rune-based estimate
// (~4 runes per token for English prose) is deliberately conservative and
// keeps the chunker free of any tokenizer dependency.
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return utf8.RuneCountInString(text)/runesPerToken + 1
}

// ChunkContext splits context text into chunks that each fit the token
// budget left after reserving room for the prompt template, the question,
// and the model's response.
//
// Splitting degrades gracefully: paragraph boundaries first, then words
// within an oversized paragraph, then truncation of a single word that
// alone exceeds the budget (the documented worst case, with data loss).
// Every returned chunk carries the final TotalChunks count; the count is
// stamped only after the full pass so no chunk ever claims a premature
// total.
func ChunkContext(context, question string, maxChunkTokens int) []ContextChunk {
	availableTokens := maxChunkTokens - promptReserveTokens - estimateTokens(question) - responseReserveTokens

	// Last resort: the budget is consumed by overhead alone. Truncate at the
	// character level so the caller still gets something usable.
	if availableTokens < 1 {
		return stampTotals([]string{truncateRunes(context, maxChunkTokens*runesPerToken)})
	}

	if estimateTokens(context) <= availableTokens {
		return stampTotals([]string{context})
	}

	var texts []string
	var current strings.Builder

	seal := func() {
		if current.Len() > 0 {
			texts = append(texts, current.String())
			current.Reset()
		}
	}

	appendPart := func(part string) {
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(part)
	}

	for _, paragraph := range strings.Split(context, "\n\n") {
		if paragraph == "" {
			continue
		}

		if estimateTokens(paragraph) > availableTokens {
			// Paragraph alone exceeds the budget: descend to word level.
			seal()
			texts = append(texts, chunkWords(paragraph, availableTokens)...)
			continue
		}

		if current.Len() > 0 && estimateTokens(current.String()+"\n\n"+paragraph) > availableTokens {
			seal()
		}
		appendPart(paragraph)
	}
	seal()

	if len(texts) == 0 {
		texts = []string{truncateRunes(context, availableTokens*runesPerToken)}
	}

	return stampTotals(texts)
}

// chunkWords accumulates words into budget-sized chunks. A single word that
// alone exceeds the budget is truncated to half the budget and sealed as its
// own chunk; the tail of the word is lost.
func chunkWords(paragraph string, availableTokens int) []string {
	var texts []string
	var current strings.Builder

	seal := func() {
		if current.Len() > 0 {
			texts = append(texts, current.String())
			current.Reset()
		}
	}

	for _, word := range strings.Fields(paragraph) {
		if estimateTokens(word) > availableTokens {
			seal()
			texts = append(texts, truncateRunes(word, availableTokens*runesPerToken/2))
			continue
		}

		if current.Len() > 0 && estimateTokens(current.String()+" "+word) > availableTokens {
			seal()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	seal()

	return texts
}

// stampTotals converts raw chunk texts into ContextChunks with 1-based ids
// and the final total count on every chunk.
func stampTotals(texts []string) []ContextChunk {
	chunks := make([]ContextChunk, len(texts))
	for i, text := range texts {
		chunks[i] = ContextChunk{
			ChunkID:     i + 1,
			TotalChunks: len(texts),
			Text:        text,
		}
	}
	return chunks
}

// truncateRunes truncates text to at most n runes.
func truncateRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
