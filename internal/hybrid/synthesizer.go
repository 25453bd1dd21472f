package hybrid

import (
	"context"
	"fmt"
	"strings"

	"floorplan-ai/internal/contextutil"
)

const (
	// maxCitationIndex caps the citation index appended to the synthesis
	// prompt.
	maxCitationIndex = 5

	// fallbackExcerptLimit bounds the raw content excerpts in the
	// deterministic synthesis fallback.
	fallbackExcerptLimit = 500
)

// noContentAnswer is returned when neither branch produced content. It is
// honest about what was found rather than fabricating a confident answer.
const noContentAnswer = "I couldn't find relevant information in the document or from current sources to answer your question. " +
	"I can answer questions about both the text and the visual content of your floor plan document, such as room layouts, " +
	"dimensions, and annotations. You may want to rephrase your question, or verify the topic with an external source."

// requiresResearchAnswer is the last-resort answer when even the
// deterministic fallback has nothing to work with.
const requiresResearchAnswer = "This question requires further research to answer accurately. Please try rephrasing it or consult an external source."

// synthesize fuses document content, web content, and citations into one
// answer via a single generative call. Synthesis failures are never fatal:
// they fall back to a deterministic concatenation of the raw content, and
// finally to a generic answer.
func (e *hybridEngine) synthesize(ctx context.Context, docContent, webContent, question string, citations []Citation) string {
	logger := contextutil.LoggerFromContext(ctx)

	if docContent == "" && webContent == "" {
		return noContentAnswer
	}

	prompt := buildSynthesisPrompt(docContent, webContent, question, citations)

	answer, err := e.generator.Generate(ctx, prompt)
	if err != nil || answer == "" {
		logger.ErrorContext(ctx, "answer synthesis failed, using deterministic fallback", "error", err)
		return fallbackSynthesis(docContent, webContent)
	}
	return answer
}

// buildSynthesisPrompt assembles the combined context with labeled sections
// and a short citation index.
func buildSynthesisPrompt(docContent, webContent, question string, citations []Citation) string {
	var prompt strings.Builder

	prompt.WriteString("Answer the user's question using the information below.\n")

	if docContent != "" {
		prompt.WriteString("\nDOCUMENT INFORMATION:\n")
		prompt.WriteString(docContent)
		prompt.WriteString("\n")
	}
	if webContent != "" {
		prompt.WriteString("\nCURRENT INFORMATION:\n")
		prompt.WriteString(webContent)
		prompt.WriteString("\n")
	}

	if len(citations) > 0 {
		prompt.WriteString("\nCitation references:\n")
		for i, citation := range citations {
			if i >= maxCitationIndex {
				break
			}
			fmt.Fprintf(&prompt, "[%d] Page %d\n", citation.ID, citation.Page)
		}
	}

	fmt.Fprintf(&prompt, `
User question: %s

Instructions:
- Address the question directly.
- Synthesize across the sources where they complement each other.
- Be concrete: include specific details, measurements, and page references where available.
- Reference sources using the citation format [1], [2], etc. where citations are listed.
- If part of the question cannot be answered from the available information, say so explicitly instead of guessing.`, question)

	return prompt.String()
}

// fallbackSynthesis builds a deterministic answer from the raw branch
// content when the generative call fails.
func fallbackSynthesis(docContent, webContent string) string {
	var parts []string

	if excerpt := truncateChars(docContent, fallbackExcerptLimit); excerpt != "" {
		parts = append(parts, "From the document: "+excerpt)
	}
	if excerpt := truncateChars(webContent, fallbackExcerptLimit); excerpt != "" {
		parts = append(parts, "From current sources: "+excerpt)
	}

	if len(parts) == 0 {
		return requiresResearchAnswer
	}
	return "I couldn't compose a full answer, but here is the relevant information found:\n\n" + strings.Join(parts, "\n\n")
}

// truncateChars truncates text to at most n characters, marking the cut.
func truncateChars(text string, n int) string {
	text = strings.TrimSpace(text)
	if len(text) <= n {
		return text
	}
	return text[:n] + "..."
}

// fallbackAnswer is the orchestrator-level canned answer for the
// should-be-unreachable total failure path.
func fallbackAnswer() Answer {
	return Answer{
		Answer:    noContentAnswer,
		Citations: []Citation{},
	}
}
