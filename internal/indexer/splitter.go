package indexer

import (
	"strings"
	"unicode/utf8"
)

const (
	// passageTargetSize is the maximum passage length in runes, sized for
	// the embedding model's context window.
	passageTargetSize = 1200

	// passageOverlap is how many runes consecutive passages share, so a
	// sentence straddling a boundary stays findable from either side.
	passageOverlap = 200
)

// SplitPageText splits one page's text into embedding-sized passages.
// Split points prefer paragraph breaks, then line breaks, then sentence
// ends; a hard cut only happens when the window holds none of those.
// Size is measured in runes (not bytes) for consistency with embedding
// token estimation.
func SplitPageText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= passageTargetSize {
		return []string{text}
	}

	var passages []string
	start := 0

	for start < len(runes) {
		end := start + passageTargetSize
		if end >= len(runes) {
			if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
				passages = append(passages, tail)
			}
			break
		}

		window := string(runes[start:end])
		cut := len(window)
		if boundary := strings.LastIndex(window, "\n\n"); boundary > 0 {
			cut = boundary + 2
		} else if boundary := strings.LastIndex(window, "\n"); boundary > 0 {
			cut = boundary + 1
		} else if boundary := strings.LastIndex(window, ". "); boundary > 0 {
			cut = boundary + 2
		}

		splitPoint := start + utf8.RuneCountInString(window[:cut])
		if passage := strings.TrimSpace(string(runes[start:splitPoint])); passage != "" {
			passages = append(passages, passage)
		}

		next := splitPoint - passageOverlap
		if next <= start {
			next = splitPoint
		}
		start = next
	}

	return passages
}
