package hybrid

import (
	"strings"
	"unicode"
)

// Keyword sets driving the question classifier. Single words are matched
// against whole tokens so "hi" does not fire inside "this"; multi-word
// phrases are matched as substrings.
var (
	greetingKeywords = []string{
		"hello", "hi", "hey", "thanks", "thank you", "good morning",
		"good afternoon", "good evening", "how are you", "goodbye", "bye",
	}

	documentKeywords = []string{
		"page", "document", "floor plan", "floorplan", "floor", "diagram",
		"layout", "drawing", "blueprint", "room", "rooms", "wall", "walls",
		"door", "doors", "window", "windows", "dimension", "dimensions",
		"scale", "legend",
	}

	currencyKeywords = []string{
		"current", "latest", "recent", "today", "now", "news", "update",
		"updated", "regulation", "regulations", "requirement", "requirements",
		"price", "prices", "cost", "costs", "market", "standard", "standards",
	}

	visualKeywords = []string{
		"layout", "arrangement", "position", "where", "located", "diagram",
		"drawing", "plan", "design", "visual", "look", "appearance",
		"orientation", "spatial", "show", "see", "view", "display",
		"illustrate", "color", "shape", "size",
	}
)

// IsGreeting reports whether the question is a greeting or courtesy phrase
// that needs neither retrieval nor web search.
func IsGreeting(question string) bool {
	return matchesAny(question, greetingKeywords)
}

// NeedsWebSearch decides whether a question needs live web search. Document
// keywords take precedence over currency-of-information keywords: a question
// grounded in the document never triggers web search even when it also asks
// about something time-sensitive.
func NeedsWebSearch(question string) bool {
	if IsGreeting(question) {
		return false
	}
	if matchesAny(question, documentKeywords) {
		return false
	}
	if matchesAny(question, currencyKeywords) {
		return true
	}
	return false
}

// needsVisualAnalysis reports whether the question asks about visual or
// spatial properties that extracted text alone may not capture.
func needsVisualAnalysis(question string) bool {
	return matchesAny(question, visualKeywords)
}

// matchesAny reports whether the question contains any of the keywords.
func matchesAny(question string, keywords []string) bool {
	lowered := strings.ToLower(question)
	tokens := questionTokens(lowered)

	for _, keyword := range keywords {
		if strings.Contains(keyword, " ") {
			if strings.Contains(lowered, keyword) {
				return true
			}
			continue
		}
		if tokens[keyword] {
			return true
		}
	}
	return false
}

// questionTokens splits a lowercased question into a set of word tokens.
func questionTokens(lowered string) map[string]bool {
	fields := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make(map[string]bool, len(fields))
	for _, field := range fields {
		tokens[field] = true
	}
	return tokens
}
