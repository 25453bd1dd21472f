package websearch

import (
	"context"
	"fmt"

	"floorplan-ai/internal/websearch/tavily"
)

// Result represents a single web search result.
type Result struct {
	Title   string
	Content string
	URL     string
}

// Searcher defines the interface for web search providers.
type Searcher interface {
	// Search returns up to maxResults ranked results for the query.
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// Provider identifies a supported web search vendor.
type Provider string

const (
	// TavilyProvider is the Tavily search API (https://tavily.com).
	TavilyProvider Provider = "tavily"
)

// NewSearcher creates a Searcher for the given provider.
func NewSearcher(provider Provider, apiKey string) (Searcher, error) {
	switch provider {
	case TavilyProvider:
		return &tavilySearcher{client: tavily.NewClient(apiKey)}, nil
	default:
		return nil, fmt.Errorf("unsupported web search provider: %q", provider)
	}
}

// Disabled is a Searcher that returns no results. Used when no provider
// API key is configured, so hybrid answers come from the document alone.
type Disabled struct{}

func (Disabled) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	return nil, nil
}

// tavilySearcher adapts the Tavily client to the Searcher interface.
type tavilySearcher struct {
	client *tavily.Client
}

func (s *tavilySearcher) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	items, err := s.client.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(items))
	for _, item := range items {
		results = append(results, Result{
			Title:   item.Title,
			Content: item.Content,
			URL:     item.URL,
		})
	}
	return results, nil
}
