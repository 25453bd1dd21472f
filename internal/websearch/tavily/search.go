package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const searchURL = "https://api.tavily.com/search"

// Client is a client for the Tavily search API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a new Tavily client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: searchURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// SearchRequest represents the request payload for the Tavily search API.
type SearchRequest struct {
	Query         string `json:"query"`
	Topic         string `json:"topic"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

// SearchResult represents a single result in the Tavily search response.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// SearchResponse represents the response from the Tavily search API.
type SearchResponse struct {
	Query   string         `json:"query"`
	Answer  string         `json:"answer"`
	Results []SearchResult `json:"results"`
}

// Search executes a web search and returns up to maxResults results.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	payload := SearchRequest{
		Query:      query,
		Topic:      "general",
		MaxResults: maxResults,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := searchResp.Results
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}
