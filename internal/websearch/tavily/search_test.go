package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(apiKey, baseURL string) *Client {
	client := NewClient(apiKey)
	client.baseURL = baseURL
	return client
}

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tvly-test" {
			t.Errorf("Authorization = %q", auth)
		}

		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Query != "building code requirements" {
			t.Errorf("query = %q", req.Query)
		}
		if req.MaxResults != 2 {
			t.Errorf("max_results = %d, want 2", req.MaxResults)
		}

		resp := SearchResponse{
			Query: req.Query,
			Results: []SearchResult{
				{Title: "First", URL: "https://example.com/a", Content: "Result one", Score: 0.9},
				{Title: "Second", URL: "https://example.com/b", Content: "Result two", Score: 0.7},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := newTestClient("tvly-test", server.URL)

	results, err := client.Search(context.Background(), "building code requirements", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Title != "First" || results[0].URL != "https://example.com/a" {
		t.Errorf("first result = %+v", results[0])
	}
}

func TestClient_Search_TruncatesToMaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := SearchResponse{
			Results: []SearchResult{
				{Title: "First"}, {Title: "Second"}, {Title: "Third"},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := newTestClient("tvly-test", server.URL)

	results, err := client.Search(context.Background(), "query", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}

func TestClient_Search_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer server.Close()

	client := newTestClient("bad-key", server.URL)

	_, err := client.Search(context.Background(), "query", 2)
	if err == nil {
		t.Fatal("Search() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "bad status 401") {
		t.Errorf("Search() error = %v", err)
	}
}

func TestClient_Search_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := newTestClient("tvly-test", server.URL)

	_, err := client.Search(context.Background(), "query", 2)
	if err == nil {
		t.Fatal("Search() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to decode response") {
		t.Errorf("Search() error = %v", err)
	}
}
