package websearch

import "testing"

func TestNewSearcher(t *testing.T) {
	searcher, err := NewSearcher(TavilyProvider, "tvly-test")
	if err != nil {
		t.Fatalf("NewSearcher() error = %v", err)
	}
	if searcher == nil {
		t.Fatal("NewSearcher() returned nil searcher")
	}
}

func TestNewSearcher_UnsupportedProvider(t *testing.T) {
	_, err := NewSearcher(Provider("bing"), "key")
	if err == nil {
		t.Fatal("NewSearcher() expected error for unsupported provider")
	}
}
