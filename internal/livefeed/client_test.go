package livefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type memoryCache struct {
	data map[string][]Article
	sets int
	gets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]Article{}}
}

func (m *memoryCache) GetHeadlines(_ context.Context, key string, headlines interface{}) (bool, error) {
	m.gets++
	cached, ok := m.data[key]
	if !ok {
		return false, nil
	}
	*(headlines.(*[]Article)) = cached
	return true, nil
}

func (m *memoryCache) SetHeadlines(_ context.Context, key string, headlines interface{}, _ time.Duration) error {
	m.sets++
	m.data[key] = headlines.([]Article)
	return nil
}

const feedResponse = `{
	"articles": [
		{"title": "Headline one", "description": "d1", "url": "https://news.example/1", "source": {"name": "Example News"}},
		{"title": "Headline two", "description": "d2", "url": "https://news.example/2", "source": {"name": "Example News"}}
	]
}`

func TestFetchHeadlines(t *testing.T) {
	upstreamCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls++
		if r.URL.Query().Get("apikey") != "test-key" {
			t.Errorf("missing api key in request")
		}
		w.Write([]byte(feedResponse))
	}))
	defer server.Close()

	c := NewClient(Config{APIKey: "test-key", Category: "general", Lang: "en", Country: "us"}, nil)
	c.endpoint = server.URL

	articles, err := c.FetchHeadlines(context.Background())
	if err != nil {
		t.Fatalf("FetchHeadlines returned error: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("articles = %d, want 2", len(articles))
	}
	if articles[0].Source.Name != "Example News" {
		t.Errorf("source name = %q", articles[0].Source.Name)
	}
	if upstreamCalls != 1 {
		t.Errorf("upstream calls = %d, want 1", upstreamCalls)
	}
}

func TestFetchHeadlinesServedFromCache(t *testing.T) {
	upstreamCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls++
		w.Write([]byte(feedResponse))
	}))
	defer server.Close()

	cache := newMemoryCache()
	c := NewClient(Config{APIKey: "test-key"}, cache)
	c.endpoint = server.URL

	if _, err := c.FetchHeadlines(context.Background()); err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	if _, err := c.FetchHeadlines(context.Background()); err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}

	if upstreamCalls != 1 {
		t.Errorf("upstream calls = %d, want 1 (second fetch should hit the cache)", upstreamCalls)
	}
	if cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", cache.sets)
	}
}

func TestFetchHeadlinesUnconfigured(t *testing.T) {
	c := NewClient(Config{}, nil)

	if c.Configured() {
		t.Error("client without api key must not report configured")
	}
	if _, err := c.FetchHeadlines(context.Background()); err == nil {
		t.Error("FetchHeadlines must fail without an api key")
	}
}
