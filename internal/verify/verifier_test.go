package verify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const searchResponse = `{
	"items": [
		{"title": "First", "link": "https://example.org/1", "snippet": "one"},
		{"title": "Second", "link": "https://example.org/2", "snippet": "two"},
		{"title": "Third", "link": "https://example.org/3", "snippet": "three"},
		{"title": "Fourth", "link": "https://example.org/4", "snippet": "four"}
	]
}`

func newTestVerifier(serverURL string) *Verifier {
	v := NewVerifier("test-key", "test-cx", 0)
	v.endpoint = serverURL
	return v
}

func TestFindSourcesCapsAtThree(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "moon composition" {
			t.Errorf("unexpected query %q", r.URL.Query().Get("q"))
		}
		w.Write([]byte(searchResponse))
	}))
	defer server.Close()

	v := newTestVerifier(server.URL)
	sources := v.FindSources(context.Background(), "moon composition")

	if len(sources) != 3 {
		t.Fatalf("sources = %d, want 3", len(sources))
	}
	if sources[0].Title != "First" || sources[0].URL != "https://example.org/1" {
		t.Errorf("unexpected first source: %+v", sources[0])
	}
}

func TestFindSourcesSearchFailureYieldsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	v := newTestVerifier(server.URL)
	sources := v.FindSources(context.Background(), "anything")

	if len(sources) != 0 {
		t.Errorf("sources = %d, want 0 on upstream failure", len(sources))
	}
}

func TestFindSourcesMalformedResponseYieldsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	v := newTestVerifier(server.URL)
	sources := v.FindSources(context.Background(), "anything")

	if len(sources) != 0 {
		t.Errorf("sources = %d, want 0 on malformed response", len(sources))
	}
}

func TestFindSourcesWithoutCredentialsIsSilentNoop(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	v := NewVerifier("", "", 0)
	v.endpoint = server.URL

	sources := v.FindSources(context.Background(), "anything")

	if len(sources) != 0 {
		t.Errorf("sources = %d, want 0", len(sources))
	}
	if requests != 0 {
		t.Errorf("no request must be made without credentials, got %d", requests)
	}
}

func TestFindSourcesEmptyQuery(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	v := newTestVerifier(server.URL)
	sources := v.FindSources(context.Background(), "")

	if len(sources) != 0 || requests != 0 {
		t.Error("empty query must be a silent no-op")
	}
}

func TestConfigured(t *testing.T) {
	if NewVerifier("", "", 0).Configured() {
		t.Error("verifier without credentials must not report configured")
	}
	if !NewVerifier("k", "cx", 0).Configured() {
		t.Error("verifier with credentials must report configured")
	}
}
