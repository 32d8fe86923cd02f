package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/factlens/backend/internal/analysis"
)

func TestExtractTextIdentity(t *testing.T) {
	e := NewExtractor(0, 0)

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Scientists confirm the moon is made of cheese.", "Scientists confirm the moon is made of cheese."},
		{"surrounding whitespace", "  breaking news  \n", "breaking news"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			content, err := e.Extract(context.Background(), analysis.NewTextRequest(tc.in, analysis.OriginUser))
			if err != nil {
				t.Fatalf("Extract returned error: %v", err)
			}
			if content.Kind != analysis.KindText {
				t.Errorf("kind = %q, want %q", content.Kind, analysis.KindText)
			}
			if content.Payload != tc.want {
				t.Errorf("payload = %q, want %q", content.Payload, tc.want)
			}
		})
	}
}

func TestExtractTextEmpty(t *testing.T) {
	e := NewExtractor(0, 0)

	_, err := e.Extract(context.Background(), analysis.NewTextRequest("   \n\t ", analysis.OriginUser))

	var validationErr *analysis.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestExtractImageProducesDataURI(t *testing.T) {
	imageBytes := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "image/png")
		w.Write(imageBytes)
	}))
	defer server.Close()

	e := NewExtractor(0, 0)
	content, err := e.Extract(context.Background(), analysis.NewImageRequest(server.URL))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if content.Kind != analysis.KindImage {
		t.Errorf("kind = %q, want %q", content.Kind, analysis.KindImage)
	}
	if !strings.HasPrefix(content.Payload, "data:image/png;base64,") {
		t.Errorf("payload does not start with data URI prefix: %q", content.Payload[:min(len(content.Payload), 40)])
	}
	if strings.Contains(content.Payload, server.URL) {
		t.Error("payload must never contain the original remote URL")
	}
	if !strings.Contains(gotUserAgent, "Mozilla") {
		t.Errorf("expected browser user-agent, got %q", gotUserAgent)
	}
}

func TestExtractImageRejectsNonImageContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>not an image</body></html>"))
	}))
	defer server.Close()

	e := NewExtractor(0, 0)
	_, err := e.Extract(context.Background(), analysis.NewImageRequest(server.URL))

	var validationErr *analysis.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestExtractImageRejectsOversizedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(make([]byte, maxImageBytes+1))
	}))
	defer server.Close()

	e := NewExtractor(0, 0)
	_, err := e.Extract(context.Background(), analysis.NewImageRequest(server.URL))

	var validationErr *analysis.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("oversized image must be rejected, not truncated; got %v", err)
	}
}

func TestExtractImageFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	e := NewExtractor(0, 0)
	_, err := e.Extract(context.Background(), analysis.NewImageRequest(server.URL))

	var fetchErr *analysis.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Status != http.StatusNotFound {
		t.Errorf("status = %d, want %d", fetchErr.Status, http.StatusNotFound)
	}
}

func TestExtractArticleConcatenatesHeadingsAndParagraphs(t *testing.T) {
	page := `<html><body>
		<h1>Headline</h1>
		<div>skipped div text</div>
		<p>First paragraph.</p>
		<h2>Subheading</h2>
		<p>Second paragraph.</p>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}))
	defer server.Close()

	e := NewExtractor(0, 0)
	content, err := e.Extract(context.Background(), analysis.NewArticleURLRequest(server.URL))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	want := "Headline\n\nFirst paragraph.\n\nSubheading\n\nSecond paragraph."
	if content.Payload != want {
		t.Errorf("payload = %q, want %q", content.Payload, want)
	}
	if strings.Contains(content.Payload, "skipped div text") {
		t.Error("payload must only contain h1/h2/p text")
	}
}

func TestExtractArticleEmptyPage(t *testing.T) {
	cases := []struct {
		name string
		page string
	}{
		{"no matching elements", `<html><body><div>only divs here</div></body></html>`},
		{"whitespace only", `<html><body><h1>   </h1><p>  </p></body></html>`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.Write([]byte(tc.page))
			}))
			defer server.Close()

			e := NewExtractor(0, 0)
			_, err := e.Extract(context.Background(), analysis.NewArticleURLRequest(server.URL))

			var emptyErr *analysis.ExtractionEmptyError
			if !errors.As(err, &emptyErr) {
				t.Fatalf("expected ExtractionEmptyError, got %v", err)
			}
		})
	}
}

func TestExtractArticleFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	e := NewExtractor(0, 0)
	_, err := e.Extract(context.Background(), analysis.NewArticleURLRequest(server.URL))

	var fetchErr *analysis.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}

func TestTruncateAtSentenceKeepsWholeSentences(t *testing.T) {
	e := NewExtractor(0, 50)

	text := "The first sentence is here. The second sentence follows it. The third one is never kept."
	got := e.truncateAtSentence(text)

	if len(got) > 50 {
		t.Errorf("truncated text is %d chars, want <= 50", len(got))
	}
	if !strings.HasSuffix(got, ".") {
		t.Errorf("truncated text should end at a sentence boundary, got %q", got)
	}
}

func TestTruncateAtSentenceNoopWhenShort(t *testing.T) {
	e := NewExtractor(0, 1000)

	text := "Short enough already."
	if got := e.truncateAtSentence(text); got != text {
		t.Errorf("truncateAtSentence modified short text: %q", got)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
