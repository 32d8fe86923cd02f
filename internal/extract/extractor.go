package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/factlens/backend/internal/analysis"
	"github.com/factlens/backend/pkg/logger"
)

// Some image hosts and news sites reject bare Go fetchers, so requests carry
// a realistic browser user-agent.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const maxImageBytes = 10 << 20

type Extractor struct {
	httpClient   *http.Client
	maxTextChars int
}

func NewExtractor(timeout time.Duration, maxTextChars int) *Extractor {
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Extractor{
		httpClient:   &http.Client{Timeout: timeout},
		maxTextChars: maxTextChars,
	}
}

// Extract normalizes the request into analyzable content: images become
// embedded base64 data URIs, article URLs become concatenated heading and
// paragraph text, raw text passes through after validation.
func (e *Extractor) Extract(ctx context.Context, req analysis.Request) (analysis.ExtractedContent, error) {
	switch req.Type {
	case analysis.InputImage:
		return e.extractImage(ctx, req.ImageURL)
	case analysis.InputURL:
		return e.extractArticle(ctx, req.ArticleURL)
	case analysis.InputText:
		return extractText(req.Text)
	default:
		return analysis.ExtractedContent{}, &analysis.ValidationError{Message: fmt.Sprintf("unsupported input type %q", req.Type)}
	}
}

// extractImage fetches the remote image and embeds it as a data URI. The
// conversion is mandatory: the classifier must receive content it can consume
// without its own network call, so the result stays reproducible even if the
// remote URL later disappears.
func (e *Extractor) extractImage(ctx context.Context, sourceURL string) (analysis.ExtractedContent, error) {
	if strings.TrimSpace(sourceURL) == "" {
		return analysis.ExtractedContent{}, &analysis.ValidationError{Message: "image URL is required"}
	}

	resp, err := e.get(ctx, sourceURL)
	if err != nil {
		return analysis.ExtractedContent{}, &analysis.FetchError{URL: sourceURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return analysis.ExtractedContent{}, &analysis.FetchError{URL: sourceURL, Status: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return analysis.ExtractedContent{}, &analysis.ValidationError{
			Message: fmt.Sprintf("URL does not point to an image (content-type %q)", contentType),
		}
	}

	// Read one byte past the cap so an oversized image is rejected outright
	// instead of being truncated into a corrupt payload.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return analysis.ExtractedContent{}, &analysis.FetchError{URL: sourceURL, Err: err}
	}
	if len(body) > maxImageBytes {
		return analysis.ExtractedContent{}, &analysis.ValidationError{
			Message: fmt.Sprintf("image exceeds the %d MB limit", maxImageBytes>>20),
		}
	}

	encoded := base64.StdEncoding.EncodeToString(body)
	logger.Debug("Image converted to data URI",
		zap.String("url", sourceURL),
		zap.String("content_type", contentType),
		zap.Int("bytes", len(body)),
	)

	return analysis.ExtractedContent{
		Kind:    analysis.KindImage,
		Payload: fmt.Sprintf("data:%s;base64,%s", contentType, encoded),
	}, nil
}

// extractArticle fetches the page and concatenates the text of every h1, h2
// and p element in document order.
func (e *Extractor) extractArticle(ctx context.Context, articleURL string) (analysis.ExtractedContent, error) {
	if strings.TrimSpace(articleURL) == "" {
		return analysis.ExtractedContent{}, &analysis.ValidationError{Message: "article URL is required"}
	}

	resp, err := e.get(ctx, articleURL)
	if err != nil {
		return analysis.ExtractedContent{}, &analysis.FetchError{URL: articleURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return analysis.ExtractedContent{}, &analysis.FetchError{URL: articleURL, Status: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return analysis.ExtractedContent{}, &analysis.FetchError{URL: articleURL, Err: err}
	}

	var parts []string
	doc.Find("h1, h2, p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	articleText := strings.TrimSpace(strings.Join(parts, "\n\n"))
	if articleText == "" {
		return analysis.ExtractedContent{}, &analysis.ExtractionEmptyError{URL: articleURL}
	}

	articleText = e.truncateAtSentence(articleText)

	logger.Info("Article text extracted",
		zap.String("url", articleURL),
		zap.Int("blocks", len(parts)),
		zap.Int("chars", len(articleText)),
	)

	return analysis.ExtractedContent{Kind: analysis.KindText, Payload: articleText}, nil
}

func extractText(body string) (analysis.ExtractedContent, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return analysis.ExtractedContent{}, &analysis.ValidationError{Message: "text for analysis is required"}
	}
	return analysis.ExtractedContent{Kind: analysis.KindText, Payload: trimmed}, nil
}

// truncateAtSentence caps oversized article text at a sentence boundary so
// the classifier prompt is never cut mid-claim.
func (e *Extractor) truncateAtSentence(text string) string {
	if e.maxTextChars <= 0 || len(text) <= e.maxTextChars {
		return text
	}

	doc, err := prose.NewDocument(text, prose.WithExtraction(false), prose.WithTagging(false))
	if err != nil {
		logger.Warn("Sentence segmentation failed, truncating by bytes", zap.Error(err))
		return text[:e.maxTextChars]
	}

	var b strings.Builder
	for _, sentence := range doc.Sentences() {
		if b.Len()+len(sentence.Text)+1 > e.maxTextChars {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(sentence.Text)
	}

	if b.Len() == 0 {
		return text[:e.maxTextChars]
	}

	logger.Debug("Article text truncated",
		zap.Int("original_chars", len(text)),
		zap.Int("truncated_chars", b.Len()),
	)

	return b.String()
}

func (e *Extractor) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	return e.httpClient.Do(req)
}
