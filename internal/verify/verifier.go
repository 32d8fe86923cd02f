package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/factlens/backend/internal/analysis"
	"github.com/factlens/backend/pkg/logger"
)

const defaultEndpoint = "https://www.googleapis.com/customsearch/v1"

// maxSources caps how many corroborating links a verdict carries.
const maxSources = 3

// Verifier looks up corroborating sources through the Google Custom Search
// API. It is best-effort by contract: any failure, including missing
// credentials, degrades to zero sources and never fails the pipeline.
type Verifier struct {
	apiKey     string
	engineID   string
	endpoint   string
	httpClient *http.Client
}

func NewVerifier(apiKey, engineID string, timeout time.Duration) *Verifier {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Verifier{
		apiKey:   apiKey,
		engineID: engineID,
		endpoint: defaultEndpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configured reports whether search credentials are present. Absence is a
// deployment choice, not a misconfiguration.
func (v *Verifier) Configured() bool {
	return v.apiKey != "" && v.engineID != ""
}

// FindSources returns up to three citations for the query. An empty query or
// missing credentials is a silent no-op.
func (v *Verifier) FindSources(ctx context.Context, query string) []analysis.SourceCitation {
	if query == "" || !v.Configured() {
		return nil
	}

	params := url.Values{}
	params.Set("key", v.apiKey)
	params.Set("cx", v.engineID)
	params.Set("q", query)
	params.Set("num", fmt.Sprintf("%d", maxSources))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		logger.Warn("Source search request build failed", zap.Error(err))
		return nil
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		logger.Warn("Source search failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("Source search returned non-OK status",
			zap.String("query", query),
			zap.Int("status", resp.StatusCode),
		)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn("Source search response read failed", zap.Error(err))
		return nil
	}

	var searchResp struct {
		Items []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &searchResp); err != nil {
		logger.Warn("Source search response parse failed", zap.Error(err))
		return nil
	}

	sources := make([]analysis.SourceCitation, 0, maxSources)
	for _, item := range searchResp.Items {
		if len(sources) >= maxSources {
			break
		}
		sources = append(sources, analysis.SourceCitation{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}

	logger.Info("Verification sources found",
		zap.String("query", query),
		zap.Int("count", len(sources)),
	)

	return sources
}
