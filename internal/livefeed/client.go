package livefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/factlens/backend/internal/metrics"
	"github.com/factlens/backend/pkg/logger"
	"github.com/factlens/backend/pkg/retry"
	"github.com/factlens/backend/pkg/utils"
)

const defaultEndpoint = "https://gnews.io/api/v4/top-headlines"

// Article is one auto-ingested headline. Live-feed analyses are explicitly
// excluded from history persistence.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

// HeadlineCache is the optional cache in front of the news API.
type HeadlineCache interface {
	GetHeadlines(ctx context.Context, key string, headlines interface{}) (bool, error)
	SetHeadlines(ctx context.Context, key string, headlines interface{}, ttl time.Duration) error
}

type Client struct {
	apiKey      string
	endpoint    string
	category    string
	lang        string
	country     string
	maxArticles int
	cacheTTL    time.Duration
	cache       HeadlineCache
	httpClient  *http.Client
	retryConfig retry.Config
}

type Config struct {
	APIKey      string
	Category    string
	Lang        string
	Country     string
	MaxArticles int
	CacheTTL    time.Duration
}

// NewClient builds a headline client. cache may be nil; the feed then always
// goes upstream. The feed endpoint is read-only and retry-friendly, unlike
// the analysis stages.
func NewClient(cfg Config, cache HeadlineCache) *Client {
	if cfg.MaxArticles == 0 {
		cfg.MaxArticles = 15
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	return &Client{
		apiKey:      cfg.APIKey,
		endpoint:    defaultEndpoint,
		category:    cfg.Category,
		lang:        cfg.Lang,
		country:     cfg.Country,
		maxArticles: cfg.MaxArticles,
		cacheTTL:    cfg.CacheTTL,
		cache:       cache,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		retryConfig: retry.Config{
			MaxAttempts:    3,
			InitialDelay:   500 * time.Millisecond,
			MaxDelay:       5 * time.Second,
			Multiplier:     2.0,
			JitterFraction: 0.1,
			Logger:         logger.GetLogger(),
		},
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// FetchHeadlines returns the current top-headlines batch, served from cache
// while fresh.
func (c *Client) FetchHeadlines(ctx context.Context) ([]Article, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("live feed API key is not configured")
	}

	cacheKey := utils.HashString(fmt.Sprintf("%s:%s:%s:%d", c.category, c.lang, c.country, c.maxArticles))

	if c.cache != nil {
		var cached []Article
		hit, err := c.cache.GetHeadlines(ctx, cacheKey, &cached)
		if err != nil {
			logger.Warn("Headline cache read failed", zap.Error(err))
		}
		if hit {
			metrics.LiveFeedCacheHits.Inc()
			return cached, nil
		}
	}
	metrics.LiveFeedCacheMisses.Inc()

	articles, err := retry.DoWithResult(ctx, c.retryConfig, func() ([]Article, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.SetHeadlines(ctx, cacheKey, articles, c.cacheTTL); err != nil {
			logger.Warn("Headline cache write failed", zap.Error(err))
		}
	}

	logger.Info("Live headlines fetched", zap.Int("count", len(articles)))

	return articles, nil
}

func (c *Client) fetch(ctx context.Context) ([]Article, error) {
	params := url.Values{}
	params.Set("category", c.category)
	params.Set("lang", c.lang)
	params.Set("country", c.country)
	params.Set("max", fmt.Sprintf("%d", c.maxArticles))
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build headlines request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch headlines: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("news API returned status %d: %s", resp.StatusCode, string(body))
	}

	var feedResp struct {
		Articles []Article `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&feedResp); err != nil {
		return nil, fmt.Errorf("failed to decode headlines: %w", err)
	}

	return feedResp.Articles, nil
}
