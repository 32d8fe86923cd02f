package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/factlens/backend/pkg/logger"
)

// Client caches live-feed headline batches so repeated feed loads do not
// re-hit the upstream news API while a batch is still fresh.
type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) SetHeadlines(ctx context.Context, key string, headlines interface{}, ttl time.Duration) error {
	data, err := json.Marshal(headlines)
	if err != nil {
		return fmt.Errorf("failed to marshal headlines: %w", err)
	}

	if err := c.client.Set(ctx, fmt.Sprintf("livefeed:%s", key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set headline cache: %w", err)
	}

	logger.Debug("Headlines cached", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (c *Client) GetHeadlines(ctx context.Context, key string, headlines interface{}) (bool, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf("livefeed:%s", key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get headline cache: %w", err)
	}

	if err := json.Unmarshal(data, headlines); err != nil {
		return false, fmt.Errorf("failed to unmarshal headlines: %w", err)
	}

	logger.Debug("Headline cache hit", zap.String("key", key))
	return true, nil
}
