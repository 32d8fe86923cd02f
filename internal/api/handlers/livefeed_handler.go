package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/factlens/backend/internal/livefeed"
	"github.com/factlens/backend/pkg/logger"
)

type LiveFeedHandler struct {
	feed           *livefeed.Client
	streamInterval time.Duration
}

func NewLiveFeedHandler(feed *livefeed.Client) *LiveFeedHandler {
	return &LiveFeedHandler{
		feed:           feed,
		streamInterval: time.Minute,
	}
}

func (h *LiveFeedHandler) GetHeadlines(c *fiber.Ctx) error {
	if !h.feed.Configured() {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Live feed API key is not configured on the server.",
		})
	}

	articles, err := h.feed.FetchHeadlines(c.Context())
	if err != nil {
		logger.Error("Failed to fetch live headlines", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to fetch live news.",
		})
	}

	return c.JSON(articles)
}

// StreamHeadlines pushes the current headline batch on connect and again at
// each refresh interval until the client disconnects.
func (h *LiveFeedHandler) StreamHeadlines(c *websocket.Conn) {
	logger.Info("Live feed stream opened")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		c.Close()
		logger.Info("Live feed stream closed")
	}()

	if err := h.pushHeadlines(c); err != nil {
		return
	}

	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := h.pushHeadlines(c); err != nil {
				return
			}
		}
	}
}

func (h *LiveFeedHandler) pushHeadlines(c *websocket.Conn) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	articles, err := h.feed.FetchHeadlines(ctx)
	if err != nil {
		logger.Warn("Live feed refresh failed", zap.Error(err))
		return c.WriteJSON(fiber.Map{"type": "error", "error": "Failed to fetch live news."})
	}

	return c.WriteJSON(fiber.Map{"type": "headlines", "articles": articles})
}
