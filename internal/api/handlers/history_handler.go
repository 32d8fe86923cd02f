package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/factlens/backend/internal/storage/mongo"
	"github.com/factlens/backend/pkg/logger"
)

type HistoryHandler struct {
	store *mongo.Client
}

func NewHistoryHandler(store *mongo.Client) *HistoryHandler {
	return &HistoryHandler{store: store}
}

func (h *HistoryHandler) GetHistory(c *fiber.Ctx) error {
	email := c.Get("X-User-Email")
	if email == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	entries, err := h.store.ReadHistory(c.Context(), email)
	if err != nil {
		logger.Error("Failed to read history", zap.String("email", email), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch history"})
	}

	return c.JSON(entries)
}

func (h *HistoryHandler) ClearHistory(c *fiber.Ctx) error {
	email := c.Get("X-User-Email")
	if email == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	if err := h.store.ClearHistory(c.Context(), email); err != nil {
		logger.Error("Failed to clear history", zap.String("email", email), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to clear history"})
	}

	return c.JSON(fiber.Map{"message": "History cleared"})
}
