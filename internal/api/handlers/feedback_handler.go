package handlers

import (
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/factlens/backend/internal/metrics"
	"github.com/factlens/backend/internal/storage/models"
	"github.com/factlens/backend/internal/storage/mongo"
	"github.com/factlens/backend/pkg/logger"
)

type FeedbackHandler struct {
	store *mongo.Client
}

func NewFeedbackHandler(store *mongo.Client) *FeedbackHandler {
	return &FeedbackHandler{store: store}
}

func (h *FeedbackHandler) SubmitFeedback(c *fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	email := c.Get("X-User-Email")
	if userID == "" || email == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	var req struct {
		AnalysisID int64  `json:"analysisId"`
		Feedback   string `json:"feedback"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.AnalysisID == 0 || req.Feedback == "" {
		return badRequest(c, "Analysis ID and feedback are required.")
	}
	if req.Feedback != models.FeedbackHelpful && req.Feedback != models.FeedbackUnhelpful {
		return badRequest(c, "Feedback must be 'helpful' or 'unhelpful'.")
	}

	record := models.FeedbackRecord{
		AnalysisID: req.AnalysisID,
		UserID:     userID,
		UserEmail:  email,
		Feedback:   req.Feedback,
		CreatedAt:  time.Now(),
	}

	if err := h.store.InsertFeedback(c.Context(), record); err != nil {
		logger.Error("Failed to insert feedback", zap.Int64("analysis_id", req.AnalysisID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "An error occurred while submitting feedback.",
		})
	}

	metrics.FeedbackTotal.WithLabelValues(req.Feedback).Inc()

	return c.JSON(fiber.Map{"message": "Thank you for your feedback!"})
}

// ListFeedback pages through all feedback for the back office. Records whose
// original analysis was cleared come back without an analysis attached; the
// client renders those as "original analysis not found".
func (h *FeedbackHandler) ListFeedback(c *fiber.Ctx) error {
	if c.Get("X-User-Role") != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 5)

	records, total, err := h.store.ListFeedback(c.Context(), page, limit)
	if err != nil {
		logger.Error("Failed to list feedback", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "An error occurred while fetching feedback.",
		})
	}

	return c.JSON(fiber.Map{
		"feedbacks":   records,
		"totalPages":  int(math.Ceil(float64(total) / float64(limit))),
		"currentPage": page,
	})
}
