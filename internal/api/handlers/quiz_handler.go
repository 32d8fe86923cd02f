package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/factlens/backend/internal/quiz"
	"github.com/factlens/backend/internal/storage/mongo"
	"github.com/factlens/backend/pkg/logger"
)

type QuizHandler struct {
	generator *quiz.Generator
	store     *mongo.Client
}

func NewQuizHandler(generator *quiz.Generator, store *mongo.Client) *QuizHandler {
	return &QuizHandler{generator: generator, store: store}
}

func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	questions, err := h.generator.Generate(c.Context())
	if err != nil {
		logger.Error("Quiz generation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate quiz.",
		})
	}

	return c.JSON(questions)
}

func (h *QuizHandler) SubmitScore(c *fiber.Ctx) error {
	email := c.Get("X-User-Email")
	if email == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	var req struct {
		Score          *int `json:"score"`
		TotalQuestions *int `json:"totalQuestions"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Score == nil || req.TotalQuestions == nil {
		return badRequest(c, "Invalid score data.")
	}

	if err := h.store.IncrementQuizCounters(c.Context(), email, *req.Score, *req.TotalQuestions); err != nil {
		logger.Error("Failed to save quiz score", zap.String("email", email), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save quiz score.",
		})
	}

	return c.JSON(fiber.Map{"message": "Quiz score saved successfully."})
}
