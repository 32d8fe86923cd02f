package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/factlens/backend/internal/analysis"
	"github.com/factlens/backend/pkg/logger"
)

type AnalyzeHandler struct {
	orchestrator *analysis.Orchestrator
}

func NewAnalyzeHandler(orchestrator *analysis.Orchestrator) *AnalyzeHandler {
	return &AnalyzeHandler{orchestrator: orchestrator}
}

func (h *AnalyzeHandler) AnalyzeImage(c *fiber.Ctx) error {
	var req struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.ImageURL == "" {
		return badRequest(c, "Image URL is required")
	}

	return h.run(c, analysis.NewImageRequest(req.ImageURL))
}

func (h *AnalyzeHandler) AnalyzeText(c *fiber.Ctx) error {
	var req struct {
		Text   string `json:"text"`
		Source string `json:"source"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Text == "" {
		return badRequest(c, "Text for analysis is required")
	}

	origin := analysis.OriginUser
	if req.Source == string(analysis.OriginLiveFeed) {
		origin = analysis.OriginLiveFeed
	}

	return h.run(c, analysis.NewTextRequest(req.Text, origin))
}

func (h *AnalyzeHandler) AnalyzeURL(c *fiber.Ctx) error {
	var req struct {
		URL string `json:"url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.URL == "" {
		return badRequest(c, "A valid URL is required")
	}

	return h.run(c, analysis.NewArticleURLRequest(req.URL))
}

func (h *AnalyzeHandler) run(c *fiber.Ctx, req analysis.Request) error {
	result, err := h.orchestrator.Run(c.Context(), req, actorFromRequest(c))
	if err != nil {
		return analysisError(c, err)
	}
	return c.JSON(result)
}

// actorFromRequest reads the caller identity placed by the upstream auth
// layer. Authentication itself is outside this service.
func actorFromRequest(c *fiber.Ctx) analysis.Actor {
	email := c.Get("X-User-Email")
	return analysis.Actor{
		Authenticated: email != "",
		UserID:        c.Get("X-User-ID"),
		UserEmail:     email,
		SaveHistory:   true,
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

// analysisError maps pipeline failures onto HTTP responses carrying the
// failing stage and the upstream message where safely available.
func analysisError(c *fiber.Ctx, err error) error {
	var validationErr *analysis.ValidationError
	var stageErr *analysis.StageError

	logger.Error("Analysis request failed", zap.Error(err))

	if errors.As(err, &validationErr) {
		return badRequest(c, validationErr.Message)
	}

	if errors.As(err, &stageErr) {
		status := fiber.StatusBadGateway

		if errors.As(stageErr.Err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": validationErr.Message,
				"stage": string(stageErr.Stage),
			})
		}

		var upstreamErr *analysis.UpstreamError
		if errors.As(stageErr.Err, &upstreamErr) && upstreamErr.Status >= 400 {
			status = upstreamErr.Status
		}

		return c.Status(status).JSON(fiber.Map{
			"error": stageErr.Err.Error(),
			"stage": string(stageErr.Stage),
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "An unknown error occurred.",
	})
}
