package validation

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Config struct {
	MaxTextLength       int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

// Middleware rejects malformed analysis payloads before they reach the
// pipeline: wrong content type, oversized text, or URLs that are not http(s).
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxTextLength == 0 {
		cfg.MaxTextLength = 50000
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		contentType := c.Get("Content-Type")
		if contentType != "" && !isAllowed(contentType, cfg.AllowedContentTypes) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"error": "Unsupported content type",
			})
		}

		path := c.Path()

		if strings.HasSuffix(path, "/analyze/text") {
			var req struct {
				Text string `json:"text"`
			}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}
			if len(req.Text) > cfg.MaxTextLength {
				cfg.Logger.Warn("Oversized analysis text rejected",
					zap.String("ip", c.IP()),
					zap.Int("length", len(req.Text)),
				)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Text exceeds maximum length",
				})
			}
		}

		if strings.HasSuffix(path, "/analyze/url") || strings.HasSuffix(path, "/analyze/image") {
			var req struct {
				URL      string `json:"url"`
				ImageURL string `json:"imageUrl"`
			}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}
			raw := req.URL
			if raw == "" {
				raw = req.ImageURL
			}
			if raw != "" && !isHTTPURL(raw) {
				cfg.Logger.Warn("Non-HTTP URL rejected",
					zap.String("ip", c.IP()),
					zap.String("url", raw),
				)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "URL must use http or https",
				})
			}
		}

		return c.Next()
	}
}

func isAllowed(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}

func isHTTPURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}
