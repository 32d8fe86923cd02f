package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/factlens/backend/internal/analysis"
	"github.com/factlens/backend/pkg/circuitbreaker"
	"github.com/factlens/backend/pkg/logger"
)

// Client calls the external inference service with the fixed fact-checking
// prompt contract. Classification is deliberately single-attempt: the service
// is costly and rate-limited, so failures surface immediately instead of
// being retried. A circuit breaker sheds load when the service is down.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.CircuitBreaker
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

func NewClient(cfg Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	cb := circuitbreaker.NewCircuitBreaker("classifier", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	logger.Info("Classifier client initialized",
		zap.String("model", cfg.Model),
		zap.Float32("temperature", cfg.Temperature),
	)

	return &Client{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		cb:          cb,
	}
}

// Classify requests a structured verdict for the extracted content and
// validates the response against the output contract. Schema violations are
// upstream errors, never silently defaulted.
func (c *Client) Classify(ctx context.Context, content analysis.ExtractedContent) (analysis.ClassificationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages, err := buildMessages(content)
	if err != nil {
		return analysis.ClassificationResult{}, err
	}

	var raw string
	err = c.cb.Execute(ctx, func() error {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: c.temperature,
			MaxTokens:   c.maxTokens,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			return upstreamError(err)
		}
		if len(resp.Choices) == 0 {
			return &analysis.EmptyResponseError{}
		}
		raw = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return analysis.ClassificationResult{}, err
	}

	result, err := parseClassification(raw)
	if err != nil {
		return analysis.ClassificationResult{}, err
	}

	logger.Debug("Content classified",
		zap.Bool("likely_fake", result.IsLikelyFake),
		zap.Int("confidence", result.Confidence),
		zap.Int("claims", len(result.MainClaims)),
	)

	return result, nil
}

func buildMessages(content analysis.ExtractedContent) ([]openai.ChatCompletionMessage, error) {
	system, userPrefix, ok := PromptFor(content.Kind)
	if !ok {
		return nil, &analysis.ValidationError{Message: fmt.Sprintf("no prompt for content kind %q", content.Kind)}
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
	}

	if content.Kind == analysis.KindImage {
		messages = append(messages, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: userPrefix},
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: content.Payload},
				},
			},
		})
	} else {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: fmt.Sprintf("%s %q", userPrefix, content.Payload),
		})
	}

	return messages, nil
}

// classificationPayload mirrors the contract with pointer fields so a missing
// required key is distinguishable from a zero value.
type classificationPayload struct {
	IsLikelyFake     *bool    `json:"isLikelyFake"`
	Confidence       *int     `json:"confidence"`
	Analysis         string   `json:"analysis"`
	ExtractedText    string   `json:"extractedText"`
	MainClaims       []string `json:"mainClaims"`
	Bias             string   `json:"bias"`
	Tone             string   `json:"tone"`
	LogicalFallacies []string `json:"logicalFallacies"`
	Sensationalism   string   `json:"sensationalism"`
	SearchQuery      string   `json:"searchQuery"`
}

func parseClassification(raw string) (analysis.ClassificationResult, error) {
	if strings.TrimSpace(raw) == "" {
		return analysis.ClassificationResult{}, &analysis.EmptyResponseError{}
	}

	var payload classificationPayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return analysis.ClassificationResult{}, &analysis.UpstreamError{
			Message: fmt.Sprintf("response is not valid JSON: %v", err),
		}
	}

	if payload.IsLikelyFake == nil {
		return analysis.ClassificationResult{}, &analysis.UpstreamError{Message: "response missing isLikelyFake"}
	}
	if payload.Confidence == nil {
		return analysis.ClassificationResult{}, &analysis.UpstreamError{Message: "response missing confidence"}
	}

	result := analysis.ClassificationResult{
		IsLikelyFake:     *payload.IsLikelyFake,
		Confidence:       *payload.Confidence,
		Analysis:         payload.Analysis,
		ExtractedText:    payload.ExtractedText,
		MainClaims:       payload.MainClaims,
		Bias:             payload.Bias,
		Tone:             payload.Tone,
		LogicalFallacies: payload.LogicalFallacies,
		Sensationalism:   payload.Sensationalism,
		SearchQuery:      payload.SearchQuery,
	}

	if err := result.Validate(); err != nil {
		return analysis.ClassificationResult{}, err
	}

	return result, nil
}

// Some models wrap JSON in a markdown fence even when asked for a bare
// object.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func upstreamError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &analysis.UpstreamError{Status: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	return &analysis.UpstreamError{Message: err.Error()}
}
