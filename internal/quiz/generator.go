package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/factlens/backend/internal/metrics"
	"github.com/factlens/backend/pkg/logger"
)

// Question is one "Fact or Fiction" statement. Two of the five generated
// statements are plausible fakes.
type Question struct {
	Title       string `json:"title"`
	IsFake      bool   `json:"isFake"`
	Explanation string `json:"explanation"`
}

var quizTopics = []string{
	"weird science discoveries", "unusual historical events", "strange animal behavior",
	"future technology predictions", "deep sea exploration", "space colonization facts",
	"common misconceptions", "bizarre world records", "cryptocurrency history",
	"AI capabilities", "archaeological mysteries", "sustainable energy breakthroughs",
	"human psychology experiments", "the solar system", "ancient civilizations",
}

const systemPrompt = "You are a creative assistant that generates unique 'Fact or Fiction' quiz questions in JSON format."

const promptTemplate = `Generate a "Fact or Fiction" quiz with exactly 5 unique questions based on the following themes: %s.

Instructions:
1. Create a JSON object with a single key "questions", containing an array of 5 unique objects.
2. Each object must have a "title" that is a short, factual-sounding statement.
3. Make 2 of the statements FAKE. They must be plausible but incorrect.
4. Make the other 3 statements REAL and verifiably true.
5. For each statement, add a boolean property "isFake" (true if the statement is false, false if it is true).
6. For each statement, add a string property "explanation" that clearly explains why the statement is true or false. If it's fake, the explanation should provide the correct fact.
7. CRITICAL: The statements must be distinct and not repetitive. They should be interesting and challenging.

Return ONLY the JSON object.`

// Generator produces quizzes with a single inference call. It is not part of
// the analysis pipeline and shares none of its state.
type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	rng         *rand.Rand
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

func NewGenerator(cfg Config) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2000
	}

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *Generator) Generate(ctx context.Context) ([]Question, error) {
	topics := g.pickTopics(3)
	prompt := fmt.Sprintf(promptTemplate, strings.Join(topics, ", "))

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("quiz generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("quiz generation returned no choices")
	}

	questions, err := parseQuestions(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	metrics.QuizGenerated.Inc()
	logger.Info("Quiz generated",
		zap.Strings("topics", topics),
		zap.Int("questions", len(questions)),
	)

	return questions, nil
}

func (g *Generator) pickTopics(n int) []string {
	shuffled := make([]string, len(quizTopics))
	copy(shuffled, quizTopics)
	g.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

// parseQuestions accepts either {"questions": [...]} or a bare array.
func parseQuestions(raw string) ([]Question, error) {
	var wrapped struct {
		Questions []Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil && len(wrapped.Questions) > 0 {
		return wrapped.Questions, nil
	}

	var bare []Question
	if err := json.Unmarshal([]byte(raw), &bare); err == nil && len(bare) > 0 {
		return bare, nil
	}

	return nil, fmt.Errorf("quiz response did not contain a valid question array")
}
