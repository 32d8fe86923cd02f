package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/factlens/backend/internal/analysis"
	"github.com/factlens/backend/internal/api/handlers"
	"github.com/factlens/backend/internal/cache/redis"
	"github.com/factlens/backend/internal/classify"
	"github.com/factlens/backend/internal/extract"
	"github.com/factlens/backend/internal/livefeed"
	"github.com/factlens/backend/internal/metrics"
	ratelimitmw "github.com/factlens/backend/internal/middleware/ratelimit"
	securitymw "github.com/factlens/backend/internal/middleware/security"
	validationmw "github.com/factlens/backend/internal/middleware/validation"
	"github.com/factlens/backend/internal/quiz"
	"github.com/factlens/backend/internal/storage/mongo"
	"github.com/factlens/backend/internal/verify"
	"github.com/factlens/backend/pkg/config"
	appLogger "github.com/factlens/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting misinformation analysis API server")

	metrics.Init()

	mongoClient, err := mongo.NewClient(cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		appLogger.Fatal("Failed to create MongoDB client", zap.Error(err))
	}
	defer mongoClient.Close()

	var cacheClient *redis.Client
	cacheClient, err = redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		appLogger.Warn("Redis unavailable, live feed runs uncached", zap.Error(err))
		cacheClient = nil
	} else {
		defer cacheClient.Close()
	}

	extractor := extract.NewExtractor(
		time.Duration(cfg.Extract.TimeoutSec)*time.Second,
		cfg.Extract.MaxTextChars,
	)

	classifier := classify.NewClient(classify.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
	})

	verifier := verify.NewVerifier(
		cfg.Search.GoogleAPIKey,
		cfg.Search.SearchEngineID,
		time.Duration(cfg.Search.TimeoutSec)*time.Second,
	)
	if !verifier.Configured() {
		appLogger.Info("Search credentials not configured, analyses will carry no verification sources")
	}

	orchestrator := analysis.NewOrchestrator(extractor, classifier, verifier, mongoClient)

	var headlineCache livefeed.HeadlineCache
	if cacheClient != nil {
		headlineCache = cacheClient
	}
	feedClient := livefeed.NewClient(livefeed.Config{
		APIKey:      cfg.LiveFeed.APIKey,
		Category:    cfg.LiveFeed.Category,
		Lang:        cfg.LiveFeed.Lang,
		Country:     cfg.LiveFeed.Country,
		MaxArticles: cfg.LiveFeed.MaxArticles,
		CacheTTL:    time.Duration(cfg.LiveFeed.CacheTTLSec) * time.Second,
	}, headlineCache)

	quizGenerator := quiz.NewGenerator(quiz.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.Quiz.Model,
		Temperature: cfg.Quiz.Temperature,
		MaxTokens:   cfg.Quiz.MaxTokens,
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	rateLimiter := ratelimitmw.New(ratelimitmw.Config{
		MaxRequestsPerMinute: 60,
		Logger:               appLogger.GetLogger(),
	})
	defer rateLimiter.Stop()

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID, X-User-Email, X-User-Role",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))
	app.Use(securitymw.HeadersMiddleware(securitymw.HeadersConfig{}))
	app.Use(rateLimiter.Middleware())
	app.Use(validationmw.Middleware(validationmw.Config{
		Logger: appLogger.GetLogger(),
	}))

	analyzeHandler := handlers.NewAnalyzeHandler(orchestrator)
	historyHandler := handlers.NewHistoryHandler(mongoClient)
	feedbackHandler := handlers.NewFeedbackHandler(mongoClient)
	quizHandler := handlers.NewQuizHandler(quizGenerator, mongoClient)
	liveFeedHandler := handlers.NewLiveFeedHandler(feedClient)

	api := app.Group("/api/v1")

	api.Post("/analyze/image", analyzeHandler.AnalyzeImage)
	api.Post("/analyze/text", analyzeHandler.AnalyzeText)
	api.Post("/analyze/url", analyzeHandler.AnalyzeURL)

	api.Get("/history", historyHandler.GetHistory)
	api.Delete("/history", historyHandler.ClearHistory)

	api.Post("/analysis-feedback", feedbackHandler.SubmitFeedback)
	api.Get("/admin/feedback", feedbackHandler.ListFeedback)

	api.Get("/quiz", quizHandler.GenerateQuiz)
	api.Post("/quiz-score", quizHandler.SubmitScore)

	api.Get("/live-news", liveFeedHandler.GetHeadlines)
	api.Get("/live-news/stream", websocket.New(liveFeedHandler.StreamHeadlines))

	api.Get("/metrics", metrics.MetricsHandler())

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
