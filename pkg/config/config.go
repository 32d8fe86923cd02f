package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	LLM      LLMConfig
	Search   SearchConfig
	Extract  ExtractConfig
	LiveFeed LiveFeedConfig
	Quiz     QuizConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

type SearchConfig struct {
	GoogleAPIKey   string
	SearchEngineID string
	TimeoutSec     int
}

type ExtractConfig struct {
	TimeoutSec   int
	MaxTextChars int
}

type LiveFeedConfig struct {
	APIKey      string
	Category    string
	Lang        string
	Country     string
	MaxArticles int
	CacheTTLSec int
}

type QuizConfig struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/factlens")

	viper.SetEnvPrefix("FACTLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 60)
	viper.SetDefault("server.writeTimeout", 60)
	viper.SetDefault("server.bodyLimit", 10485760)

	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "factlens")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("llm.model", "mistral-ai/mistral-medium-2505")
	viper.SetDefault("llm.temperature", 0.1)
	viper.SetDefault("llm.maxTokens", 2000)
	viper.SetDefault("llm.timeoutSec", 30)

	viper.SetDefault("search.timeoutSec", 10)

	viper.SetDefault("extract.timeoutSec", 20)
	viper.SetDefault("extract.maxTextChars", 12000)

	viper.SetDefault("livefeed.category", "general")
	viper.SetDefault("livefeed.lang", "en")
	viper.SetDefault("livefeed.country", "us")
	viper.SetDefault("livefeed.maxArticles", 15)
	viper.SetDefault("livefeed.cacheTTLSec", 300)

	viper.SetDefault("quiz.model", "mistral-ai/mistral-medium-2505")
	viper.SetDefault("quiz.temperature", 0.9)
	viper.SetDefault("quiz.maxTokens", 2000)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
