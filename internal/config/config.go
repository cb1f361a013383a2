package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"noterag-backups"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL       string `envconfig:"OPENAI_BASE_URL"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`
	ChatModel           string `envconfig:"CHAT_MODEL" default:"phi-4"`
	LLMMaxTokens        int    `envconfig:"LLM_MAX_TOKENS" default:"2048"`

	RAGTopK             int           `envconfig:"RAG_TOPK" default:"5"`
	SimilarityThreshold float64       `envconfig:"SIMILARITY_THRESHOLD" default:"0.7"`
	QAContextSize       int           `envconfig:"QA_CONTEXT_SIZE" default:"3"`
	ChunkSize           int           `envconfig:"CHUNK_SIZE" default:"500"`
	IndexInterval       time.Duration `envconfig:"INDEX_INTERVAL" default:"2s"`

	CORSOrigins    []string `envconfig:"CORS_ORIGINS" default:"*"`
	RateLimitRPS   float64  `envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateLimitBurst int      `envconfig:"RATE_LIMIT_BURST" default:"40"`
	MaxBodyBytes   int64    `envconfig:"MAX_BODY_BYTES" default:"1048576"`

	SentryDSN string `envconfig:"SENTRY_DSN"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("NOTERAG", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("invalid config: EMBEDDING_DIMENSIONS must be positive, got %d", c.EmbeddingDimensions)
	}
	if c.RAGTopK < 1 || c.RAGTopK > 50 {
		return fmt.Errorf("invalid config: RAG_TOPK must be between 1 and 50, got %d", c.RAGTopK)
	}
	if c.SimilarityThreshold < -1 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("invalid config: SIMILARITY_THRESHOLD must be between -1 and 1, got %v", c.SimilarityThreshold)
	}
	if c.QAContextSize < 1 {
		return fmt.Errorf("invalid config: QA_CONTEXT_SIZE must be positive, got %d", c.QAContextSize)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("invalid config: CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.IndexInterval <= 0 {
		return fmt.Errorf("invalid config: INDEX_INTERVAL must be positive, got %s", c.IndexInterval)
	}
	return nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

// TracesSampleRate samples every trace in development and 10% elsewhere.
func (c *Config) TracesSampleRate() float64 {
	if c.Environment == "development" {
		return 1.0
	}
	return 0.1
}
