package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultEmbeddingModel      = "text-embedding-3-small"
	DefaultEmbeddingDimensions = 1536
	DefaultChatModel           = "phi-4"
	DefaultMaxTokens           = 2048
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when an embedding has the wrong length
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoChoices is returned when the chat model returns nothing
	ErrNoChoices = errors.New("no completion choices returned")
)

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatAPI defines the interface for chat completions
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, system, user string) (string, error)
}

// Client wraps an OpenAI-compatible API
type Client struct {
	embeddings EmbeddingAPI
	chat       ChatAPI
	dimensions int
}

type OpenAIAdapter struct {
	client         *openai.Client
	embeddingModel openai.EmbeddingModel
	chatModel      string
	maxTokens      int
}

func NewOpenAIAdapter(cfg Config) *OpenAIAdapter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &OpenAIAdapter{
		client:         openai.NewClientWithConfig(clientCfg),
		embeddingModel: openai.EmbeddingModel(embeddingModel),
		chatModel:      chatModel,
		maxTokens:      maxTokens,
	}
}

// CreateEmbeddings calls the embeddings endpoint with every text in one request.
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: a.embeddingModel,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// CreateChatCompletion sends a system and a user message and returns the first choice.
func (a *OpenAIAdapter) CreateChatCompletion(ctx context.Context, system, user string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     a.chatModel,
		MaxTokens: a.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}

type Config struct {
	APIKey              string
	BaseURL             string
	EmbeddingModel      string
	EmbeddingDimensions int
	ChatModel           string
	MaxTokens           int
}

// NewClient creates a new client against the public OpenAI API using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	adapter := NewOpenAIAdapter(cfg)
	return &Client{
		embeddings: adapter,
		chat:       adapter,
		dimensions: dimensions,
	}
}

// Dimensions returns the embedding length this client enforces.
func (c *Client) Dimensions() int {
	return c.dimensions
}

// EmbedBatch generates one embedding per text, preserving order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for _, t := range texts {
		if t == "" {
			return nil, ErrEmptyText
		}
	}

	embeddings, err := c.embeddings.CreateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}

	for _, e := range embeddings {
		if len(e) != c.dimensions {
			return nil, fmt.Errorf("%w: expected %d, got %d", ErrWrongDimensions, c.dimensions, len(e))
		}
	}

	return embeddings, nil
}

// Complete asks the chat model for an answer.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if strings.TrimSpace(user) == "" {
		return "", ErrEmptyText
	}

	answer, err := c.chat.CreateChatCompletion(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	return strings.TrimSpace(answer), nil
}
