package admin

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/noterag/noterag/internal/config"
	"github.com/noterag/noterag/internal/database"
	"github.com/noterag/noterag/internal/logging"
	"github.com/noterag/noterag/internal/openai"
	"github.com/noterag/noterag/internal/rag"
	"github.com/noterag/noterag/internal/repository"
	"github.com/noterag/noterag/internal/service"
	"go.uber.org/zap"
)

// runtime bundles what every daemon command needs.
type runtime struct {
	cfg       *config.Config
	logger    *zap.Logger
	pool      *pgxpool.Pool
	notes     *repository.NoteRepository
	fragments *repository.FragmentRepository
	tx        *repository.TxRunner
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	pool, err := database.NewPool(ctx, database.Config{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("connected to database")

	return &runtime{
		cfg:       cfg,
		logger:    logger,
		pool:      pool,
		notes:     repository.NewNoteRepository(pool),
		fragments: repository.NewFragmentRepository(pool),
		tx:        repository.NewTxRunner(pool),
	}, nil
}

func (rt *runtime) Close() {
	rt.pool.Close()
	_ = rt.logger.Sync()
}

// models returns the embedder and chat model. Without an API key notes are
// embedded locally and answers fall back to the retrieved fragments.
func (rt *runtime) models() (service.Embedder, service.ChatCompleter) {
	if !rt.cfg.HasOpenAI() {
		rt.logger.Warn("OPENAI_API_KEY not set, using local hash embeddings without a chat model",
			zap.Int("dimensions", rt.cfg.EmbeddingDimensions))
		return rag.NewHashEmbedder(rt.cfg.EmbeddingDimensions), nil
	}

	client := openai.NewClientWithConfig(openai.Config{
		APIKey:              rt.cfg.OpenAIAPIKey,
		BaseURL:             rt.cfg.OpenAIBaseURL,
		EmbeddingModel:      rt.cfg.EmbeddingModel,
		EmbeddingDimensions: rt.cfg.EmbeddingDimensions,
		ChatModel:           rt.cfg.ChatModel,
		MaxTokens:           rt.cfg.LLMMaxTokens,
	})
	rt.logger.Info("using OpenAI-compatible models",
		zap.String("embedding_model", rt.cfg.EmbeddingModel),
		zap.String("chat_model", rt.cfg.ChatModel))
	return client, client
}

func (rt *runtime) ragService() *service.RAGService {
	embedder, chat := rt.models()
	return service.NewRAGService(rt.notes, rt.fragments, rt.tx, embedder, chat, service.RAGConfig{
		TopK:        rt.cfg.RAGTopK,
		Threshold:   rt.cfg.SimilarityThreshold,
		ContextSize: rt.cfg.QAContextSize,
		ChunkSize:   rt.cfg.ChunkSize,
	}, rt.logger)
}
