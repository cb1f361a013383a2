package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/noterag/noterag/internal/domain"
	"github.com/noterag/noterag/internal/rag"
	"github.com/noterag/noterag/internal/telemetry"
	"go.uber.org/zap"
)

const (
	MaxTopK = 50

	// NoContextAnswer is returned when no note is similar enough to the question.
	NoContextAnswer = "No relevant notes were found for this question."

	qaSystemPrompt = "You are a personal knowledge assistant. Answer the user's question using only the notes provided. " +
		"If the notes do not contain the answer, say that you don't know. Answer in the language of the question."
)

// RAGConfig tunes retrieval and answering.
type RAGConfig struct {
	TopK        int
	Threshold   float64
	ContextSize int
	ChunkSize   int
}

// DefaultRAGConfig returns the default retrieval settings.
func DefaultRAGConfig() RAGConfig {
	return RAGConfig{
		TopK:        5,
		Threshold:   0.7,
		ContextSize: 3,
		ChunkSize:   rag.DefaultChunkSize,
	}
}

// RAGService indexes notes as embedded fragments and answers questions from them
type RAGService struct {
	notes     NoteRepositoryInterface
	fragments FragmentRepositoryInterface
	tx        TxRunner
	embedder  Embedder
	chat      ChatCompleter
	cfg       RAGConfig
	logger    *zap.Logger
}

// NewRAGService creates a new RAGService. chat may be nil, in which case
// answers are assembled from the retrieved fragments.
func NewRAGService(
	notes NoteRepositoryInterface,
	fragments FragmentRepositoryInterface,
	tx TxRunner,
	embedder Embedder,
	chat ChatCompleter,
	cfg RAGConfig,
	logger *zap.Logger,
) *RAGService {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultRAGConfig()
	if cfg.TopK <= 0 {
		cfg.TopK = def.TopK
	}
	if cfg.ContextSize <= 0 {
		cfg.ContextSize = def.ContextSize
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	return &RAGService{
		notes:     notes,
		fragments: fragments,
		tx:        tx,
		embedder:  embedder,
		chat:      chat,
		cfg:       cfg,
		logger:    logger,
	}
}

// IndexNote re-splits and re-embeds a note, replacing its fragments. Trashed
// or missing notes have their fragments removed.
func (s *RAGService) IndexNote(ctx context.Context, noteID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "RAGService.IndexNote", telemetry.SpanAttributes{NoteID: noteID, Operation: "index"})
	defer span.End()

	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return s.RemoveNote(ctx, noteID)
		}
		return err
	}
	if note.Deleted {
		return s.RemoveNote(ctx, noteID)
	}

	frags := rag.BuildFragments(note, s.cfg.ChunkSize)
	if len(frags) > 0 {
		texts := make([]string, len(frags))
		for i, f := range frags {
			texts[i] = f.Content
		}

		embeddings, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			span.SetError(err)
			return fmt.Errorf("embed note %d: %w", noteID, err)
		}
		if len(embeddings) != len(frags) {
			return fmt.Errorf("embed note %d: expected %d embeddings, got %d", noteID, len(frags), len(embeddings))
		}
		for i := range frags {
			frags[i].Embedding = embeddings[i]
		}
	}

	err = s.tx.WithTx(ctx, func(repos TxRepositories) error {
		current, err := repos.Notes().GetByID(ctx, noteID)
		if err != nil {
			return err
		}
		if current.Deleted {
			return repos.Fragments().DeleteByNote(ctx, noteID)
		}
		return repos.Fragments().ReplaceForNote(ctx, noteID, frags)
	})
	if err != nil {
		return fmt.Errorf("store fragments for note %d: %w", noteID, err)
	}

	s.logger.Debug("note indexed", zap.Int64("note_id", noteID), zap.Int("fragments", len(frags)))
	return nil
}

// RemoveNote drops a note's fragments from the index.
func (s *RAGService) RemoveNote(ctx context.Context, noteID int64) error {
	return s.fragments.DeleteByNote(ctx, noteID)
}

// Reindex rebuilds fragments for every live note and returns how many were indexed.
func (s *RAGService) Reindex(ctx context.Context) (int, error) {
	notes, err := s.notes.ListAll(ctx, false)
	if err != nil {
		return 0, err
	}

	indexed := 0
	for _, n := range notes {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}
		if err := s.IndexNote(ctx, n.ID); err != nil {
			return indexed, err
		}
		indexed++
	}
	return indexed, nil
}

// Search returns fragments similar to q with a score at or above the threshold.
// topK of zero selects the configured default.
func (s *RAGService) Search(ctx context.Context, q string, topK int) ([]domain.SearchHit, error) {
	ctx, span := telemetry.StartSpan(ctx, "RAGService.Search", telemetry.SpanAttributes{Operation: "search", Count: topK})
	defer span.End()

	q = strings.TrimSpace(q)
	if q == "" {
		return nil, domain.ErrEmptyQuery
	}
	if topK == 0 {
		topK = s.cfg.TopK
	}
	if topK < 1 || topK > MaxTopK {
		return nil, domain.ErrInvalidTopK
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, []string{q})
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrIndexUnavailable.Code, domain.ErrIndexUnavailable.Message, err)
	}
	if len(embeddings) != 1 {
		return nil, domain.ErrIndexUnavailable
	}

	hits, err := s.fragments.SearchSimilar(ctx, embeddings[0], topK)
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.SearchHit, 0, len(hits))
	for _, h := range hits {
		if h.Score >= s.cfg.Threshold {
			filtered = append(filtered, h)
		}
	}
	return filtered, nil
}

// Answer retrieves the best fragments for question and asks the chat model to
// answer from them. Without a model, or when the model fails, the fragments
// themselves are returned as the answer.
func (s *RAGService) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	ctx, span := telemetry.StartSpan(ctx, "RAGService.Answer", telemetry.SpanAttributes{Operation: "qa"})
	defer span.End()

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}

	hits, err := s.Search(ctx, question, s.cfg.TopK)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return &domain.Answer{Answer: NoContextAnswer, Sources: hits}, nil
	}

	contexts := hits
	if len(contexts) > s.cfg.ContextSize {
		contexts = contexts[:s.cfg.ContextSize]
	}

	if s.chat == nil {
		return &domain.Answer{Answer: joinContexts(contexts), Sources: contexts}, nil
	}

	answer, err := s.chat.Complete(ctx, qaSystemPrompt, buildPrompt(question, contexts))
	if err != nil || answer == "" {
		s.logger.Warn("chat completion failed, answering with retrieved notes", zap.Error(err))
		return &domain.Answer{Answer: joinContexts(contexts), Sources: contexts}, nil
	}

	return &domain.Answer{Answer: answer, Sources: contexts}, nil
}

func buildPrompt(question string, contexts []domain.SearchHit) string {
	var b strings.Builder
	b.WriteString("Notes:\n")
	for i, c := range contexts {
		fmt.Fprintf(&b, "[%d] %s\n%s\n\n", i+1, c.Title, c.Content)
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}

func joinContexts(contexts []domain.SearchHit) string {
	parts := make([]string, len(contexts))
	for i, c := range contexts {
		parts[i] = c.Content
	}
	return strings.Join(parts, "\n\n")
}
