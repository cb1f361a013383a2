package service

import (
	"context"

	"github.com/noterag/noterag/internal/domain"
	"github.com/noterag/noterag/internal/pagination"
)

// NoteRepositoryInterface defines the repository interface for note persistence
type NoteRepositoryInterface interface {
	Create(ctx context.Context, n *domain.Note) error
	GetByID(ctx context.Context, id int64) (*domain.Note, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Note, error)
	Update(ctx context.Context, n *domain.Note) error
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	HardDelete(ctx context.Context, id int64) error
	PurgeTrash(ctx context.Context) (int64, error)
	PurgeAll(ctx context.Context) (int64, error)
	List(ctx context.Context, page pagination.Page, deleted bool) ([]*domain.Note, int64, error)
	ListAll(ctx context.Context, includeDeleted bool) ([]*domain.Note, error)
	SearchLike(ctx context.Context, q string, limit int) ([]*domain.Note, error)
}

// FragmentRepositoryInterface defines the repository interface for indexed fragments
type FragmentRepositoryInterface interface {
	ReplaceForNote(ctx context.Context, noteID int64, frags []*domain.Fragment) error
	DeleteByNote(ctx context.Context, noteID int64) error
	SearchSimilar(ctx context.Context, embedding []float32, topK int) ([]domain.SearchHit, error)
	Count(ctx context.Context) (int64, error)
}

// TxRepositories provides transaction-bound repositories.
type TxRepositories interface {
	Notes() NoteRepositoryInterface
	Fragments() FragmentRepositoryInterface
}

// TxRunner executes a function within a transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}

// IndexQueue accepts indexing work for the background worker.
type IndexQueue interface {
	Enqueue(job *domain.IndexJob)
}

// KeywordIndex finds notes by keyword, best match first.
type KeywordIndex interface {
	Search(ctx context.Context, query string, limit int) ([]int64, error)
}

// Embedder turns texts into vectors.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatCompleter answers a prompt with a chat model.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ObjectStore persists backup snapshots.
type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) error
}
