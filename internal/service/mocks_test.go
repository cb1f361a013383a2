package service

import (
	"context"
	"sync"

	"github.com/noterag/noterag/internal/domain"
	"github.com/noterag/noterag/internal/pagination"
	"github.com/stretchr/testify/mock"
)

// MockNoteRepository is a mock implementation of NoteRepositoryInterface
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Create(ctx context.Context, n *domain.Note) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNoteRepository) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Note, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Note), args.Error(1)
}

func (m *MockNoteRepository) Update(ctx context.Context, n *domain.Note) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNoteRepository) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNoteRepository) Restore(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNoteRepository) HardDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNoteRepository) PurgeTrash(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNoteRepository) PurgeAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNoteRepository) List(ctx context.Context, page pagination.Page, deleted bool) ([]*domain.Note, int64, error) {
	args := m.Called(ctx, page, deleted)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Note), args.Get(1).(int64), args.Error(2)
}

func (m *MockNoteRepository) ListAll(ctx context.Context, includeDeleted bool) ([]*domain.Note, error) {
	args := m.Called(ctx, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Note), args.Error(1)
}

func (m *MockNoteRepository) SearchLike(ctx context.Context, q string, limit int) ([]*domain.Note, error) {
	args := m.Called(ctx, q, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Note), args.Error(1)
}

// MockFragmentRepository is a mock implementation of FragmentRepositoryInterface
type MockFragmentRepository struct {
	mock.Mock
}

func (m *MockFragmentRepository) ReplaceForNote(ctx context.Context, noteID int64, frags []*domain.Fragment) error {
	args := m.Called(ctx, noteID, frags)
	return args.Error(0)
}

func (m *MockFragmentRepository) DeleteByNote(ctx context.Context, noteID int64) error {
	args := m.Called(ctx, noteID)
	return args.Error(0)
}

func (m *MockFragmentRepository) SearchSimilar(ctx context.Context, embedding []float32, topK int) ([]domain.SearchHit, error) {
	args := m.Called(ctx, embedding, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchHit), args.Error(1)
}

func (m *MockFragmentRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// mockTxRunner runs fn directly against the given repositories
type mockTxRunner struct {
	notes     *MockNoteRepository
	fragments *MockFragmentRepository
}

func (r *mockTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	return fn(r)
}

func (r *mockTxRunner) Notes() NoteRepositoryInterface {
	return r.notes
}

func (r *mockTxRunner) Fragments() FragmentRepositoryInterface {
	return r.fragments
}

// recordingQueue captures enqueued jobs
type recordingQueue struct {
	mu   sync.Mutex
	jobs []*domain.IndexJob
}

func (q *recordingQueue) Enqueue(job *domain.IndexJob) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
}

func (q *recordingQueue) ops() []domain.IndexOp {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]domain.IndexOp, len(q.jobs))
	for i, j := range q.jobs {
		out[i] = j.Op
	}
	return out
}

// MockKeywordIndex is a mock implementation of KeywordIndex
type MockKeywordIndex struct {
	mock.Mock
}

func (m *MockKeywordIndex) Search(ctx context.Context, query string, limit int) ([]int64, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockEmbedder is a mock implementation of Embedder
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

// MockChat is a mock implementation of ChatCompleter
type MockChat struct {
	mock.Mock
}

func (m *MockChat) Complete(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}
