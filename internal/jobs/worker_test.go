package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/noterag/noterag/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockNoteGetter is a mock implementation of NoteGetter
type MockNoteGetter struct {
	mock.Mock
}

func (m *MockNoteGetter) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

// MockFragmentIndexer is a mock implementation of FragmentIndexer
type MockFragmentIndexer struct {
	mock.Mock
}

func (m *MockFragmentIndexer) IndexNote(ctx context.Context, noteID int64) error {
	args := m.Called(ctx, noteID)
	return args.Error(0)
}

func (m *MockFragmentIndexer) RemoveNote(ctx context.Context, noteID int64) error {
	args := m.Called(ctx, noteID)
	return args.Error(0)
}

// MockKeywordIndexer is a mock implementation of KeywordIndexer
type MockKeywordIndexer struct {
	mock.Mock
}

func (m *MockKeywordIndexer) Index(ctx context.Context, note *domain.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockKeywordIndexer) Remove(ctx context.Context, noteID int64) error {
	args := m.Called(ctx, noteID)
	return args.Error(0)
}

func job(id int64, op domain.IndexOp) *domain.IndexJob {
	return domain.NewIndexJob(id, op, time.Now())
}

// TestWorker_StartStop tests the worker start and stop functionality
func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(250 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestWorker_StopFlushes tests that Stop runs one final pass
func TestWorker_StopFlushes(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, time.Hour, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(context.Background())
	}()

	worker.Stop()
	wg.Wait()

	mockProcessor.AssertNumberOfCalls(t, "ProcessJobs", 1)
}

// TestWorker_ContextCancellation tests worker stops on context cancellation
func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(errors.New("transient"))

	worker := NewWorker(mockProcessor, 50*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)

	cancel()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

func TestMemoryQueue_DrainOrderAndLimit(t *testing.T) {
	q := NewMemoryQueue()
	q.Enqueue(job(1, domain.IndexOpUpsert))
	q.Enqueue(job(2, domain.IndexOpUpsert))
	q.Enqueue(job(3, domain.IndexOpRemove))
	q.Enqueue(nil)
	q.Enqueue(job(0, domain.IndexOpUpsert))

	assert.Equal(t, 3, q.Len())

	first := q.Drain(2)
	require.Len(t, first, 2)
	assert.Equal(t, int64(1), first[0].NoteID)
	assert.Equal(t, int64(2), first[1].NoteID)

	rest := q.Drain(0)
	require.Len(t, rest, 1)
	assert.Equal(t, int64(3), rest[0].NoteID)
	assert.Zero(t, q.Len())
	assert.Empty(t, q.Drain(10))
}

func TestIndexWorker_ProcessJobs_Empty(t *testing.T) {
	notes := new(MockNoteGetter)
	frags := new(MockFragmentIndexer)

	w := NewIndexWorker(NewMemoryQueue(), notes, frags, nil, nil)

	assert.NoError(t, w.ProcessJobs(context.Background()))
	notes.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestIndexWorker_ProcessJobs_UpsertAndRemove(t *testing.T) {
	q := NewMemoryQueue()
	notes := new(MockNoteGetter)
	frags := new(MockFragmentIndexer)
	keywords := new(MockKeywordIndexer)

	note := &domain.Note{ID: 1, Title: "a"}
	notes.On("GetByID", mock.Anything, int64(1)).Return(note, nil)
	keywords.On("Index", mock.Anything, note).Return(nil)
	frags.On("IndexNote", mock.Anything, int64(1)).Return(nil)
	notes.On("GetByID", mock.Anything, int64(2)).Return(nil, domain.ErrNoteNotFound)
	keywords.On("Remove", mock.Anything, int64(2)).Return(nil)
	frags.On("RemoveNote", mock.Anything, int64(2)).Return(nil)

	q.Enqueue(job(1, domain.IndexOpUpsert))
	q.Enqueue(job(2, domain.IndexOpRemove))

	w := NewIndexWorker(q, notes, frags, keywords, nil)
	require.NoError(t, w.ProcessJobs(context.Background()))

	frags.AssertExpectations(t)
	keywords.AssertExpectations(t)
	assert.Zero(t, q.Len())
}

func TestIndexWorker_ProcessJobs_CollapsesPerNote(t *testing.T) {
	q := NewMemoryQueue()
	notes := new(MockNoteGetter)
	frags := new(MockFragmentIndexer)

	notes.On("GetByID", mock.Anything, int64(5)).Return(&domain.Note{ID: 5, Deleted: true}, nil)
	frags.On("RemoveNote", mock.Anything, int64(5)).Return(nil)

	q.Enqueue(job(5, domain.IndexOpUpsert))
	q.Enqueue(job(5, domain.IndexOpUpsert))
	q.Enqueue(job(5, domain.IndexOpRemove))

	w := NewIndexWorker(q, notes, frags, nil, nil)
	require.NoError(t, w.ProcessJobs(context.Background()))

	notes.AssertNumberOfCalls(t, "GetByID", 1)
	frags.AssertNumberOfCalls(t, "RemoveNote", 1)
	frags.AssertNotCalled(t, "IndexNote", mock.Anything, mock.Anything)
}

func TestIndexWorker_ProcessJobs_RetriedRemoveDoesNotOverrideNewerJob(t *testing.T) {
	q := NewMemoryQueue()
	notes := new(MockNoteGetter)
	frags := new(MockFragmentIndexer)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	retried := domain.NewIndexJob(3, domain.IndexOpRemove, base)
	retried.Attempts = 1
	restored := domain.NewIndexJob(3, domain.IndexOpUpsert, base.Add(time.Second))

	collapsed := latestPerNote([]*domain.IndexJob{restored, retried})
	require.Len(t, collapsed, 1)
	assert.Same(t, restored, collapsed[0])

	note := &domain.Note{ID: 3, Title: "restored"}
	notes.On("GetByID", mock.Anything, int64(3)).Return(note, nil)
	frags.On("IndexNote", mock.Anything, int64(3)).Return(nil)

	// A stale remove alone still leaves a live note indexed.
	q.Enqueue(retried)
	w := NewIndexWorker(q, notes, frags, nil, nil)
	require.NoError(t, w.ProcessJobs(context.Background()))

	frags.AssertCalled(t, "IndexNote", mock.Anything, int64(3))
	frags.AssertNotCalled(t, "RemoveNote", mock.Anything, mock.Anything)
}

func TestIndexWorker_ProcessJobs_DeletedNoteIsRemoved(t *testing.T) {
	q := NewMemoryQueue()
	notes := new(MockNoteGetter)
	frags := new(MockFragmentIndexer)

	notes.On("GetByID", mock.Anything, int64(1)).Return(&domain.Note{ID: 1, Deleted: true}, nil)
	notes.On("GetByID", mock.Anything, int64(2)).Return(nil, domain.ErrNoteNotFound)
	frags.On("RemoveNote", mock.Anything, int64(1)).Return(nil)
	frags.On("RemoveNote", mock.Anything, int64(2)).Return(nil)

	q.Enqueue(job(1, domain.IndexOpUpsert))
	q.Enqueue(job(2, domain.IndexOpUpsert))

	w := NewIndexWorker(q, notes, frags, nil, nil)
	require.NoError(t, w.ProcessJobs(context.Background()))

	frags.AssertExpectations(t)
}

func TestIndexWorker_ProcessJobs_RetryThenGiveUp(t *testing.T) {
	q := NewMemoryQueue()
	notes := new(MockNoteGetter)
	frags := new(MockFragmentIndexer)

	notes.On("GetByID", mock.Anything, int64(1)).Return(&domain.Note{ID: 1}, nil)
	frags.On("IndexNote", mock.Anything, int64(1)).Return(errors.New("embedding failed"))

	q.Enqueue(job(1, domain.IndexOpUpsert))
	w := NewIndexWorker(q, notes, frags, nil, nil)

	for attempt := 1; attempt < MaxRetries; attempt++ {
		require.NoError(t, w.ProcessJobs(context.Background()))
		require.Equal(t, 1, q.Len(), "attempt %d should requeue", attempt)
	}

	require.NoError(t, w.ProcessJobs(context.Background()))
	assert.Zero(t, q.Len())
	frags.AssertNumberOfCalls(t, "IndexNote", MaxRetries)
}
