package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/noterag/noterag/internal/domain"
	"github.com/noterag/noterag/internal/pagination"
	"github.com/noterag/noterag/internal/telemetry"
	"go.uber.org/zap"
)

// SearchLimit caps keyword search results.
const SearchLimit = 20

// NoteService handles business logic for notes
type NoteService struct {
	notes    NoteRepositoryInterface
	queue    IndexQueue
	keywords KeywordIndex
	logger   *zap.Logger
	now      func() time.Time
}

// NewNoteService creates a new NoteService. keywords may be nil, in which case
// search goes straight to the database.
func NewNoteService(notes NoteRepositoryInterface, queue IndexQueue, keywords KeywordIndex, logger *zap.Logger) *NoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteService{
		notes:    notes,
		queue:    queue,
		keywords: keywords,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateNoteInput represents the input for creating a note
type CreateNoteInput struct {
	Title   string
	Content string
}

// Create stores a new note and queues it for indexing
func (s *NoteService) Create(ctx context.Context, input CreateNoteInput) (*domain.Note, error) {
	ctx, span := telemetry.StartSpan(ctx, "NoteService.Create", telemetry.SpanAttributes{Operation: "create"})
	defer span.End()

	note := domain.NewNote(input.Title, input.Content)
	if err := domain.ValidateNote(note); err != nil {
		return nil, err
	}

	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}

	s.enqueue(note.ID, domain.IndexOpUpsert)
	return note, nil
}

// Get returns a live note. Trashed notes are reported as not found.
func (s *NoteService) Get(ctx context.Context, id int64) (*domain.Note, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidNoteID
	}

	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if note.Deleted {
		return nil, domain.ErrNoteNotFound
	}
	return note, nil
}

// Update merges the given fields into a live note and returns the result
func (s *NoteService) Update(ctx context.Context, id int64, update domain.NoteUpdate) (*domain.Note, error) {
	ctx, span := telemetry.StartSpan(ctx, "NoteService.Update", telemetry.SpanAttributes{NoteID: id, Operation: "update"})
	defer span.End()

	if update.IsEmpty() {
		return nil, domain.ErrEmptyUpdate
	}

	note, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	update.Apply(note)
	if err := domain.ValidateNote(note); err != nil {
		return nil, err
	}

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}

	s.enqueue(note.ID, domain.IndexOpUpsert)
	return note, nil
}

// Delete moves a note to the trash
func (s *NoteService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidNoteID
	}
	if err := s.notes.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.enqueue(id, domain.IndexOpRemove)
	return nil
}

// List returns a page of live notes
func (s *NoteService) List(ctx context.Context, page, size int) (*pagination.PageResult[*domain.Note], error) {
	return s.list(ctx, page, size, false)
}

// ListTrash returns a page of trashed notes
func (s *NoteService) ListTrash(ctx context.Context, page, size int) (*pagination.PageResult[*domain.Note], error) {
	return s.list(ctx, page, size, true)
}

func (s *NoteService) list(ctx context.Context, page, size int, deleted bool) (*pagination.PageResult[*domain.Note], error) {
	p := pagination.Normalize(page, size)
	notes, total, err := s.notes.List(ctx, p, deleted)
	if err != nil {
		return nil, err
	}
	return &pagination.PageResult[*domain.Note]{List: notes, Total: total}, nil
}

// Restore takes a note out of the trash and returns it
func (s *NoteService) Restore(ctx context.Context, id int64) (*domain.Note, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidNoteID
	}

	if err := s.notes.Restore(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNoteNotInTrash) {
			if _, getErr := s.notes.GetByID(ctx, id); errors.Is(getErr, domain.ErrNoteNotFound) {
				return nil, domain.ErrNoteNotFound
			}
		}
		return nil, err
	}

	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.enqueue(id, domain.IndexOpUpsert)
	return note, nil
}

// Purge permanently removes a trashed note
func (s *NoteService) Purge(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidNoteID
	}

	if err := s.notes.HardDelete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNoteNotInTrash) {
			if _, getErr := s.notes.GetByID(ctx, id); errors.Is(getErr, domain.ErrNoteNotFound) {
				return domain.ErrNoteNotFound
			}
		}
		return err
	}

	s.enqueue(id, domain.IndexOpRemove)
	return nil
}

// PurgeTrash permanently removes every trashed note
func (s *NoteService) PurgeTrash(ctx context.Context) (int64, error) {
	return s.notes.PurgeTrash(ctx)
}

// PurgeAll permanently removes every note
func (s *NoteService) PurgeAll(ctx context.Context) (int64, error) {
	return s.notes.PurgeAll(ctx)
}

// Search finds live notes by keyword. The in-memory index is consulted first;
// when it errors or finds nothing the database substring match is used.
func (s *NoteService) Search(ctx context.Context, q string) ([]*domain.Note, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, domain.ErrEmptyQuery
	}

	if s.keywords != nil {
		notes, err := s.searchIndex(ctx, q)
		if err != nil {
			s.logger.Warn("keyword index search failed, falling back to database", zap.String("query", q), zap.Error(err))
		} else if len(notes) > 0 {
			return notes, nil
		}
	}

	return s.notes.SearchLike(ctx, q, SearchLimit)
}

func (s *NoteService) searchIndex(ctx context.Context, q string) ([]*domain.Note, error) {
	ids, err := s.keywords.Search(ctx, q, SearchLimit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	found, err := s.notes.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*domain.Note, len(found))
	for _, n := range found {
		byID[n.ID] = n
	}

	ordered := make([]*domain.Note, 0, len(found))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			ordered = append(ordered, n)
		}
	}
	return ordered, nil
}

func (s *NoteService) enqueue(noteID int64, op domain.IndexOp) {
	if s.queue == nil {
		return
	}
	s.queue.Enqueue(domain.NewIndexJob(noteID, op, s.now()))
}
