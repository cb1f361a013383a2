package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/noterag/noterag/internal/domain"
	"github.com/noterag/noterag/internal/telemetry"
	"go.uber.org/zap"
)

const (
	// MaxRetries is the maximum number of attempts for a failing job
	MaxRetries = 3
	// BatchSize caps how many queued jobs one tick handles
	BatchSize = 100
)

// NoteGetter loads notes for indexing
type NoteGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Note, error)
}

// FragmentIndexer maintains embedded fragments of notes
type FragmentIndexer interface {
	IndexNote(ctx context.Context, noteID int64) error
	RemoveNote(ctx context.Context, noteID int64) error
}

// KeywordIndexer maintains the keyword index of notes
type KeywordIndexer interface {
	Index(ctx context.Context, note *domain.Note) error
	Remove(ctx context.Context, noteID int64) error
}

// IndexWorker drains the index queue into the keyword and fragment indexes
type IndexWorker struct {
	queue     *MemoryQueue
	notes     NoteGetter
	fragments FragmentIndexer
	keywords  KeywordIndexer
	logger    *zap.Logger
}

// NewIndexWorker creates a new IndexWorker. keywords may be nil.
func NewIndexWorker(queue *MemoryQueue, notes NoteGetter, fragments FragmentIndexer, keywords KeywordIndexer, logger *zap.Logger) *IndexWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IndexWorker{
		queue:     queue,
		notes:     notes,
		fragments: fragments,
		keywords:  keywords,
		logger:    logger,
	}
}

// ProcessJobs implements the JobProcessor interface. Jobs for the same note
// collapse into the most recently enqueued one.
func (w *IndexWorker) ProcessJobs(ctx context.Context) error {
	jobs := latestPerNote(w.queue.Drain(BatchSize))
	if len(jobs) == 0 {
		return nil
	}

	w.logger.Debug("processing index jobs", zap.Int("count", len(jobs)))

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			w.queue.Enqueue(job)
			continue
		}
		if err := w.processJob(ctx, job); err != nil {
			w.handleJobFailure(ctx, job, err)
		}
	}

	return nil
}

// processJob reconciles the indexes with the note's current state. The op is
// only a hint: a retried remove for a note restored since is indexed instead.
func (w *IndexWorker) processJob(ctx context.Context, job *domain.IndexJob) error {
	telemetry.AddBreadcrumb(ctx, "index", fmt.Sprintf("%s note %d (attempt %d)", job.Op, job.NoteID, job.Attempts+1))

	note, err := w.notes.GetByID(ctx, job.NoteID)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return w.remove(ctx, job.NoteID)
		}
		return err
	}
	if note.Deleted {
		return w.remove(ctx, job.NoteID)
	}

	if w.keywords != nil {
		if err := w.keywords.Index(ctx, note); err != nil {
			return err
		}
	}
	return w.fragments.IndexNote(ctx, job.NoteID)
}

func (w *IndexWorker) remove(ctx context.Context, noteID int64) error {
	if w.keywords != nil {
		if err := w.keywords.Remove(ctx, noteID); err != nil {
			return err
		}
	}
	return w.fragments.RemoveNote(ctx, noteID)
}

// handleJobFailure requeues a failed job until it runs out of attempts
func (w *IndexWorker) handleJobFailure(ctx context.Context, job *domain.IndexJob, jobErr error) {
	job.Attempts++

	if job.Attempts >= MaxRetries {
		w.logger.Error("index job exceeded max retries",
			zap.Int64("note_id", job.NoteID),
			zap.String("op", string(job.Op)),
			zap.Int("attempts", job.Attempts),
			zap.Error(jobErr),
		)
		telemetry.CaptureError(ctx, fmt.Errorf("index note %d: %w", job.NoteID, jobErr))
		return
	}

	w.logger.Warn("index job failed, will retry",
		zap.Int64("note_id", job.NoteID),
		zap.Int("attempt", job.Attempts),
		zap.Error(jobErr),
	)
	w.queue.Enqueue(job)
}

// latestPerNote keeps one job per note, the one with the latest EnqueuedAt.
// Requeued jobs keep their original EnqueuedAt, so a retry never overrides a
// newer job. Ties go to the later queue position.
func latestPerNote(jobs []*domain.IndexJob) []*domain.IndexJob {
	pos := make(map[int64]int, len(jobs))
	out := make([]*domain.IndexJob, 0, len(jobs))
	for _, j := range jobs {
		if i, ok := pos[j.NoteID]; ok {
			if !j.EnqueuedAt.Before(out[i].EnqueuedAt) {
				out[i] = j
			}
			continue
		}
		pos[j.NoteID] = len(out)
		out = append(out, j)
	}
	return out
}
