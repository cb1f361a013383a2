package domain

import (
	"fmt"
	"time"
)

// IndexOp is the kind of work queued for the RAG index.
type IndexOp string

const (
	IndexOpUpsert IndexOp = "upsert"
	IndexOpRemove IndexOp = "remove"
)

// IndexJob asks the worker to (re)index or drop one note.
type IndexJob struct {
	NoteID     int64
	Op         IndexOp
	Attempts   int
	EnqueuedAt time.Time
}

// NewIndexJob creates a new IndexJob instance
func NewIndexJob(noteID int64, op IndexOp, enqueuedAt time.Time) *IndexJob {
	return &IndexJob{
		NoteID:     noteID,
		Op:         op,
		EnqueuedAt: enqueuedAt,
	}
}

// ValidateIndexJob validates an IndexJob instance
func ValidateIndexJob(j *IndexJob) error {
	if j == nil {
		return fmt.Errorf("index job cannot be nil")
	}
	if j.NoteID <= 0 {
		return fmt.Errorf("index job NoteID must be positive")
	}
	switch j.Op {
	case IndexOpUpsert, IndexOpRemove:
		return nil
	}
	return fmt.Errorf("index job Op is invalid: %s", j.Op)
}
