package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/noterag/noterag/internal/domain"
	"github.com/noterag/noterag/internal/telemetry"
	"go.uber.org/zap"
)

// BackupPrefix is the key prefix shared by every snapshot.
const BackupPrefix = "backups/"

const backupKeyPrefix = BackupPrefix + "notes-"

// Snapshot is the JSON document written by a backup.
type Snapshot struct {
	CreatedAt time.Time      `json:"created_at"`
	Count     int            `json:"count"`
	Notes     []SnapshotNote `json:"notes"`
}

type SnapshotNote struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BackupService exports every note, trash included, to object storage
type BackupService struct {
	notes  NoteRepositoryInterface
	store  ObjectStore
	logger *zap.Logger
	now    func() time.Time
}

func NewBackupService(notes NoteRepositoryInterface, store ObjectStore, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{
		notes:  notes,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// BackupKey is the object key of a snapshot taken at t.
func BackupKey(t time.Time) string {
	return backupKeyPrefix + t.UTC().Format("20060102T150405Z") + ".json"
}

// Backup uploads a snapshot and returns its object key.
func (s *BackupService) Backup(ctx context.Context) (string, *Snapshot, error) {
	ctx, span := telemetry.StartSpan(ctx, "BackupService.Backup", telemetry.SpanAttributes{Operation: "backup"})
	defer span.End()

	notes, err := s.notes.ListAll(ctx, true)
	if err != nil {
		span.SetError(err)
		return "", nil, fmt.Errorf("list notes: %w", err)
	}

	snap := buildSnapshot(s.now().UTC(), notes)
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("encode snapshot: %w", err)
	}

	key := BackupKey(snap.CreatedAt)
	if err := s.store.PutObject(ctx, key, "application/json", body); err != nil {
		span.SetError(err)
		return "", nil, err
	}

	s.logger.Info("backup uploaded", zap.String("key", key), zap.Int("notes", snap.Count), zap.Int("bytes", len(body)))
	return key, snap, nil
}

func buildSnapshot(at time.Time, notes []*domain.Note) *Snapshot {
	snap := &Snapshot{
		CreatedAt: at,
		Count:     len(notes),
		Notes:     make([]SnapshotNote, len(notes)),
	}
	for i, n := range notes {
		snap.Notes[i] = SnapshotNote{
			ID:        n.ID,
			Title:     n.Title,
			Content:   n.Content,
			Deleted:   n.Deleted,
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.UpdatedAt,
		}
	}
	return snap
}
