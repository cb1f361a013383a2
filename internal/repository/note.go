package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/noterag/noterag/internal/domain"
	"github.com/noterag/noterag/internal/pagination"
)

const noteColumns = `id, title, content, deleted, created_at, updated_at`

type NoteRepository struct {
	db dbtx
}

func NewNoteRepository(pool *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{db: pool}
}

func NewNoteRepositoryWithTx(tx pgx.Tx) *NoteRepository {
	return &NoteRepository{db: tx}
}

// Create inserts n and fills in its id and timestamps.
func (r *NoteRepository) Create(ctx context.Context, n *domain.Note) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO notes (title, content)
		 VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`,
		n.Title, n.Content,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
}

// GetByID returns the note whether or not it is in the trash.
func (r *NoteRepository) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	var n domain.Note
	err := r.db.QueryRow(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1`,
		id,
	).Scan(&n.ID, &n.Title, &n.Content, &n.Deleted, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, err
	}
	return &n, nil
}

// GetByIDs returns the live notes among ids, in no particular order.
func (r *NoteRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Note, error) {
	if len(ids) == 0 {
		return []*domain.Note{}, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ANY($1) AND NOT deleted`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNoteRows(rows)
}

// Update writes title and content of a live note and bumps updated_at.
func (r *NoteRepository) Update(ctx context.Context, n *domain.Note) error {
	err := r.db.QueryRow(ctx,
		`UPDATE notes SET title = $1, content = $2, updated_at = now()
		 WHERE id = $3 AND NOT deleted
		 RETURNING updated_at`,
		n.Title, n.Content, n.ID,
	).Scan(&n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNoteNotFound
		}
		return err
	}
	return nil
}

// SoftDelete moves a live note to the trash.
func (r *NoteRepository) SoftDelete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE notes SET deleted = TRUE, updated_at = now() WHERE id = $1 AND NOT deleted`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

// Restore takes a note out of the trash.
func (r *NoteRepository) Restore(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE notes SET deleted = FALSE, updated_at = now() WHERE id = $1 AND deleted`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrNoteNotInTrash
	}
	return nil
}

// HardDelete removes a trashed note and, by cascade, its fragments.
func (r *NoteRepository) HardDelete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM notes WHERE id = $1 AND deleted`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrNoteNotInTrash
	}
	return nil
}

// PurgeTrash hard-deletes every trashed note.
func (r *NoteRepository) PurgeTrash(ctx context.Context) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM notes WHERE deleted`)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

// PurgeAll hard-deletes every note.
func (r *NoteRepository) PurgeAll(ctx context.Context) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM notes`)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

// List returns one page of live (deleted=false) or trashed (deleted=true)
// notes, newest first, with the total count.
func (r *NoteRepository) List(ctx context.Context, page pagination.Page, deleted bool) ([]*domain.Note, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM notes WHERE deleted = $1`,
		deleted,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+noteColumns+` FROM notes
		 WHERE deleted = $1
		 ORDER BY updated_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		deleted, page.Limit(), page.Offset(),
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notes, err := scanNoteRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

// ListAll returns every note ordered by id.
func (r *NoteRepository) ListAll(ctx context.Context, includeDeleted bool) ([]*domain.Note, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+noteColumns+` FROM notes
		 WHERE $1 OR NOT deleted
		 ORDER BY id`,
		includeDeleted,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNoteRows(rows)
}

// SearchLike matches q as a substring of title or content, case-insensitively.
func (r *NoteRepository) SearchLike(ctx context.Context, q string, limit int) ([]*domain.Note, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+noteColumns+` FROM notes
		 WHERE NOT deleted AND (title ILIKE $1 OR content ILIKE $1)
		 ORDER BY updated_at DESC, id DESC
		 LIMIT $2`,
		likePattern(q), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNoteRows(rows)
}

func scanNoteRows(rows pgx.Rows) ([]*domain.Note, error) {
	notes := make([]*domain.Note, 0)
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Deleted, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}
