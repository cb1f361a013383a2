package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/noterag/noterag/internal/domain"
	"github.com/pgvector/pgvector-go"
)

// FragmentRepository handles persistence of note fragments and their embeddings.
type FragmentRepository struct {
	db dbtx
}

func NewFragmentRepository(pool *pgxpool.Pool) *FragmentRepository {
	return &FragmentRepository{db: pool}
}

func NewFragmentRepositoryWithTx(tx pgx.Tx) *FragmentRepository {
	return &FragmentRepository{db: tx}
}

// ReplaceForNote deletes a note's fragments and inserts frags. Callers wanting
// atomicity run it inside a transaction.
func (r *FragmentRepository) ReplaceForNote(ctx context.Context, noteID int64, frags []*domain.Fragment) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM note_fragments WHERE note_id = $1`, noteID); err != nil {
		return err
	}

	for _, f := range frags {
		_, err := r.db.Exec(ctx,
			`INSERT INTO note_fragments (id, note_id, kind, frag_index, content, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			f.ID, noteID, f.Kind, f.Index, f.Content, pgvector.NewVector(f.Embedding),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *FragmentRepository) DeleteByNote(ctx context.Context, noteID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM note_fragments WHERE note_id = $1`, noteID)
	return err
}

// SearchSimilar returns the topK fragments of live notes closest to
// embedding by cosine distance. Score is cosine similarity.
func (r *FragmentRepository) SearchSimilar(ctx context.Context, embedding []float32, topK int) ([]domain.SearchHit, error) {
	rows, err := r.db.Query(ctx,
		`SELECT f.note_id, n.title, f.id, 1 - (f.embedding <=> $1) AS score, f.content
		 FROM note_fragments f
		 JOIN notes n ON n.id = f.note_id
		 WHERE NOT n.deleted
		 ORDER BY f.embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(embedding), topK,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hits := make([]domain.SearchHit, 0, topK)
	for rows.Next() {
		var h domain.SearchHit
		if err := rows.Scan(&h.NoteID, &h.Title, &h.FragID, &h.Score, &h.Content); err != nil {
			return nil, err
		}
		h.Link = domain.NoteLink(h.NoteID)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (r *FragmentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM note_fragments`).Scan(&n)
	return n, err
}
