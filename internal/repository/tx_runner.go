package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/noterag/noterag/internal/service"
)

// TxRunner provides transactional repositories using a pgx pool.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) WithTx(ctx context.Context, fn func(repos service.TxRepositories) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&txRepos{tx: tx})
	})
}

type txRepos struct {
	tx pgx.Tx
}

func (r *txRepos) Notes() service.NoteRepositoryInterface {
	return NewNoteRepositoryWithTx(r.tx)
}

func (r *txRepos) Fragments() service.FragmentRepositoryInterface {
	return NewFragmentRepositoryWithTx(r.tx)
}
