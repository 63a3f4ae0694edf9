package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/achledger/internal/infrastructure/postgres/generated"
	"github.com/iho/achledger/internal/usecase"
)

// ErrForeignTx is returned when a repository receives a transaction that
// did not come from TxManager.
var ErrForeignTx = errors.New("postgres: transaction is not a postgres transaction")

type pgxPool interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	pool pgxPool
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxPool) *TxManager {
	return &TxManager{pool: pool}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return &Tx{tx: tx}, nil
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction. Deferred constraints are checked here.
func (t *Tx) Commit(ctx context.Context) error {
	return mapError(t.tx.Commit(ctx))
}

// Rollback rolls back the transaction. Rolling back a committed
// transaction is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}

func txQueries(tx usecase.Transaction) (*generated.Queries, error) {
	t, ok := tx.(*Tx)
	if !ok || t == nil {
		return nil, ErrForeignTx
	}
	return generated.New(t.tx), nil
}
