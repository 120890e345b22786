package storage

import (
	"context"
	"fmt"

	"paygate/internal/db"
	"paygate/internal/domain/transactions"
	"paygate/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Container struct {
	pool         *pgxpool.Pool // nil for the in-memory container
	Transactions transactions.Store
}

func NewContainer(pool *pgxpool.Pool) *Container {
	return &Container{
		pool:         pool,
		Transactions: transactions.NewRepository(pool),
	}
}

// NewMemoryContainer backs every store with process memory.
func NewMemoryContainer() *Container {
	return &Container{
		Transactions: transactions.NewMemoryStore(),
	}
}

// Persistent reports whether the container is backed by a database.
func (c *Container) Persistent() bool { return c.pool != nil }

// Tx is a tx-scoped set of repositories for atomic units of work.
type Tx struct {
	Q            dbx.Querier
	Transactions transactions.Store
}

// WithTx runs fn inside a database transaction, committing only if fn
// returns nil.
func (c *Container) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	if c.pool == nil {
		return fmt.Errorf("storage container has no database pool")
	}

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx) // no-op after commit
	}()

	if err := fn(&Tx{Q: tx, Transactions: transactions.NewRepository(tx)}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Migrate applies the schema in one transaction. It does nothing for the
// in-memory container.
func (c *Container) Migrate(ctx context.Context) error {
	if c.pool == nil {
		return nil
	}
	return c.WithTx(ctx, func(tx *Tx) error {
		return db.Migrate(ctx, tx.Q)
	})
}
