package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/99minutos/timeclock/internal/core/ports"
)

// Transactor implements ports.Transactor with database/sql transactions. The
// *sql.Tx travels in the context handed to fn, and every repository in this
// package picks it up from there.
type Transactor struct {
	db *sql.DB
}

var _ ports.Transactor = (*Transactor)(nil)

func NewTransactor(db *sql.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTx commits when fn returns nil and rolls back otherwise. A call nested
// inside another WithinTx joins the outer transaction.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}
	return nil
}
