package database

import (
	"context"
	"database/sql"
	"time"

	dErrors "warden/pkg/domain-errors"
	txcontext "warden/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// Tx runs functions inside one Postgres transaction carried through the context.
// Nested calls join the outer transaction.
type Tx struct {
	db      *sql.DB
	timeout time.Duration
	opts    *sql.TxOptions
}

func NewTx(db *sql.DB) *Tx {
	return &Tx{db: db, timeout: defaultTxTimeout}
}

// WithTimeout overrides the default transaction deadline used when the caller set none.
func (t *Tx) WithTimeout(d time.Duration) *Tx {
	t.timeout = d
	return t
}

func (t *Tx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, ok := txcontext.From(ctx); ok {
		return fn(ctx)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, t.opts)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodePersistence, "begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodePersistence, "commit transaction")
	}
	return nil
}
