// Package memtx gives the in-memory stores an all-or-nothing transaction boundary.
//
// Stores record an undo step for every write made under a transaction context.
// When the function fails the steps run in reverse, so only the transaction's
// own writes are reverted; writes made by other callers in the meantime stay.
// Transactions are serialized with one mutex, so a second caller waits for the
// first to finish. Writes outside a transaction never wait.
package memtx

import (
	"context"
	"sync"

	dErrors "warden/pkg/domain-errors"
)

type ctxKey struct{}

type journal struct {
	owner *Tx
	mu    sync.Mutex
	undo  []func()
}

func (j *journal) rollback() {
	j.mu.Lock()
	undo := j.undo
	j.undo = nil
	j.mu.Unlock()
	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
}

// Record registers undo for a write made under ctx. Outside a transaction it is a no-op.
func Record(ctx context.Context, undo func()) {
	j, ok := ctx.Value(ctxKey{}).(*journal)
	if !ok || j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.undo = append(j.undo, undo)
}

// Tx serializes transactions over the in-memory stores.
type Tx struct {
	mu sync.Mutex
}

func New() *Tx {
	return &Tx{}
}

func (t *Tx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if j, ok := ctx.Value(ctxKey{}).(*journal); ok && j.owner == t {
		return fn(ctx)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	j := &journal{owner: t}
	defer func() {
		if p := recover(); p != nil {
			j.rollback()
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, ctxKey{}, j)); err != nil {
		j.rollback()
		return err
	}
	return nil
}
