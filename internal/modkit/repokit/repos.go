// Package repokit provides the types repo packages build on
package repokit

import (
	"context"

	perr "triggerbot/internal/platform/errors"
	"triggerbot/internal/platform/store"
)

// txAttempts bounds reruns of a transaction aborted by lock contention
const txAttempts = 3

// Queryer is the read and write surface a bound repo runs against
type Queryer = store.RowQuerier

// TxRunner executes a function inside a transaction
type TxRunner = store.TxRunner

type (
	// Rows are the result set of a query
	Rows = store.Rows

	// Row is a single row result from a query
	Row = store.Row

	// CommandTag is the result of a command that modifies data
	CommandTag = store.CommandTag
)

// Binder binds a repo to a Queryer: the pool for plain reads, a transaction for
// writes that must commit together
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a function to Binder; service tests use it to hand back fakes
type BindFunc[T any] func(Queryer) T

// Bind implements Binder
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// WithTx runs fn inside a transaction on tx
// Serialization failures and deadlocks rerun the whole transaction, so fn must not keep state between calls
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	var err error
	for i := 0; i < txAttempts; i++ {
		if err = tx.Tx(ctx, fn); !perr.IsRetryable(err) {
			return err
		}
	}
	return err
}

// InTx binds b inside a transaction on tx and runs fn against the bound repo
func InTx[T any](ctx context.Context, tx TxRunner, b Binder[T], fn func(T) error) error {
	return WithTx(ctx, tx, func(q Queryer) error { return fn(b.Bind(q)) })
}
