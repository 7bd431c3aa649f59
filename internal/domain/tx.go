package domain

import "context"

// TxManager runs a unit of work inside a database transaction. The handle
// travels through the context so repositories join the same transaction.
type TxManager interface {
	// Do runs fn at the store's default isolation.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	// DoSerializable runs fn at serializable isolation with a bounded
	// exponential-backoff retry on write conflicts. ErrConflict once the
	// retry budget is exhausted.
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}
