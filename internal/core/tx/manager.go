// Package tx defines the transaction scope every use case runs in.
package tx

import (
	"context"
)

// Manager runs a use case atomically. The transaction travels in ctx, so
// repositories called from fn join it; nested calls join the outer one.
// A non-nil error from fn rolls every write back.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager also offers snapshot reads.
type ReadOnlyManager interface {
	Manager
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Read runs fn against one consistent snapshot, so a document header and its
// lines come from the same state. Managers without read-only support fall back
// to a regular transaction.
func Read(ctx context.Context, m Manager, fn func(ctx context.Context) error) error {
	if ro, ok := m.(ReadOnlyManager); ok {
		return ro.ReadOnly(ctx, fn)
	}
	return m.RunInTransaction(ctx, fn)
}
