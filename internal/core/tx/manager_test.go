package tx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainManager struct{ runs int }

func (m *plainManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.runs++
	return fn(ctx)
}

type snapshotManager struct {
	plainManager
	reads int
}

func (m *snapshotManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	m.reads++
	return fn(ctx)
}

func TestReadPrefersSnapshot(t *testing.T) {
	m := &snapshotManager{}
	require.NoError(t, Read(context.Background(), m, func(context.Context) error { return nil }))
	assert.Equal(t, 1, m.reads)
	assert.Zero(t, m.runs)
}

func TestReadFallsBackToTransaction(t *testing.T) {
	m := &plainManager{}
	require.NoError(t, Read(context.Background(), m, func(context.Context) error { return nil }))
	assert.Equal(t, 1, m.runs)
}
