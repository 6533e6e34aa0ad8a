package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
)

func TestInboxListQuery(t *testing.T) {
	repo := NewInboxRepo(nil)
	user := id.New()

	sql, args, err := repo.listQuery(user, true, 20).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM notifications WHERE user_id = $1 AND is_read = $2 ORDER BY created_at DESC, seq DESC LIMIT 20")
	assert.Equal(t, []any{user, false}, args)
}

func TestInboxMarkQuery(t *testing.T) {
	repo := NewInboxRepo(nil)
	user := id.New()

	t.Run("all", func(t *testing.T) {
		sql, args, err := repo.markQuery(user, nil).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "UPDATE notifications SET is_read = $1 WHERE user_id = $2 AND is_read = $3", sql)
		assert.Equal(t, []any{true, user, false}, args)
	})

	t.Run("selected", func(t *testing.T) {
		a, b := id.New(), id.New()
		sql, args, err := repo.markQuery(user, []id.ID{a, b}).ToSql()
		require.NoError(t, err)
		assert.Contains(t, sql, "AND id IN ($4,$5)")
		assert.Equal(t, []any{true, user, false, a, b}, args)
	})
}
