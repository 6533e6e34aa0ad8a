package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceRoundTrip(t *testing.T) {
	_, ok := TraceFrom(context.Background())
	assert.False(t, ok)

	ctx := WithTrace(context.Background(), Trace{TraceID: "t1", RequestID: "r1"})
	got, ok := TraceFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "r1", got.RequestID)
}

func TestGetUserID(t *testing.T) {
	assert.Empty(t, GetUserID(context.Background()))

	ctx := WithUser(context.Background(), &UserContext{UserID: "u1", Roles: []string{"ADMIN"}})
	assert.Equal(t, "u1", GetUserID(ctx))
	assert.Equal(t, []string{"ADMIN"}, GetUser(ctx).Roles)
}
