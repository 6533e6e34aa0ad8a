package idempotency

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
)

func TestResolve(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	req := Request{Key: "k1", UserID: "u1", Operation: "POST /api/v1/srns", RequestHash: HashBody([]byte(`{}`))}

	t.Run("finished replays", func(t *testing.T) {
		rec := Record{Request: req, Status: StatusSuccess, Response: Replay{StatusCode: http.StatusCreated, Body: []byte(`{"id":1}`)}}

		replay, reclaim, err := Resolve(rec, req, now)
		require.NoError(t, err)
		assert.False(t, reclaim)
		require.NotNil(t, replay)
		assert.Equal(t, http.StatusCreated, replay.StatusCode)
		assert.Equal(t, "application/json", replay.ContentType)
	})

	t.Run("in flight conflicts", func(t *testing.T) {
		rec := Record{Request: req, Status: StatusPending, UpdatedAt: now.Add(-time.Second)}

		_, _, err := Resolve(rec, req, now)
		assert.True(t, apperror.HasCode(err, apperror.CodeIdempotency), "got %v", err)
	})

	t.Run("stale pending is reclaimed", func(t *testing.T) {
		rec := Record{Request: req, Status: StatusPending, UpdatedAt: now.Add(-2 * StaleAfter)}

		replay, reclaim, err := Resolve(rec, req, now)
		require.NoError(t, err)
		assert.Nil(t, replay)
		assert.True(t, reclaim)
	})

	t.Run("different body is a mismatch", func(t *testing.T) {
		rec := Record{Request: req, Status: StatusSuccess}
		other := req
		other.RequestHash = HashBody([]byte(`{"x":1}`))

		_, _, err := Resolve(rec, other, now)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "Idempotency key mismatch", appErr.Message)
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code   int
		want   Status
		cached bool
	}{
		{http.StatusOK, StatusSuccess, true},
		{http.StatusCreated, StatusSuccess, true},
		{http.StatusUnprocessableEntity, StatusFailed, true},
		{http.StatusConflict, StatusFailed, true},
		{http.StatusInternalServerError, "", false},
	}
	for _, tt := range tests {
		got, cached := StatusFor(tt.code)
		assert.Equal(t, tt.want, got, "code %d", tt.code)
		assert.Equal(t, tt.cached, cached, "code %d", tt.code)
	}
}
