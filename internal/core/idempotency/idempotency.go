// Package idempotency defines the X-Idempotency-Key contract shared by the
// HTTP middleware and its storage backends.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
)

// Status represents the state of an idempotent operation.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// StaleAfter is how long a pending key may sit before another request reclaims it.
const StaleAfter = time.Minute

// Request identifies one idempotent call.
type Request struct {
	Key         string
	UserID      string
	Operation   string
	RequestHash string
}

// Record is the stored state of a key.
type Record struct {
	Request
	Status    Status    `json:"status"`
	Response  Replay    `json:"response"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Replay is the cached HTTP response.
type Replay struct {
	StatusCode  int    `json:"statusCode"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// Store manages idempotency keys.
type Store interface {
	// Acquire claims the key. It returns (nil, nil) when the caller owns the
	// key, a Replay when the operation already finished, or an error when the
	// key is in flight or was used for a different request.
	Acquire(ctx context.Context, req Request) (*Replay, error)
	// Complete stores the response of the owning request.
	Complete(ctx context.Context, key string, status Status, resp Replay) error
	// Release forgets the key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// HashBody returns the hex SHA-256 of a request body.
func HashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Resolve decides what an existing record means for req. The bool result
// reports whether a stale pending key may be reclaimed by req.
func Resolve(rec Record, req Request, now time.Time) (*Replay, bool, error) {
	if rec.UserID != req.UserID || rec.Operation != req.Operation || rec.RequestHash != req.RequestHash {
		return nil, false, apperror.NewIdempotencyMismatch(req.Key).
			WithDetail("stored_operation", rec.Operation).
			WithDetail("request_operation", req.Operation)
	}

	switch rec.Status {
	case StatusSuccess, StatusFailed:
		replay := rec.Response.normalize()
		return &replay, false, nil
	case StatusPending:
		if now.Sub(rec.UpdatedAt) > StaleAfter {
			return nil, true, nil
		}
	}
	return nil, false, apperror.NewIdempotencyConflict(req.Key)
}

// StatusFor classifies an HTTP response. 5xx responses are not cached.
func StatusFor(code int) (Status, bool) {
	switch {
	case code >= http.StatusInternalServerError:
		return "", false
	case code >= http.StatusBadRequest:
		return StatusFailed, true
	}
	return StatusSuccess, true
}

func (r Replay) normalize() Replay {
	// Older rows may lack a status; default to 200 JSON.
	if r.StatusCode == 0 {
		r.StatusCode = http.StatusOK
	}
	if r.ContentType == "" {
		r.ContentType = "application/json"
	}
	return r
}
