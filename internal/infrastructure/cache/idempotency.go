package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/idempotency"
)

const idempotencyPrefix = "idempotency:"

// IdempotencyStore keeps idempotency records as JSON values that expire after ttl.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

var _ idempotency.Store = (*IdempotencyStore)(nil)

// NewIdempotencyStore creates the store.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// Acquire claims req.Key with SET NX or resolves the existing record.
func (s *IdempotencyStore) Acquire(ctx context.Context, req idempotency.Request) (*idempotency.Replay, error) {
	now := s.now()
	pending, err := json.Marshal(idempotency.Record{Request: req, Status: idempotency.StatusPending, UpdatedAt: now})
	if err != nil {
		return nil, fmt.Errorf("marshal idempotency record: %w", err)
	}

	key := idempotencyPrefix + req.Key
	ok, err := s.client.SetNX(ctx, key, pending, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire idempotency key: %w", err)
	}
	if ok {
		return nil, nil
	}

	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET.
		return s.Acquire(ctx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("read idempotency key: %w", err)
	}

	var rec idempotency.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode idempotency record: %w", err)
	}

	replay, reclaim, err := idempotency.Resolve(rec, req, now)
	if err != nil || !reclaim {
		return replay, err
	}

	// Compare-and-swap on the raw value so only one request reclaims.
	swapped, err := s.client.SetArgs(ctx, key, pending, redis.SetArgs{Mode: "XX", TTL: s.ttl, Get: true}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("reclaim stale key: %w", err)
	}
	if swapped != string(raw) {
		return nil, apperror.NewIdempotencyConflict(req.Key)
	}
	return nil, nil
}

// Complete stores the response, keeping the remaining ttl.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, status idempotency.Status, resp idempotency.Replay) error {
	raw, err := s.client.Get(ctx, idempotencyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read idempotency key: %w", err)
	}

	var rec idempotency.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return fmt.Errorf("decode idempotency record: %w", err)
	}
	rec.Status = status
	rec.Response = resp
	rec.UpdatedAt = s.now()

	updated, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal idempotency record: %w", err)
	}
	if err := s.client.SetArgs(ctx, idempotencyPrefix+key, updated, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

// Release deletes the key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, idempotencyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
