// Package numerator provides the PostgreSQL document auto-numbering service.
package numerator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	corenumerator "github.com/harpreet-2146/FM-demo-sub001/internal/core/numerator"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierFunc resolves the querier for a call, typically the active transaction or the pool.
type QuerierFunc func(ctx context.Context) Querier

// Options configures the service.
type Options struct {
	// Location decides where a calendar day starts. Defaults to UTC.
	Location *time.Location
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// Service issues daily document numbers backed by the sys_sequences table:
//
//	sys_sequences(prefix TEXT, seq_date DATE, current_val BIGINT, PRIMARY KEY (prefix, seq_date))
type Service struct {
	querier QuerierFunc
	loc     *time.Location
	now     func() time.Time
}

var _ corenumerator.Generator = (*Service)(nil)

// New creates a service that always uses querier.
// Use for single-connection or testing scenarios.
func New(querier Querier, opts Options) *Service {
	return NewWithResolver(func(context.Context) Querier { return querier }, opts)
}

// NewWithResolver creates a service that picks its querier per call, so numbering
// joins the caller's transaction when there is one.
func NewWithResolver(resolve QuerierFunc, opts Options) *Service {
	s := &Service{querier: resolve, loc: opts.Location, now: opts.Now}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// NextNumber increments today's counter for prefix with a single UPSERT + RETURNING,
// which Postgres serializes on the (prefix, seq_date) row.
func (s *Service) NextNumber(ctx context.Context, prefix corenumerator.Prefix) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}
	if _, err := corenumerator.ParsePrefix(string(prefix)); err != nil {
		return "", err
	}

	day := corenumerator.Day(s.now(), s.loc)
	var num int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (prefix, seq_date, current_val)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, seq_date) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, string(prefix), day).Scan(&num)
	if err != nil {
		return "", fmt.Errorf("next number for %s: %w", prefix, err)
	}

	return corenumerator.Format(prefix, day, num), nil
}

// CurrentValue reads today's counter without touching it.
func (s *Service) CurrentValue(ctx context.Context, prefix corenumerator.Prefix) (int64, error) {
	if _, err := corenumerator.ParsePrefix(string(prefix)); err != nil {
		return 0, err
	}

	day := corenumerator.Day(s.now(), s.loc)
	var num int64
	err := s.querier(ctx).QueryRow(ctx, `
		SELECT current_val FROM sys_sequences WHERE prefix = $1 AND seq_date = $2
	`, string(prefix), day).Scan(&num)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("current value for %s: %w", prefix, err)
	}
	return num, nil
}
