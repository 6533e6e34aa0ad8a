package numerator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "github.com/harpreet-2146/FM-demo-sub001/internal/core/numerator"
)

// Mock objects
type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates sys_sequences keyed by prefix + day.
type mockQuerier struct {
	mu   sync.Mutex
	rows map[string]int64
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{rows: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := args[0].(string) + "|" + args[1].(time.Time).Format(corenumerator.DateLayout)
	if strings.Contains(sql, "INSERT") {
		m.rows[key]++
		return &mockRow{val: m.rows[key]}
	}
	val, ok := m.rows[key]
	if !ok {
		return &mockRow{err: pgx.ErrNoRows}
	}
	return &mockRow{val: val}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestNextNumberResetsPerDayAndPrefix(t *testing.T) {
	q := newMockQuerier()
	clock := &fakeClock{t: time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)}
	svc := New(q, Options{Now: clock.Now})
	ctx := context.Background()

	num, err := svc.NextNumber(ctx, corenumerator.PrefixSRN)
	require.NoError(t, err)
	assert.Equal(t, "SRN-20260105-000001", num)

	num, err = svc.NextNumber(ctx, corenumerator.PrefixSRN)
	require.NoError(t, err)
	assert.Equal(t, "SRN-20260105-000002", num)

	num, err = svc.NextNumber(ctx, corenumerator.PrefixInvoice)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260105-000001", num)

	clock.t = clock.t.Add(24 * time.Hour)
	num, err = svc.NextNumber(ctx, corenumerator.PrefixSRN)
	require.NoError(t, err)
	assert.Equal(t, "SRN-20260106-000001", num)
}

func TestCurrentValueIsAPeek(t *testing.T) {
	q := newMockQuerier()
	clock := &fakeClock{t: time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)}
	svc := New(q, Options{Now: clock.Now})
	ctx := context.Background()

	val, err := svc.CurrentValue(ctx, corenumerator.PrefixDispatch)
	require.NoError(t, err)
	assert.Zero(t, val)

	_, err = svc.NextNumber(ctx, corenumerator.PrefixDispatch)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		val, err = svc.CurrentValue(ctx, corenumerator.PrefixDispatch)
		require.NoError(t, err)
		assert.Equal(t, int64(1), val)
	}
}

func TestNextNumberConcurrentCallersGetDistinctNumbers(t *testing.T) {
	q := newMockQuerier()
	svc := New(q, Options{})
	ctx := context.Background()

	const callers = 50
	var wg sync.WaitGroup
	results := make(chan string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := svc.NextNumber(ctx, corenumerator.PrefixSale)
			if err == nil {
				results <- num
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for num := range results {
		assert.False(t, seen[num], "duplicate number %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, callers)
}

func TestUnknownPrefixRejected(t *testing.T) {
	svc := New(newMockQuerier(), Options{})

	_, err := svc.NextNumber(context.Background(), corenumerator.Prefix("PO"))
	assert.Error(t, err)
}
