package memory

import (
	"context"
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/numerator"
)

var _ numerator.Generator = (*Numerator)(nil)

// Numerator issues daily document numbers from the store's sequence table.
// Increments join the caller's transaction, so a rolled-back use case does not
// consume a number.
type Numerator struct {
	s   *Store
	loc *time.Location
	now func() time.Time
}

// NewNumerator creates a generator counting days in loc (UTC when nil).
func (s *Store) NewNumerator(loc *time.Location) *Numerator {
	if loc == nil {
		loc = time.UTC
	}
	return &Numerator{s: s, loc: loc, now: time.Now}
}

func (n *Numerator) key(prefix numerator.Prefix) (seqKey, time.Time) {
	day := numerator.Day(n.now(), n.loc)
	return seqKey{prefix: string(prefix), day: day.Format(numerator.DateLayout)}, day
}

// NextNumber implements numerator.Generator.
func (n *Numerator) NextNumber(ctx context.Context, prefix numerator.Prefix) (string, error) {
	if _, err := numerator.ParsePrefix(string(prefix)); err != nil {
		return "", err
	}
	key, day := n.key(prefix)
	var out string
	err := n.s.write(ctx, func(st *state) error {
		st.sequences[key]++
		out = numerator.Format(prefix, day, st.sequences[key])
		return nil
	})
	return out, err
}

// CurrentValue implements numerator.Generator.
func (n *Numerator) CurrentValue(ctx context.Context, prefix numerator.Prefix) (int64, error) {
	if _, err := numerator.ParsePrefix(string(prefix)); err != nil {
		return 0, err
	}
	key, _ := n.key(prefix)
	var v int64
	err := n.s.read(ctx, func(st *state) error {
		v = st.sequences[key]
		return nil
	})
	return v, err
}
