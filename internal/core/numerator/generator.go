package numerator

import "context"

// Generator issues human-readable document numbers of the form PREFIX-YYYYMMDD-NNNNNN.
//
// The counter resets per calendar day per prefix. Implementations must be atomic
// under concurrent callers: two callers never receive the same number. When ctx
// carries a transaction, the increment participates in it.
type Generator interface {
	// NextNumber increments today's counter for prefix and returns the formatted number.
	NextNumber(ctx context.Context, prefix Prefix) (string, error)

	// CurrentValue returns today's counter for prefix without changing it (0 if unused today).
	CurrentValue(ctx context.Context, prefix Prefix) (int64, error)
}
