package returns

import (
	"context"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
)

// Repository persists returns together with their items.
type Repository interface {
	Create(ctx context.Context, r *Return) error

	GetByID(ctx context.Context, returnID id.ID) (*Return, error)

	GetForUpdate(ctx context.Context, returnID id.ID) (*Return, error)

	// Update rewrites the header. Items are fixed at creation.
	Update(ctx context.Context, r *Return) error

	List(ctx context.Context, filter ListFilter) ([]Return, error)
}
