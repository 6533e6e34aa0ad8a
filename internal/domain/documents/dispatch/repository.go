package dispatch

import (
	"context"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
)

// Repository persists dispatch orders together with their items.
type Repository interface {
	// Create inserts an order. A second order for the same SRN is a Conflict.
	Create(ctx context.Context, order *Order) error

	GetByID(ctx context.Context, dispatchID id.ID) (*Order, error)

	GetForUpdate(ctx context.Context, dispatchID id.ID) (*Order, error)

	GetBySRN(ctx context.Context, srnID id.ID) (*Order, error)

	ExistsForSRN(ctx context.Context, srnID id.ID) (bool, error)

	// Update rewrites the header. Items are frozen at creation.
	Update(ctx context.Context, order *Order) error

	List(ctx context.Context, filter ListFilter) ([]Order, error)
}
