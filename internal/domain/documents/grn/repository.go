package grn

import (
	"context"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
)

// Repository persists receipts together with their items.
type Repository interface {
	// Create inserts a receipt. A second receipt for the same dispatch is a Conflict.
	Create(ctx context.Context, doc *GRN) error

	GetByID(ctx context.Context, grnID id.ID) (*GRN, error)

	GetForUpdate(ctx context.Context, grnID id.ID) (*GRN, error)

	GetByDispatch(ctx context.Context, dispatchID id.ID) (*GRN, error)

	// Update rewrites the header and the received quantities of the items.
	Update(ctx context.Context, doc *GRN) error

	List(ctx context.Context, filter ListFilter) ([]GRN, error)
}
