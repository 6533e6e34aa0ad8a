package invoice

import (
	"context"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
)

// Repository persists invoices. There is deliberately no update or delete.
type Repository interface {
	// Create inserts an invoice. A second invoice for the same GRN is a Conflict.
	Create(ctx context.Context, inv *Invoice) error

	GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error)

	GetByGRN(ctx context.Context, grnID id.ID) (*Invoice, error)

	ExistsForGRN(ctx context.Context, grnID id.ID) (bool, error)

	List(ctx context.Context, filter ListFilter) ([]Invoice, error)
}
