package srn

import (
	"context"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
)

// Repository persists requisitions together with their lines.
type Repository interface {
	Create(ctx context.Context, doc *SRN) error

	GetByID(ctx context.Context, srnID id.ID) (*SRN, error)

	// GetForUpdate reads the requisition with its header row locked.
	GetForUpdate(ctx context.Context, srnID id.ID) (*SRN, error)

	// Update rewrites the header and replaces the lines.
	Update(ctx context.Context, doc *SRN) error

	// List returns requisitions newest first.
	List(ctx context.Context, filter ListFilter) ([]SRN, error)
}
