package material

import (
	"context"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
)

// Repository persists materials.
type Repository interface {
	// Create inserts a material. A taken code is a Conflict.
	Create(ctx context.Context, m *Material) error

	GetByID(ctx context.Context, materialID id.ID) (*Material, error)

	GetByCode(ctx context.Context, code string) (*Material, error)

	// GetForUpdate reads the row with a lock held until the transaction ends.
	GetForUpdate(ctx context.Context, materialID id.ID) (*Material, error)

	Update(ctx context.Context, m *Material) error

	List(ctx context.Context, filter ListFilter) ([]Material, error)

	ExistsByCode(ctx context.Context, code string) (bool, error)
}
