package sale

import (
	"context"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
)

// Repository persists sales and commissions.
type Repository interface {
	CreateSale(ctx context.Context, s *Sale) error

	GetSale(ctx context.Context, saleID id.ID) (*Sale, error)

	ListSales(ctx context.Context, filter SaleFilter) ([]Sale, error)

	CreateCommission(ctx context.Context, c *Commission) error

	GetCommissionForUpdate(ctx context.Context, commissionID id.ID) (*Commission, error)

	// ListPendingForUpdate locks and returns every PENDING commission of a retailer.
	ListPendingForUpdate(ctx context.Context, retailerID id.ID) ([]Commission, error)

	UpdateCommission(ctx context.Context, c *Commission) error

	ListCommissions(ctx context.Context, filter CommissionFilter) ([]Commission, error)

	// Summarize groups commissions per retailer; nil retailerID covers everyone.
	Summarize(ctx context.Context, retailerID *id.ID) ([]Summary, error)
}
