package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/sale"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/storage/postgres"
)

const (
	salesTable       = "sales"
	commissionsTable = "commissions"
)

// SaleRepo implements sale.Repository. commissions.sale_id is unique, so a
// sale accrues exactly one commission.
type SaleRepo struct {
	sales       *postgres.Table[sale.Sale]
	commissions *postgres.Table[sale.Commission]
	summaries   *postgres.Table[sale.Summary]
}

// NewSaleRepo creates a new sale and commission repository.
func NewSaleRepo(txm *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		sales:       postgres.NewTable[sale.Sale](txm, salesTable, "sale"),
		commissions: postgres.NewTable[sale.Commission](txm, commissionsTable, "commission"),
		summaries:   postgres.NewTable[sale.Summary](txm, commissionsTable, "commission summary"),
	}
}

func (r *SaleRepo) CreateSale(ctx context.Context, s *sale.Sale) error {
	return r.sales.Insert(ctx, s)
}

func (r *SaleRepo) GetSale(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	return r.sales.Get(ctx, byID(r.sales, saleID), saleID)
}

func (r *SaleRepo) ListSales(ctx context.Context, filter sale.SaleFilter) ([]sale.Sale, error) {
	return r.sales.All(ctx, r.salesQuery(filter))
}

func (r *SaleRepo) salesQuery(filter sale.SaleFilter) squirrel.SelectBuilder {
	q := r.sales.Select()
	if filter.MaterialID != nil {
		q = q.Where(squirrel.Eq{"material_id": *filter.MaterialID})
	}
	return listQuery(q, partyFilter{RetailerID: filter.RetailerID, Page: filter.Page})
}

func (r *SaleRepo) CreateCommission(ctx context.Context, c *sale.Commission) error {
	return r.commissions.Insert(ctx, c)
}

func (r *SaleRepo) GetCommissionForUpdate(ctx context.Context, commissionID id.ID) (*sale.Commission, error) {
	return r.commissions.Get(ctx, forUpdate(r.commissions, commissionID), commissionID)
}

// ListPendingForUpdate locks the pending commissions of a retailer, oldest first.
func (r *SaleRepo) ListPendingForUpdate(ctx context.Context, retailerID id.ID) ([]sale.Commission, error) {
	q := r.commissions.Select().
		Where(squirrel.Eq{"retailer_id": retailerID}).
		Where(squirrel.Eq{"status": sale.CommissionPending}).
		OrderBy("created_at", "id").
		Suffix("FOR UPDATE")
	return r.commissions.All(ctx, q)
}

func (r *SaleRepo) UpdateCommission(ctx context.Context, c *sale.Commission) error {
	return r.commissions.Update(ctx, c, squirrel.Eq{"id": c.ID},
		"sale_id", "sale_number", "retailer_id", "material_id",
		"commission_type", "commission_value", "units", "unit_price", "amount")
}

func (r *SaleRepo) ListCommissions(ctx context.Context, filter sale.CommissionFilter) ([]sale.Commission, error) {
	return r.commissions.All(ctx, r.commissionsQuery(filter))
}

func (r *SaleRepo) commissionsQuery(filter sale.CommissionFilter) squirrel.SelectBuilder {
	q := r.commissions.Select()
	if filter.RetailerID != nil {
		q = q.Where(squirrel.Eq{"retailer_id": *filter.RetailerID})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	page := filter.Page.Normalize()
	return postgres.Paginate(q.OrderBy("created_at DESC", "id DESC"), page.Limit, page.Offset)
}

// Summarize aggregates commissions per retailer in one pass.
func (r *SaleRepo) Summarize(ctx context.Context, retailerID *id.ID) ([]sale.Summary, error) {
	return r.summaries.All(ctx, r.summaryQuery(retailerID))
}

func (r *SaleRepo) summaryQuery(retailerID *id.ID) squirrel.SelectBuilder {
	q := r.summaries.Builder().
		Select(
			"retailer_id",
			"COUNT(*) FILTER (WHERE status = 'PENDING') AS pending_count",
			"COALESCE(SUM(amount) FILTER (WHERE status = 'PENDING'), 0) AS pending_amount",
			"COUNT(*) FILTER (WHERE status = 'PAID') AS paid_count",
			"COALESCE(SUM(amount) FILTER (WHERE status = 'PAID'), 0) AS paid_amount",
		).
		From(commissionsTable)
	if retailerID != nil {
		q = q.Where(squirrel.Eq{"retailer_id": *retailerID})
	}
	return q.GroupBy("retailer_id").OrderBy("retailer_id::text")
}

var _ sale.Repository = (*SaleRepo)(nil)
