package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/money"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/sale"
)

var _ sale.Repository = (*SaleRepo)(nil)

// SaleRepo stores sales and their commissions.
type SaleRepo struct {
	s *Store
}

// NewSaleRepo creates the repository.
func (s *Store) NewSaleRepo() *SaleRepo {
	return &SaleRepo{s: s}
}

func (r *SaleRepo) CreateSale(ctx context.Context, s *sale.Sale) error {
	return r.s.write(ctx, func(st *state) error {
		st.sales[s.ID] = *s
		return nil
	})
}

func (r *SaleRepo) GetSale(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	var out *sale.Sale
	err := r.s.read(ctx, func(st *state) error {
		s, ok := st.sales[saleID]
		if !ok {
			return apperror.NewNotFound("sale", saleID.String())
		}
		out = &s
		return nil
	})
	return out, err
}

func (r *SaleRepo) ListSales(ctx context.Context, filter sale.SaleFilter) ([]sale.Sale, error) {
	var out []sale.Sale
	err := r.s.read(ctx, func(st *state) error {
		all := sortedValues(st.sales, func(s sale.Sale) bool {
			return matchID(filter.RetailerID, s.RetailerID) && matchID(filter.MaterialID, s.MaterialID)
		}, func(a, b sale.Sale) int { return newest(a.Document, b.Document) })
		out = domain.Window(all, filter.Page)
		return nil
	})
	return out, err
}

func (r *SaleRepo) CreateCommission(ctx context.Context, c *sale.Commission) error {
	return r.s.write(ctx, func(st *state) error {
		for _, existing := range st.commissions {
			if existing.SaleID == c.SaleID {
				return apperror.NewConflict("commission already exists for this sale").
					WithDetail("sale_id", c.SaleID.String())
			}
		}
		st.commissions[c.ID] = *c
		return nil
	})
}

func (r *SaleRepo) GetCommissionForUpdate(ctx context.Context, commissionID id.ID) (*sale.Commission, error) {
	var out *sale.Commission
	err := r.s.read(ctx, func(st *state) error {
		c, ok := st.commissions[commissionID]
		if !ok {
			return apperror.NewNotFound("commission", commissionID.String())
		}
		out = &c
		return nil
	})
	return out, err
}

func oldestCommission(a, b sale.Commission) int {
	return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.SaleNumber, b.SaleNumber))
}

func (r *SaleRepo) ListPendingForUpdate(ctx context.Context, retailerID id.ID) ([]sale.Commission, error) {
	var out []sale.Commission
	err := r.s.read(ctx, func(st *state) error {
		out = sortedValues(st.commissions, func(c sale.Commission) bool {
			return c.RetailerID == retailerID && c.Status == sale.CommissionPending
		}, oldestCommission)
		return nil
	})
	return out, err
}

func (r *SaleRepo) UpdateCommission(ctx context.Context, c *sale.Commission) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.commissions[c.ID]; !ok {
			return apperror.NewNotFound("commission", c.ID.String())
		}
		st.commissions[c.ID] = *c
		return nil
	})
}

func (r *SaleRepo) ListCommissions(ctx context.Context, filter sale.CommissionFilter) ([]sale.Commission, error) {
	var out []sale.Commission
	err := r.s.read(ctx, func(st *state) error {
		all := sortedValues(st.commissions, func(c sale.Commission) bool {
			if filter.Status != "" && c.Status != filter.Status {
				return false
			}
			return matchID(filter.RetailerID, c.RetailerID)
		}, func(a, b sale.Commission) int { return oldestCommission(b, a) })
		out = domain.Window(all, filter.Page)
		return nil
	})
	return out, err
}

func (r *SaleRepo) Summarize(ctx context.Context, retailerID *id.ID) ([]sale.Summary, error) {
	var out []sale.Summary
	err := r.s.read(ctx, func(st *state) error {
		byRetailer := make(map[id.ID]*sale.Summary)
		for _, c := range st.commissions {
			if !matchID(retailerID, c.RetailerID) {
				continue
			}
			sum, ok := byRetailer[c.RetailerID]
			if !ok {
				sum = &sale.Summary{RetailerID: c.RetailerID, PendingAmount: money.Zero(), PaidAmount: money.Zero()}
				byRetailer[c.RetailerID] = sum
			}
			if c.Status == sale.CommissionPaid {
				sum.PaidCount++
				sum.PaidAmount = sum.PaidAmount.Add(c.Amount)
			} else {
				sum.PendingCount++
				sum.PendingAmount = sum.PendingAmount.Add(c.Amount)
			}
		}
		out = make([]sale.Summary, 0, len(byRetailer))
		for _, sum := range byRetailer {
			out = append(out, *sum)
		}
		slices.SortFunc(out, func(a, b sale.Summary) int {
			return cmp.Compare(a.RetailerID.String(), b.RetailerID.String())
		})
		return nil
	})
	return out, err
}
