package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/entity"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/dispatch"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/grn"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/invoice"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/returns"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/srn"
)

// newest orders documents newest first.
func newest(a, b entity.Document) int {
	return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.Number, a.Number))
}

func partyMatch(status, want string, retailer, manufacturer *id.ID, r, m id.ID) bool {
	if want != "" && status != want {
		return false
	}
	return matchID(retailer, r) && matchID(manufacturer, m)
}

// --- SRN ---

var _ srn.Repository = (*SRNRepo)(nil)

// SRNRepo stores requisitions.
type SRNRepo struct {
	s *Store
}

// NewSRNRepo creates the repository.
func (s *Store) NewSRNRepo() *SRNRepo {
	return &SRNRepo{s: s}
}

func copySRN(d srn.SRN) srn.SRN {
	d.Lines = slices.Clone(d.Lines)
	return d
}

func (r *SRNRepo) Create(ctx context.Context, doc *srn.SRN) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.srns[doc.ID]; ok {
			return apperror.NewConflict("srn already exists")
		}
		st.srns[doc.ID] = copySRN(*doc)
		return nil
	})
}

func (r *SRNRepo) GetByID(ctx context.Context, srnID id.ID) (*srn.SRN, error) {
	var out *srn.SRN
	err := r.s.read(ctx, func(st *state) error {
		d, ok := st.srns[srnID]
		if !ok {
			return apperror.NewNotFound("srn", srnID.String())
		}
		d = copySRN(d)
		out = &d
		return nil
	})
	return out, err
}

func (r *SRNRepo) GetForUpdate(ctx context.Context, srnID id.ID) (*srn.SRN, error) {
	return r.GetByID(ctx, srnID)
}

func (r *SRNRepo) Update(ctx context.Context, doc *srn.SRN) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.srns[doc.ID]; !ok {
			return apperror.NewNotFound("srn", doc.ID.String())
		}
		st.srns[doc.ID] = copySRN(*doc)
		return nil
	})
}

func (r *SRNRepo) List(ctx context.Context, filter srn.ListFilter) ([]srn.SRN, error) {
	var out []srn.SRN
	err := r.s.read(ctx, func(st *state) error {
		all := sortedValues(st.srns, func(d srn.SRN) bool {
			if filter.Status != "" && d.Status != filter.Status {
				return false
			}
			if !matchID(filter.RetailerID, d.RetailerID) {
				return false
			}
			if filter.ManufacturerID != nil && (d.ManufacturerID == nil || *d.ManufacturerID != *filter.ManufacturerID) {
				return false
			}
			return true
		}, func(a, b srn.SRN) int { return newest(a.Document, b.Document) })
		for _, d := range domain.Window(all, filter.Page) {
			out = append(out, copySRN(d))
		}
		return nil
	})
	return out, err
}

// --- Dispatch ---

var _ dispatch.Repository = (*DispatchRepo)(nil)

// DispatchRepo stores dispatch orders.
type DispatchRepo struct {
	s *Store
}

// NewDispatchRepo creates the repository.
func (s *Store) NewDispatchRepo() *DispatchRepo {
	return &DispatchRepo{s: s}
}

func copyOrder(o dispatch.Order) dispatch.Order {
	o.Items = slices.Clone(o.Items)
	return o
}

func orderForSRN(st *state, srnID id.ID) (dispatch.Order, bool) {
	for _, o := range st.dispatches {
		if o.SRNID == srnID {
			return o, true
		}
	}
	return dispatch.Order{}, false
}

func (r *DispatchRepo) Create(ctx context.Context, order *dispatch.Order) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := orderForSRN(st, order.SRNID); ok {
			return apperror.NewConflict("dispatch order already exists for this SRN").
				WithDetail("srn_id", order.SRNID.String())
		}
		st.dispatches[order.ID] = copyOrder(*order)
		return nil
	})
}

func (r *DispatchRepo) GetByID(ctx context.Context, dispatchID id.ID) (*dispatch.Order, error) {
	var out *dispatch.Order
	err := r.s.read(ctx, func(st *state) error {
		o, ok := st.dispatches[dispatchID]
		if !ok {
			return apperror.NewNotFound("dispatch", dispatchID.String())
		}
		o = copyOrder(o)
		out = &o
		return nil
	})
	return out, err
}

func (r *DispatchRepo) GetForUpdate(ctx context.Context, dispatchID id.ID) (*dispatch.Order, error) {
	return r.GetByID(ctx, dispatchID)
}

func (r *DispatchRepo) GetBySRN(ctx context.Context, srnID id.ID) (*dispatch.Order, error) {
	var out *dispatch.Order
	err := r.s.read(ctx, func(st *state) error {
		o, ok := orderForSRN(st, srnID)
		if !ok {
			return apperror.NewNotFound("dispatch", srnID.String())
		}
		o = copyOrder(o)
		out = &o
		return nil
	})
	return out, err
}

func (r *DispatchRepo) ExistsForSRN(ctx context.Context, srnID id.ID) (bool, error) {
	var found bool
	err := r.s.read(ctx, func(st *state) error {
		_, found = orderForSRN(st, srnID)
		return nil
	})
	return found, err
}

func (r *DispatchRepo) Update(ctx context.Context, order *dispatch.Order) error {
	return r.s.write(ctx, func(st *state) error {
		prev, ok := st.dispatches[order.ID]
		if !ok {
			return apperror.NewNotFound("dispatch", order.ID.String())
		}
		next := *order
		next.Items = prev.Items
		st.dispatches[order.ID] = next
		return nil
	})
}

func (r *DispatchRepo) List(ctx context.Context, filter dispatch.ListFilter) ([]dispatch.Order, error) {
	var out []dispatch.Order
	err := r.s.read(ctx, func(st *state) error {
		all := sortedValues(st.dispatches, func(o dispatch.Order) bool {
			return partyMatch(string(o.Status), string(filter.Status),
				filter.RetailerID, filter.ManufacturerID, o.RetailerID, o.ManufacturerID)
		}, func(a, b dispatch.Order) int { return newest(a.Document, b.Document) })
		for _, o := range domain.Window(all, filter.Page) {
			out = append(out, copyOrder(o))
		}
		return nil
	})
	return out, err
}

// --- GRN ---

var _ grn.Repository = (*GRNRepo)(nil)

// GRNRepo stores goods receipts.
type GRNRepo struct {
	s *Store
}

// NewGRNRepo creates the repository.
func (s *Store) NewGRNRepo() *GRNRepo {
	return &GRNRepo{s: s}
}

func copyGRN(g grn.GRN) grn.GRN {
	g.Items = slices.Clone(g.Items)
	return g
}

func grnForDispatch(st *state, dispatchID id.ID) (grn.GRN, bool) {
	for _, g := range st.grns {
		if g.DispatchID == dispatchID {
			return g, true
		}
	}
	return grn.GRN{}, false
}

func (r *GRNRepo) Create(ctx context.Context, doc *grn.GRN) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := grnForDispatch(st, doc.DispatchID); ok {
			return apperror.NewConflict("goods receipt already exists for this dispatch").
				WithDetail("dispatch_id", doc.DispatchID.String())
		}
		st.grns[doc.ID] = copyGRN(*doc)
		return nil
	})
}

func (r *GRNRepo) GetByID(ctx context.Context, grnID id.ID) (*grn.GRN, error) {
	var out *grn.GRN
	err := r.s.read(ctx, func(st *state) error {
		g, ok := st.grns[grnID]
		if !ok {
			return apperror.NewNotFound("grn", grnID.String())
		}
		g = copyGRN(g)
		out = &g
		return nil
	})
	return out, err
}

func (r *GRNRepo) GetForUpdate(ctx context.Context, grnID id.ID) (*grn.GRN, error) {
	return r.GetByID(ctx, grnID)
}

func (r *GRNRepo) GetByDispatch(ctx context.Context, dispatchID id.ID) (*grn.GRN, error) {
	var out *grn.GRN
	err := r.s.read(ctx, func(st *state) error {
		g, ok := grnForDispatch(st, dispatchID)
		if !ok {
			return apperror.NewNotFound("grn", dispatchID.String())
		}
		g = copyGRN(g)
		out = &g
		return nil
	})
	return out, err
}

func (r *GRNRepo) Update(ctx context.Context, doc *grn.GRN) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.grns[doc.ID]; !ok {
			return apperror.NewNotFound("grn", doc.ID.String())
		}
		st.grns[doc.ID] = copyGRN(*doc)
		return nil
	})
}

func (r *GRNRepo) List(ctx context.Context, filter grn.ListFilter) ([]grn.GRN, error) {
	var out []grn.GRN
	err := r.s.read(ctx, func(st *state) error {
		all := sortedValues(st.grns, func(g grn.GRN) bool {
			return partyMatch(string(g.Status), string(filter.Status),
				filter.RetailerID, filter.ManufacturerID, g.RetailerID, g.ManufacturerID)
		}, func(a, b grn.GRN) int { return newest(a.Document, b.Document) })
		for _, g := range domain.Window(all, filter.Page) {
			out = append(out, copyGRN(g))
		}
		return nil
	})
	return out, err
}

// --- Invoice ---

var _ invoice.Repository = (*InvoiceRepo)(nil)

// InvoiceRepo stores invoices. Rows are insert-only.
type InvoiceRepo struct {
	s *Store
}

// NewInvoiceRepo creates the repository.
func (s *Store) NewInvoiceRepo() *InvoiceRepo {
	return &InvoiceRepo{s: s}
}

func copyInvoice(inv invoice.Invoice) invoice.Invoice {
	inv.Items = slices.Clone(inv.Items)
	return inv
}

func invoiceForGRN(st *state, grnID id.ID) (invoice.Invoice, bool) {
	for _, inv := range st.invoices {
		if inv.GRNID == grnID {
			return inv, true
		}
	}
	return invoice.Invoice{}, false
}

func (r *InvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := invoiceForGRN(st, inv.GRNID); ok {
			return apperror.NewConflict("invoice already exists for this goods receipt").
				WithDetail("grn_id", inv.GRNID.String())
		}
		st.invoices[inv.ID] = copyInvoice(*inv)
		return nil
	})
}

func (r *InvoiceRepo) GetByID(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	var out *invoice.Invoice
	err := r.s.read(ctx, func(st *state) error {
		inv, ok := st.invoices[invoiceID]
		if !ok {
			return apperror.NewNotFound("invoice", invoiceID.String())
		}
		inv = copyInvoice(inv)
		out = &inv
		return nil
	})
	return out, err
}

func (r *InvoiceRepo) GetByGRN(ctx context.Context, grnID id.ID) (*invoice.Invoice, error) {
	var out *invoice.Invoice
	err := r.s.read(ctx, func(st *state) error {
		inv, ok := invoiceForGRN(st, grnID)
		if !ok {
			return apperror.NewNotFound("invoice", grnID.String())
		}
		inv = copyInvoice(inv)
		out = &inv
		return nil
	})
	return out, err
}

func (r *InvoiceRepo) ExistsForGRN(ctx context.Context, grnID id.ID) (bool, error) {
	var found bool
	err := r.s.read(ctx, func(st *state) error {
		_, found = invoiceForGRN(st, grnID)
		return nil
	})
	return found, err
}

func (r *InvoiceRepo) List(ctx context.Context, filter invoice.ListFilter) ([]invoice.Invoice, error) {
	var out []invoice.Invoice
	err := r.s.read(ctx, func(st *state) error {
		all := sortedValues(st.invoices, func(inv invoice.Invoice) bool {
			return partyMatch("", "", filter.RetailerID, filter.ManufacturerID, inv.RetailerID, inv.ManufacturerID)
		}, func(a, b invoice.Invoice) int { return newest(a.Document, b.Document) })
		for _, inv := range domain.Window(all, filter.Page) {
			out = append(out, copyInvoice(inv))
		}
		return nil
	})
	return out, err
}

// --- Returns ---

var _ returns.Repository = (*ReturnRepo)(nil)

// ReturnRepo stores returns.
type ReturnRepo struct {
	s *Store
}

// NewReturnRepo creates the repository.
func (s *Store) NewReturnRepo() *ReturnRepo {
	return &ReturnRepo{s: s}
}

func copyReturn(r returns.Return) returns.Return {
	r.Items = slices.Clone(r.Items)
	return r
}

func (r *ReturnRepo) Create(ctx context.Context, ret *returns.Return) error {
	return r.s.write(ctx, func(st *state) error {
		st.returns[ret.ID] = copyReturn(*ret)
		return nil
	})
}

func (r *ReturnRepo) GetByID(ctx context.Context, returnID id.ID) (*returns.Return, error) {
	var out *returns.Return
	err := r.s.read(ctx, func(st *state) error {
		ret, ok := st.returns[returnID]
		if !ok {
			return apperror.NewNotFound("return", returnID.String())
		}
		ret = copyReturn(ret)
		out = &ret
		return nil
	})
	return out, err
}

func (r *ReturnRepo) GetForUpdate(ctx context.Context, returnID id.ID) (*returns.Return, error) {
	return r.GetByID(ctx, returnID)
}

func (r *ReturnRepo) Update(ctx context.Context, ret *returns.Return) error {
	return r.s.write(ctx, func(st *state) error {
		prev, ok := st.returns[ret.ID]
		if !ok {
			return apperror.NewNotFound("return", ret.ID.String())
		}
		next := *ret
		next.Items = prev.Items
		st.returns[ret.ID] = next
		return nil
	})
}

func (r *ReturnRepo) List(ctx context.Context, filter returns.ListFilter) ([]returns.Return, error) {
	var out []returns.Return
	err := r.s.read(ctx, func(st *state) error {
		all := sortedValues(st.returns, func(ret returns.Return) bool {
			return partyMatch(string(ret.Status), string(filter.Status),
				filter.RetailerID, filter.ManufacturerID, ret.RetailerID, ret.ManufacturerID)
		}, func(a, b returns.Return) int { return newest(a.Document, b.Document) })
		for _, ret := range domain.Window(all, filter.Page) {
			out = append(out, copyReturn(ret))
		}
		return nil
	})
	return out, err
}
