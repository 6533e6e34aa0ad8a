package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/invoice"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/storage/postgres"
)

const (
	invoiceTable      = "invoices"
	invoiceItemsTable = "invoice_items"
)

// InvoiceRepo implements invoice.Repository. Invoices are immutable.
type InvoiceRepo struct {
	docs  *postgres.Table[invoice.Invoice]
	items lineTable[invoice.Item]
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txm *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		docs:  postgres.NewTable[invoice.Invoice](txm, invoiceTable, "invoice"),
		items: newLineTable[invoice.Item](txm, invoiceItemsTable, "invoice item", "invoice_id"),
	}
}

func (r *InvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	if err := r.docs.Insert(ctx, inv); err != nil {
		return err
	}
	return r.items.InsertAll(ctx, inv.Items)
}

func (r *InvoiceRepo) GetByID(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	return r.get(ctx, byID(r.docs, invoiceID), invoiceID)
}

func (r *InvoiceRepo) GetByGRN(ctx context.Context, grnID id.ID) (*invoice.Invoice, error) {
	return r.get(ctx, r.docs.Select().Where(squirrel.Eq{"grn_id": grnID}), "grn "+grnID.String())
}

func (r *InvoiceRepo) ExistsForGRN(ctx context.Context, grnID id.ID) (bool, error) {
	return r.docs.Exists(ctx, squirrel.Eq{"grn_id": grnID})
}

func (r *InvoiceRepo) List(ctx context.Context, filter invoice.ListFilter) ([]invoice.Invoice, error) {
	q := listQuery(r.docs.Select(), partyFilter{
		RetailerID:     filter.RetailerID,
		ManufacturerID: filter.ManufacturerID,
		Page:           filter.Page,
	})
	docs, err := r.docs.All(ctx, q)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].Items, err = r.items.load(ctx, docs[i].ID); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func (r *InvoiceRepo) get(ctx context.Context, q squirrel.SelectBuilder, key any) (*invoice.Invoice, error) {
	inv, err := r.docs.Get(ctx, q, key)
	if err != nil {
		return nil, err
	}
	if inv.Items, err = r.items.load(ctx, inv.ID); err != nil {
		return nil, err
	}
	return inv, nil
}

var _ invoice.Repository = (*InvoiceRepo)(nil)
