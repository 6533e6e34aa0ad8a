package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/dispatch"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/storage/postgres"
)

const (
	dispatchTable      = "dispatch_orders"
	dispatchItemsTable = "dispatch_items"
)

// DispatchRepo implements dispatch.Repository. srn_id is unique, so a second
// order for the same requisition fails with Conflict.
type DispatchRepo struct {
	docs  *postgres.Table[dispatch.Order]
	items lineTable[dispatch.Item]
}

// NewDispatchRepo creates a new dispatch order repository.
func NewDispatchRepo(txm *postgres.TxManager) *DispatchRepo {
	return &DispatchRepo{
		docs:  postgres.NewTable[dispatch.Order](txm, dispatchTable, "dispatch order"),
		items: newLineTable[dispatch.Item](txm, dispatchItemsTable, "dispatch item", "dispatch_id"),
	}
}

func (r *DispatchRepo) Create(ctx context.Context, order *dispatch.Order) error {
	if err := r.docs.Insert(ctx, order); err != nil {
		return err
	}
	return r.items.InsertAll(ctx, order.Items)
}

func (r *DispatchRepo) GetByID(ctx context.Context, dispatchID id.ID) (*dispatch.Order, error) {
	return r.get(ctx, byID(r.docs, dispatchID), dispatchID)
}

func (r *DispatchRepo) GetForUpdate(ctx context.Context, dispatchID id.ID) (*dispatch.Order, error) {
	return r.get(ctx, forUpdate(r.docs, dispatchID), dispatchID)
}

func (r *DispatchRepo) GetBySRN(ctx context.Context, srnID id.ID) (*dispatch.Order, error) {
	return r.get(ctx, r.docs.Select().Where(squirrel.Eq{"srn_id": srnID}), "srn "+srnID.String())
}

func (r *DispatchRepo) ExistsForSRN(ctx context.Context, srnID id.ID) (bool, error) {
	return r.docs.Exists(ctx, squirrel.Eq{"srn_id": srnID})
}

// Update rewrites the header only. Items are frozen at creation.
func (r *DispatchRepo) Update(ctx context.Context, order *dispatch.Order) error {
	return r.docs.Update(ctx, order, squirrel.Eq{"id": order.ID},
		"number", "srn_id", "srn_number", "retailer_id", "manufacturer_id", "subtotal", "created_by")
}

func (r *DispatchRepo) List(ctx context.Context, filter dispatch.ListFilter) ([]dispatch.Order, error) {
	q := listQuery(r.docs.Select(), partyFilter{
		Status:         string(filter.Status),
		RetailerID:     filter.RetailerID,
		ManufacturerID: filter.ManufacturerID,
		Page:           filter.Page,
	})
	orders, err := r.docs.All(ctx, q)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].Items, err = r.items.load(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *DispatchRepo) get(ctx context.Context, q squirrel.SelectBuilder, key any) (*dispatch.Order, error) {
	order, err := r.docs.Get(ctx, q, key)
	if err != nil {
		return nil, err
	}
	if order.Items, err = r.items.load(ctx, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

var _ dispatch.Repository = (*DispatchRepo)(nil)
