package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/returns"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/storage/postgres"
)

const (
	returnsTable     = "returns"
	returnItemsTable = "return_items"
)

// ReturnRepo implements returns.Repository.
type ReturnRepo struct {
	docs  *postgres.Table[returns.Return]
	items lineTable[returns.Item]
}

// NewReturnRepo creates a new return repository.
func NewReturnRepo(txm *postgres.TxManager) *ReturnRepo {
	return &ReturnRepo{
		docs:  postgres.NewTable[returns.Return](txm, returnsTable, "return"),
		items: newLineTable[returns.Item](txm, returnItemsTable, "return item", "return_id"),
	}
}

func (r *ReturnRepo) Create(ctx context.Context, ret *returns.Return) error {
	if err := r.docs.Insert(ctx, ret); err != nil {
		return err
	}
	return r.items.InsertAll(ctx, ret.Items)
}

func (r *ReturnRepo) GetByID(ctx context.Context, returnID id.ID) (*returns.Return, error) {
	return r.get(ctx, byID(r.docs, returnID), returnID)
}

func (r *ReturnRepo) GetForUpdate(ctx context.Context, returnID id.ID) (*returns.Return, error) {
	return r.get(ctx, forUpdate(r.docs, returnID), returnID)
}

func (r *ReturnRepo) Update(ctx context.Context, ret *returns.Return) error {
	return r.docs.Update(ctx, ret, squirrel.Eq{"id": ret.ID},
		"number", "retailer_id", "manufacturer_id", "grn_id")
}

func (r *ReturnRepo) List(ctx context.Context, filter returns.ListFilter) ([]returns.Return, error) {
	q := listQuery(r.docs.Select(), partyFilter{
		Status:         string(filter.Status),
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

func (r *ReturnRepo) get(ctx context.Context, q squirrel.SelectBuilder, key any) (*returns.Return, error) {
	ret, err := r.docs.Get(ctx, q, key)
	if err != nil {
		return nil, err
	}
	if ret.Items, err = r.items.load(ctx, ret.ID); err != nil {
		return nil, err
	}
	return ret, nil
}

var _ returns.Repository = (*ReturnRepo)(nil)
