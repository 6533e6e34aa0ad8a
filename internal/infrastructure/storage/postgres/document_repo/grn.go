package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/grn"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/storage/postgres"
)

const (
	grnTable      = "grns"
	grnItemsTable = "grn_items"
)

const updateReceivedSQL = `
	UPDATE grn_items
	SET received_packets = $1, received_units = $2
	WHERE id = $3 AND grn_id = $4
`

// GRNRepo implements grn.Repository.
type GRNRepo struct {
	docs  *postgres.Table[grn.GRN]
	items lineTable[grn.Item]
	batch *postgres.BatchExecutor
}

// NewGRNRepo creates a new goods receipt repository.
func NewGRNRepo(txm *postgres.TxManager) *GRNRepo {
	return &GRNRepo{
		docs:  postgres.NewTable[grn.GRN](txm, grnTable, "grn"),
		items: newLineTable[grn.Item](txm, grnItemsTable, "grn item", "grn_id"),
		batch: postgres.NewBatchExecutor(txm),
	}
}

func (r *GRNRepo) Create(ctx context.Context, doc *grn.GRN) error {
	if err := r.docs.Insert(ctx, doc); err != nil {
		return err
	}
	return r.items.InsertAll(ctx, doc.Items)
}

func (r *GRNRepo) GetByID(ctx context.Context, grnID id.ID) (*grn.GRN, error) {
	return r.get(ctx, byID(r.docs, grnID), grnID)
}

func (r *GRNRepo) GetForUpdate(ctx context.Context, grnID id.ID) (*grn.GRN, error) {
	return r.get(ctx, forUpdate(r.docs, grnID), grnID)
}

func (r *GRNRepo) GetByDispatch(ctx context.Context, dispatchID id.ID) (*grn.GRN, error) {
	return r.get(ctx, r.docs.Select().Where(squirrel.Eq{"dispatch_id": dispatchID}), "dispatch "+dispatchID.String())
}

// Update rewrites the header and the received quantities in one batch.
// Must run inside a transaction.
func (r *GRNRepo) Update(ctx context.Context, doc *grn.GRN) error {
	err := r.docs.Update(ctx, doc, squirrel.Eq{"id": doc.ID},
		"number", "dispatch_id", "retailer_id", "manufacturer_id")
	if err != nil {
		return err
	}

	queries := make([]postgres.BatchQuery, 0, len(doc.Items))
	for _, item := range doc.Items {
		queries = append(queries, postgres.BatchQuery{
			SQL:    updateReceivedSQL,
			Args:   []any{item.ReceivedPackets, item.ReceivedUnits, item.ID, doc.ID},
			Expect: 1,
		})
	}
	return r.batch.ExecuteBatch(ctx, queries)
}

func (r *GRNRepo) List(ctx context.Context, filter grn.ListFilter) ([]grn.GRN, error) {
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

func (r *GRNRepo) get(ctx context.Context, q squirrel.SelectBuilder, key any) (*grn.GRN, error) {
	doc, err := r.docs.Get(ctx, q, key)
	if err != nil {
		return nil, err
	}
	if doc.Items, err = r.items.load(ctx, doc.ID); err != nil {
		return nil, err
	}
	return doc, nil
}

var _ grn.Repository = (*GRNRepo)(nil)
