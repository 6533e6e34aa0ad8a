package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/srn"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/storage/postgres"
)

const (
	srnTable      = "srns"
	srnLinesTable = "srn_lines"
)

// SRNRepo implements srn.Repository.
type SRNRepo struct {
	docs  *postgres.Table[srn.SRN]
	lines lineTable[srn.Line]
}

// NewSRNRepo creates a new requisition repository.
func NewSRNRepo(txm *postgres.TxManager) *SRNRepo {
	return &SRNRepo{
		docs:  postgres.NewTable[srn.SRN](txm, srnTable, "srn"),
		lines: newLineTable[srn.Line](txm, srnLinesTable, "srn line", "srn_id"),
	}
}

func (r *SRNRepo) Create(ctx context.Context, doc *srn.SRN) error {
	if err := r.docs.Insert(ctx, doc); err != nil {
		return err
	}
	return r.lines.InsertAll(ctx, doc.Lines)
}

func (r *SRNRepo) GetByID(ctx context.Context, srnID id.ID) (*srn.SRN, error) {
	return r.get(ctx, byID(r.docs, srnID), srnID)
}

func (r *SRNRepo) GetForUpdate(ctx context.Context, srnID id.ID) (*srn.SRN, error) {
	return r.get(ctx, forUpdate(r.docs, srnID), srnID)
}

// Update rewrites the header and replaces every line.
func (r *SRNRepo) Update(ctx context.Context, doc *srn.SRN) error {
	if err := r.docs.Update(ctx, doc, squirrel.Eq{"id": doc.ID}, "number", "retailer_id"); err != nil {
		return err
	}
	return r.lines.replace(ctx, doc.ID, doc.Lines)
}

func (r *SRNRepo) List(ctx context.Context, filter srn.ListFilter) ([]srn.SRN, error) {
	docs, err := r.docs.All(ctx, r.listQuery(filter))
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].Lines, err = r.lines.load(ctx, docs[i].ID); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func (r *SRNRepo) listQuery(filter srn.ListFilter) squirrel.SelectBuilder {
	return listQuery(r.docs.Select(), partyFilter{
		Status:         string(filter.Status),
		RetailerID:     filter.RetailerID,
		ManufacturerID: filter.ManufacturerID,
		Page:           filter.Page,
	})
}

func (r *SRNRepo) get(ctx context.Context, q squirrel.SelectBuilder, srnID id.ID) (*srn.SRN, error) {
	doc, err := r.docs.Get(ctx, q, srnID)
	if err != nil {
		return nil, err
	}
	if doc.Lines, err = r.lines.load(ctx, doc.ID); err != nil {
		return nil, err
	}
	return doc, nil
}

var _ srn.Repository = (*SRNRepo)(nil)
