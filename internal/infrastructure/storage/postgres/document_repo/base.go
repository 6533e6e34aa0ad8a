// Package document_repo provides PostgreSQL implementations for document repositories.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/storage/postgres"
)

// lineTable stores the line items of one document type. Lines are keyed by
// their parent through fk and ordered by line_no.
type lineTable[L any] struct {
	*postgres.Table[L]
	fk string
}

func newLineTable[L any](txm *postgres.TxManager, table, entity, fk string) lineTable[L] {
	return lineTable[L]{Table: postgres.NewTable[L](txm, table, entity), fk: fk}
}

// load reads the lines of one document.
func (t lineTable[L]) load(ctx context.Context, docID id.ID) ([]L, error) {
	return t.All(ctx, t.Select().Where(squirrel.Eq{t.fk: docID}).OrderBy("line_no"))
}

// replace deletes the existing lines and inserts rows.
func (t lineTable[L]) replace(ctx context.Context, docID id.ID, rows []L) error {
	if _, err := t.Exec(ctx, t.Builder().Delete(t.Name()).Where(squirrel.Eq{t.fk: docID})); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}
	return t.InsertAll(ctx, rows)
}

// partyFilter holds the filters shared by every document listing.
type partyFilter struct {
	Status         string
	RetailerID     *id.ID
	ManufacturerID *id.ID
	Page           domain.Page
}

// listQuery applies f to q and orders newest first.
func listQuery(q squirrel.SelectBuilder, f partyFilter) squirrel.SelectBuilder {
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": f.Status})
	}
	if f.RetailerID != nil {
		q = q.Where(squirrel.Eq{"retailer_id": *f.RetailerID})
	}
	if f.ManufacturerID != nil {
		q = q.Where(squirrel.Eq{"manufacturer_id": *f.ManufacturerID})
	}
	page := f.Page.Normalize()
	return postgres.Paginate(q.OrderBy("created_at DESC", "number DESC"), page.Limit, page.Offset)
}

// byID selects the row with the given primary key.
func byID[T any](t *postgres.Table[T], docID id.ID) squirrel.SelectBuilder {
	return t.Select().Where(squirrel.Eq{"id": docID})
}

// forUpdate selects the row with the given primary key and locks it.
func forUpdate[T any](t *postgres.Table[T], docID id.ID) squirrel.SelectBuilder {
	return byID(t, docID).Suffix("FOR UPDATE")
}
