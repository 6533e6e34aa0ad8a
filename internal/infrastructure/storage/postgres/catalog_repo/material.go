// Package catalog_repo provides the PostgreSQL material catalog.
package catalog_repo

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/catalog/material"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/storage/postgres"
)

const materialsTable = "materials"

// MaterialRepo implements material.Repository.
type MaterialRepo struct {
	*postgres.Table[material.Material]
}

// NewMaterialRepo creates a new material repository.
func NewMaterialRepo(txm *postgres.TxManager) *MaterialRepo {
	return &MaterialRepo{Table: postgres.NewTable[material.Material](txm, materialsTable, "material")}
}

// Create inserts a material. A taken code is a Conflict.
func (r *MaterialRepo) Create(ctx context.Context, m *material.Material) error {
	return duplicateCode(r.Insert(ctx, m), m.Code)
}

func (r *MaterialRepo) GetByID(ctx context.Context, materialID id.ID) (*material.Material, error) {
	return r.Get(ctx, r.Select().Where(squirrel.Eq{"id": materialID}), materialID)
}

func (r *MaterialRepo) GetByCode(ctx context.Context, code string) (*material.Material, error) {
	return r.Get(ctx, r.Select().Where(squirrel.Eq{"code": code}), code)
}

// GetForUpdate locks the row until the transaction ends.
func (r *MaterialRepo) GetForUpdate(ctx context.Context, materialID id.ID) (*material.Material, error) {
	return r.Get(ctx, r.Select().Where(squirrel.Eq{"id": materialID}).Suffix("FOR UPDATE"), materialID)
}

// Update rewrites the mutable columns. units_per_packet is never written back.
func (r *MaterialRepo) Update(ctx context.Context, m *material.Material) error {
	return duplicateCode(r.Table.Update(ctx, m, squirrel.Eq{"id": m.ID}, "units_per_packet"), m.Code)
}

func (r *MaterialRepo) List(ctx context.Context, filter material.ListFilter) ([]material.Material, error) {
	return r.All(ctx, r.listQuery(filter))
}

func (r *MaterialRepo) listQuery(filter material.ListFilter) squirrel.SelectBuilder {
	q := r.Select()
	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"code": pattern},
			squirrel.ILike{"name": pattern},
		})
	}
	page := filter.Page.Normalize()
	return postgres.Paginate(q.OrderBy("code"), page.Limit, page.Offset)
}

func (r *MaterialRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return r.Exists(ctx, squirrel.Eq{"code": code})
}

func duplicateCode(err error, code string) error {
	if apperror.HasCode(err, apperror.CodeConflict) {
		return apperror.NewDuplicate("material", "code", code).WithCause(err)
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ material.Repository = (*MaterialRepo)(nil)
