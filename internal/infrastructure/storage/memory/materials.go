package memory

import (
	"cmp"
	"context"
	"strings"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/catalog/material"
)

var _ material.Repository = (*MaterialRepo)(nil)

// MaterialRepo stores the catalog.
type MaterialRepo struct {
	s *Store
}

// NewMaterialRepo creates the repository.
func (s *Store) NewMaterialRepo() *MaterialRepo {
	return &MaterialRepo{s: s}
}

func codeTaken(st *state, code string, except id.ID) bool {
	for _, m := range st.materials {
		if m.Code == code && m.ID != except {
			return true
		}
	}
	return false
}

func (r *MaterialRepo) Create(ctx context.Context, m *material.Material) error {
	return r.s.write(ctx, func(st *state) error {
		if codeTaken(st, m.Code, id.Nil()) {
			return apperror.NewDuplicate("material", "code", m.Code)
		}
		st.materials[m.ID] = *m
		return nil
	})
}

func (r *MaterialRepo) GetByID(ctx context.Context, materialID id.ID) (*material.Material, error) {
	var out *material.Material
	err := r.s.read(ctx, func(st *state) error {
		m, ok := st.materials[materialID]
		if !ok {
			return apperror.NewNotFound("material", materialID.String())
		}
		out = &m
		return nil
	})
	return out, err
}

func (r *MaterialRepo) GetByCode(ctx context.Context, code string) (*material.Material, error) {
	var out *material.Material
	err := r.s.read(ctx, func(st *state) error {
		for _, m := range st.materials {
			if m.Code == code {
				out = &m
				return nil
			}
		}
		return apperror.NewNotFound("material", code)
	})
	return out, err
}

// GetForUpdate is GetByID: the transaction already holds the store lock.
func (r *MaterialRepo) GetForUpdate(ctx context.Context, materialID id.ID) (*material.Material, error) {
	return r.GetByID(ctx, materialID)
}

func (r *MaterialRepo) Update(ctx context.Context, m *material.Material) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.materials[m.ID]; !ok {
			return apperror.NewNotFound("material", m.ID.String())
		}
		if codeTaken(st, m.Code, m.ID) {
			return apperror.NewDuplicate("material", "code", m.Code)
		}
		st.materials[m.ID] = *m
		return nil
	})
}

func (r *MaterialRepo) List(ctx context.Context, filter material.ListFilter) ([]material.Material, error) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []material.Material
	err := r.s.read(ctx, func(st *state) error {
		all := sortedValues(st.materials, func(m material.Material) bool {
			if filter.ActiveOnly && !m.IsActive {
				return false
			}
			if search == "" {
				return true
			}
			return strings.Contains(strings.ToLower(m.Code), search) ||
				strings.Contains(strings.ToLower(m.Name), search)
		}, func(a, b material.Material) int {
			return cmp.Compare(a.Code, b.Code)
		})
		out = domain.Window(all, filter.Page)
		return nil
	})
	return out, err
}

func (r *MaterialRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var found bool
	err := r.s.read(ctx, func(st *state) error {
		found = codeTaken(st, code, id.Nil())
		return nil
	})
	return found, err
}
