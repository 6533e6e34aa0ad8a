// Package dto provides data transfer objects for HTTP API.
package dto

import (
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
)

// --- Pagination ---

// PageQuery is offset pagination from the query string.
type PageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// ToPage converts to the domain page.
func (p PageQuery) ToPage() domain.Page {
	return domain.Page{Limit: p.Limit, Offset: p.Offset}.Normalize()
}

// ListResponse wraps list results with the page that produced them.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NewListResponse wraps items. A nil slice renders as [].
func NewListResponse[T any](items []T, page domain.Page) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Limit: page.Limit, Offset: page.Offset}
}

// --- Quantities ---

// QuantityDTO is a packets + loose units quantity.
type QuantityDTO struct {
	Packets    int64 `json:"packets" binding:"min=0"`
	LooseUnits int64 `json:"looseUnits" binding:"min=0"`
}

// ToQuantity converts to the domain quantity.
func (q QuantityDTO) ToQuantity() inventory.Quantity {
	return inventory.Q(q.Packets, q.LooseUnits)
}

// MaterialLine is a material with a quantity.
type MaterialLine struct {
	MaterialID string      `json:"materialId" binding:"required,uuid"`
	Qty        QuantityDTO `json:"qty"`
}

// --- Misc ---

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SetActiveRequest toggles an active flag.
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// ParseID parses a UUID reported as field on failure.
func ParseID(field, raw string) (id.ID, error) {
	v, err := id.Parse(raw)
	if err != nil {
		return id.Nil(), apperror.NewInvalidArgument("invalid "+field).WithDetail("field", field)
	}
	return v, nil
}

// ParseOptionalID parses raw when it is set.
func ParseOptionalID(field, raw string) (*id.ID, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := ParseID(field, raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
