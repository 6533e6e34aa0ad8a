package dto

import (
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
)

// StockQuery filters stock balances.
type StockQuery struct {
	MaterialID string `form:"materialId" binding:"omitempty,uuid"`
	OwnerID    string `form:"ownerId" binding:"omitempty,uuid"`
}

// ToFilter converts to the domain filter.
func (q *StockQuery) ToFilter() (inventory.StockFilter, error) {
	materialID, err := ParseOptionalID("materialId", q.MaterialID)
	if err != nil {
		return inventory.StockFilter{}, err
	}
	ownerID, err := ParseOptionalID("ownerId", q.OwnerID)
	if err != nil {
		return inventory.StockFilter{}, err
	}
	return inventory.StockFilter{MaterialID: materialID, OwnerID: ownerID}, nil
}

// TransactionQuery filters the inventory transaction log.
type TransactionQuery struct {
	PageQuery
	MaterialID   string `form:"materialId" binding:"omitempty,uuid"`
	LocationType string `form:"locationType" binding:"omitempty,oneof=MANUFACTURER RETAILER"`
	LocationID   string `form:"locationId" binding:"omitempty,uuid"`
	ReferenceID  string `form:"referenceId" binding:"omitempty,uuid"`
}

// ToFilter converts to the domain filter.
func (q *TransactionQuery) ToFilter() (inventory.TransactionFilter, error) {
	page := q.ToPage()
	f := inventory.TransactionFilter{
		LocationType: inventory.LocationType(q.LocationType),
		Limit:        page.Limit,
		Offset:       page.Offset,
	}
	var err error
	if f.MaterialID, err = ParseOptionalID("materialId", q.MaterialID); err != nil {
		return f, err
	}
	if f.LocationID, err = ParseOptionalID("locationId", q.LocationID); err != nil {
		return f, err
	}
	if f.ReferenceID, err = ParseOptionalID("referenceId", q.ReferenceID); err != nil {
		return f, err
	}
	return f, nil
}
