package dto

import (
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/money"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/catalog/material"
)

// CommissionDTO is a commission rule.
type CommissionDTO struct {
	Type  string `json:"type" binding:"required,oneof=PERCENTAGE FLAT_PER_UNIT"`
	Value string `json:"value" binding:"required,money"`
}

// ToPolicy converts to the domain policy.
func (c CommissionDTO) ToPolicy() money.CommissionPolicy {
	return money.CommissionPolicy{Type: money.CommissionType(c.Type), Value: ParseMoney(c.Value)}
}

// CreateMaterialRequest for creating a material.
type CreateMaterialRequest struct {
	Code           string        `json:"code" binding:"required,max=50"`
	Name           string        `json:"name" binding:"required,max=200"`
	UnitsPerPacket int64         `json:"unitsPerPacket" binding:"required,min=1"`
	MRPPerPacket   string        `json:"mrpPerPacket" binding:"required,money"`
	HSNCode        string        `json:"hsnCode" binding:"required,hsn"`
	GSTRate        string        `json:"gstRate" binding:"required,money"`
	Commission     CommissionDTO `json:"commission" binding:"required"`
}

// ToInput converts to the domain input.
func (r *CreateMaterialRequest) ToInput() material.CreateInput {
	return material.CreateInput{
		Code:           r.Code,
		Name:           r.Name,
		UnitsPerPacket: r.UnitsPerPacket,
		MRPPerPacket:   ParseMoney(r.MRPPerPacket),
		HSNCode:        r.HSNCode,
		GSTRate:        ParseMoney(r.GSTRate),
		Commission:     r.Commission.ToPolicy(),
	}
}

// UpdateMaterialRequest changes the given fields only.
type UpdateMaterialRequest struct {
	Name           *string        `json:"name" binding:"omitempty,max=200"`
	UnitsPerPacket *int64         `json:"unitsPerPacket" binding:"omitempty,min=1"`
	MRPPerPacket   *string        `json:"mrpPerPacket" binding:"omitempty,money"`
	HSNCode        *string        `json:"hsnCode" binding:"omitempty,hsn"`
	GSTRate        *string        `json:"gstRate" binding:"omitempty,money"`
	Commission     *CommissionDTO `json:"commission"`
}

// ToInput converts to the domain input.
func (r *UpdateMaterialRequest) ToInput() material.UpdateInput {
	in := material.UpdateInput{
		Name:           r.Name,
		UnitsPerPacket: r.UnitsPerPacket,
		HSNCode:        r.HSNCode,
	}
	if r.MRPPerPacket != nil {
		v := ParseMoney(*r.MRPPerPacket)
		in.MRPPerPacket = &v
	}
	if r.GSTRate != nil {
		v := ParseMoney(*r.GSTRate)
		in.GSTRate = &v
	}
	if r.Commission != nil {
		p := r.Commission.ToPolicy()
		in.Commission = &p
	}
	return in
}

// MaterialListQuery filters the catalog.
type MaterialListQuery struct {
	PageQuery
	Search     string `form:"search"`
	ActiveOnly bool   `form:"activeOnly"`
}

// ToFilter converts to the domain filter.
func (q *MaterialListQuery) ToFilter() material.ListFilter {
	return material.ListFilter{Search: q.Search, ActiveOnly: q.ActiveOnly, Page: q.ToPage()}
}

// ProductionRequest records produced stock.
type ProductionRequest struct {
	// ManufacturerID is required when an admin records on behalf of a manufacturer.
	ManufacturerID string      `json:"manufacturerId" binding:"omitempty,uuid"`
	Qty            QuantityDTO `json:"qty"`
}

// ToInput converts to the domain input.
func (r *ProductionRequest) ToInput(materialID id.ID) (material.ProductionInput, error) {
	in := material.ProductionInput{MaterialID: materialID, Qty: r.Qty.ToQuantity()}
	if r.ManufacturerID != "" {
		mfg, err := ParseID("manufacturerId", r.ManufacturerID)
		if err != nil {
			return in, err
		}
		in.ManufacturerID = mfg
	}
	return in, nil
}
