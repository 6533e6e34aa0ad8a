package dto

import (
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/money"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/sale"
)

// RecordSaleRequest records units sold over the counter.
type RecordSaleRequest struct {
	MaterialID string `json:"materialId" binding:"required,uuid"`
	Units      int64  `json:"units" binding:"required,min=1"`
}

// ToInput converts to the domain input.
func (r *RecordSaleRequest) ToInput() (sale.RecordInput, error) {
	materialID, err := ParseID("materialId", r.MaterialID)
	return sale.RecordInput{MaterialID: materialID, Units: r.Units}, err
}

// SaleListQuery filters sales.
type SaleListQuery struct {
	PageQuery
	RetailerID string `form:"retailerId" binding:"omitempty,uuid"`
	MaterialID string `form:"materialId" binding:"omitempty,uuid"`
}

// ToFilter converts to the domain filter.
func (q *SaleListQuery) ToFilter() (sale.SaleFilter, error) {
	f := sale.SaleFilter{Page: q.ToPage()}
	var err error
	if f.RetailerID, err = ParseOptionalID("retailerId", q.RetailerID); err != nil {
		return f, err
	}
	f.MaterialID, err = ParseOptionalID("materialId", q.MaterialID)
	return f, err
}

// CommissionListQuery filters commissions.
type CommissionListQuery struct {
	PageQuery
	RetailerID string `form:"retailerId" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=PENDING PAID"`
}

// ToFilter converts to the domain filter.
func (q *CommissionListQuery) ToFilter() (sale.CommissionFilter, error) {
	retailerID, err := ParseOptionalID("retailerId", q.RetailerID)
	return sale.CommissionFilter{
		RetailerID: retailerID,
		Status:     sale.CommissionStatus(q.Status),
		Page:       q.ToPage(),
	}, err
}

// PayAllRequest settles every pending commission of a retailer.
type PayAllRequest struct {
	RetailerID string `json:"retailerId" binding:"required,uuid"`
}

// PayAllResponse reports what was settled.
type PayAllResponse struct {
	Paid   int    `json:"paid"`
	Amount string `json:"amount"`
}

func NewPayAllResponse(paid int, amount money.Money) PayAllResponse {
	return PayAllResponse{Paid: paid, Amount: money.Format(amount)}
}
