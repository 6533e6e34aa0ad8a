// Package invoice generates immutable invoices from confirmed goods receipts.
package invoice

import (
	"encoding/json"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/entity"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/money"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain"
)

// Invoice is the financial snapshot of one confirmed receipt. It is never
// modified after creation.
type Invoice struct {
	entity.Document

	GRNID          id.ID       `db:"grn_id" json:"grnId"`
	DispatchID     id.ID       `db:"dispatch_id" json:"dispatchId"`
	RetailerID     id.ID       `db:"retailer_id" json:"retailerId"`
	ManufacturerID id.ID       `db:"manufacturer_id" json:"manufacturerId"`
	Interstate     bool        `db:"interstate" json:"interstate"`
	Subtotal       money.Money `db:"subtotal" json:"subtotal"`
	GSTRate        money.Money `db:"gst_rate" json:"gstRate"`
	CGST           money.Money `db:"cgst" json:"cgst"`
	SGST           money.Money `db:"sgst" json:"sgst"`
	IGST           money.Money `db:"igst" json:"igst"`
	Total          money.Money `db:"total" json:"total"`
	CreatedBy      id.ID       `db:"created_by" json:"createdBy"`

	Items []Item `db:"-" json:"items"`
}

// Item copies one frozen dispatch line.
type Item struct {
	ID         id.ID       `db:"id" json:"id"`
	InvoiceID  id.ID       `db:"invoice_id" json:"invoiceId"`
	LineNo     int         `db:"line_no" json:"lineNo"`
	MaterialID id.ID       `db:"material_id" json:"materialId"`
	HSNCode    string      `db:"hsn_code" json:"hsnCode"`
	Packets    int64       `db:"packets" json:"packets"`
	LooseUnits int64       `db:"loose_units" json:"looseUnits"`
	Units      int64       `db:"units" json:"units"`
	UnitPrice  money.Money `db:"unit_price" json:"unitPrice"`
	LineTotal  money.Money `db:"line_total" json:"lineTotal"`
	GSTRate    money.Money `db:"gst_rate" json:"gstRate"`
}

// ListFilter narrows listings.
type ListFilter struct {
	RetailerID     *id.ID
	ManufacturerID *id.ID
	domain.Page
}

// MarshalJSON renders amounts and the rate with two fixed decimals.
func (inv Invoice) MarshalJSON() ([]byte, error) {
	type plain Invoice
	return json.Marshal(struct {
		plain
		Subtotal string `json:"subtotal"`
		GSTRate  string `json:"gstRate"`
		CGST     string `json:"cgst"`
		SGST     string `json:"sgst"`
		IGST     string `json:"igst"`
		Total    string `json:"total"`
	}{
		plain:    plain(inv),
		Subtotal: money.Format(inv.Subtotal),
		GSTRate:  money.Format(inv.GSTRate),
		CGST:     money.Format(inv.CGST),
		SGST:     money.Format(inv.SGST),
		IGST:     money.Format(inv.IGST),
		Total:    money.Format(inv.Total),
	})
}

func (it Item) MarshalJSON() ([]byte, error) {
	type plain Item
	return json.Marshal(struct {
		plain
		UnitPrice string `json:"unitPrice"`
		LineTotal string `json:"lineTotal"`
		GSTRate   string `json:"gstRate"`
	}{
		plain:     plain(it),
		UnitPrice: money.Format(it.UnitPrice),
		LineTotal: money.Format(it.LineTotal),
		GSTRate:   money.Format(it.GSTRate),
	})
}
