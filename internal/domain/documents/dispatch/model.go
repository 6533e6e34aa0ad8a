// Package dispatch implements dispatch orders and the ship/receive workflow.
//
// A dispatch order materializes an approved requisition (one per SRN). Its
// items freeze the material's price and tax classification at creation time.
package dispatch

import (
	"encoding/json"
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/entity"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/fsm"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/money"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
)

// Status of a dispatch order.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
)

// Event drives status transitions.
type Event string

const (
	EventExecute Event = "execute"
	EventDeliver Event = "deliver"
)

// Transitions is the dispatch status machine.
var Transitions = fsm.NewTable("dispatch",
	fsm.Edge[Status, Event]{From: StatusPending, On: EventExecute, To: StatusInTransit},
	fsm.Edge[Status, Event]{From: StatusInTransit, On: EventDeliver, To: StatusDelivered},
)

// Order is a dispatch order.
type Order struct {
	entity.Document

	SRNID          id.ID       `db:"srn_id" json:"srnId"`
	SRNNumber      string      `db:"srn_number" json:"srnNumber"`
	RetailerID     id.ID       `db:"retailer_id" json:"retailerId"`
	ManufacturerID id.ID       `db:"manufacturer_id" json:"manufacturerId"`
	Status         Status      `db:"status" json:"status"`
	Subtotal       money.Money `db:"subtotal" json:"subtotal"`
	CreatedBy      id.ID       `db:"created_by" json:"createdBy"`
	ExecutedAt     *time.Time  `db:"executed_at" json:"executedAt,omitempty"`
	DeliveredAt    *time.Time  `db:"delivered_at" json:"deliveredAt,omitempty"`

	Items []Item `db:"-" json:"items"`
}

// Item is one shipped material with its frozen financial snapshot.
type Item struct {
	ID             id.ID       `db:"id" json:"id"`
	DispatchID     id.ID       `db:"dispatch_id" json:"dispatchId"`
	LineNo         int         `db:"line_no" json:"lineNo"`
	MaterialID     id.ID       `db:"material_id" json:"materialId"`
	Packets        int64       `db:"packets" json:"packets"`
	LooseUnits     int64       `db:"loose_units" json:"looseUnits"`
	UnitsPerPacket int64       `db:"units_per_packet" json:"unitsPerPacket"`
	MRPPerPacket   money.Money `db:"mrp_per_packet" json:"mrpPerPacket"`
	UnitPrice      money.Money `db:"unit_price" json:"unitPrice"`
	LineTotal      money.Money `db:"line_total" json:"lineTotal"`
	HSNCode        string      `db:"hsn_code" json:"hsnCode"`
	GSTRate        money.Money `db:"gst_rate" json:"gstRate"`
}

// Qty returns the shipped quantity.
func (i Item) Qty() inventory.Quantity {
	return inventory.Q(i.Packets, i.LooseUnits)
}

// Units returns the shipped quantity in individual units.
func (i Item) Units() int64 {
	return i.Packets*i.UnitsPerPacket + i.LooseUnits
}

// ReceivedLine is what a retailer confirms for one material.
type ReceivedLine struct {
	MaterialID id.ID
	Qty        inventory.Quantity
}

// ConfirmInput is the retailer's receipt confirmation.
type ConfirmInput struct {
	Lines []ReceivedLine
	Note  string
}

// ListFilter narrows listings.
type ListFilter struct {
	Status         Status
	RetailerID     *id.ID
	ManufacturerID *id.ID
	domain.Page
}

// MarshalJSON renders the subtotal with two fixed decimals.
func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	return json.Marshal(struct {
		plain
		Subtotal string `json:"subtotal"`
	}{plain: plain(o), Subtotal: money.Format(o.Subtotal)})
}

// MarshalJSON renders the frozen prices with two fixed decimals.
func (i Item) MarshalJSON() ([]byte, error) {
	type plain Item
	return json.Marshal(struct {
		plain
		MRPPerPacket string `json:"mrpPerPacket"`
		UnitPrice    string `json:"unitPrice"`
		LineTotal    string `json:"lineTotal"`
		GSTRate      string `json:"gstRate"`
	}{
		plain:        plain(i),
		MRPPerPacket: money.Format(i.MRPPerPacket),
		UnitPrice:    money.Format(i.UnitPrice),
		LineTotal:    money.Format(i.LineTotal),
		GSTRate:      money.Format(i.GSTRate),
	})
}
