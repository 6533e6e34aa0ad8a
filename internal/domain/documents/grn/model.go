// Package grn holds goods receipt notes. A GRN is created as a PENDING
// placeholder together with its dispatch order and confirmed by the retailer.
package grn

import (
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/entity"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/fsm"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
)

// Status of a receipt.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
)

// Event drives status transitions.
type Event string

// EventConfirm records the receipt.
const EventConfirm Event = "confirm"

// Transitions is the GRN status machine.
var Transitions = fsm.NewTable("grn",
	fsm.Edge[Status, Event]{From: StatusPending, On: EventConfirm, To: StatusConfirmed},
)

// GRN is a goods receipt note.
type GRN struct {
	entity.Document

	DispatchID     id.ID      `db:"dispatch_id" json:"dispatchId"`
	RetailerID     id.ID      `db:"retailer_id" json:"retailerId"`
	ManufacturerID id.ID      `db:"manufacturer_id" json:"manufacturerId"`
	Status         Status     `db:"status" json:"status"`
	Note           string     `db:"note" json:"note,omitempty"`
	ConfirmedAt    *time.Time `db:"confirmed_at" json:"confirmedAt,omitempty"`
	ConfirmedBy    *id.ID     `db:"confirmed_by" json:"confirmedBy,omitempty"`

	Items []Item `db:"-" json:"items"`
}

// Item is one expected material with what actually arrived.
type Item struct {
	ID              id.ID `db:"id" json:"id"`
	GRNID           id.ID `db:"grn_id" json:"grnId"`
	LineNo          int   `db:"line_no" json:"lineNo"`
	MaterialID      id.ID `db:"material_id" json:"materialId"`
	ExpectedPackets int64 `db:"expected_packets" json:"expectedPackets"`
	ExpectedUnits   int64 `db:"expected_units" json:"expectedLooseUnits"`
	ReceivedPackets int64 `db:"received_packets" json:"receivedPackets"`
	ReceivedUnits   int64 `db:"received_units" json:"receivedLooseUnits"`
}

// Expected returns the dispatched quantity.
func (i Item) Expected() inventory.Quantity {
	return inventory.Q(i.ExpectedPackets, i.ExpectedUnits)
}

// Received returns the confirmed quantity.
func (i Item) Received() inventory.Quantity {
	return inventory.Q(i.ReceivedPackets, i.ReceivedUnits)
}

// Shortfall is expected minus received; negative components mean over-delivery.
func (i Item) Shortfall() inventory.Quantity {
	return inventory.Q(i.ExpectedPackets-i.ReceivedPackets, i.ExpectedUnits-i.ReceivedUnits)
}

// HasDiscrepancy reports whether any line differs from what was dispatched.
func (g *GRN) HasDiscrepancy() bool {
	for _, it := range g.Items {
		if !it.Shortfall().IsZero() {
			return true
		}
	}
	return false
}

// ListFilter narrows listings.
type ListFilter struct {
	Status         Status
	RetailerID     *id.ID
	ManufacturerID *id.ID
	domain.Page
}
