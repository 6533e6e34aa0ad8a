// Package returns implements retailer returns and manufacturer restock.
package returns

import (
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/entity"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/fsm"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
)

// Status of a return.
type Status string

const (
	StatusRaised          Status = "RAISED"
	StatusUnderReview     Status = "UNDER_REVIEW"
	StatusApprovedRestock Status = "APPROVED_RESTOCK"
	StatusApprovedReplace Status = "APPROVED_REPLACE"
	StatusRejected        Status = "REJECTED"
)

// Event drives status transitions.
type Event string

const (
	EventReview  Event = "review"
	EventRestock Event = "approve for restock"
	EventReplace Event = "approve for replacement"
	EventReject  Event = "reject"
)

// Transitions is the return status machine. Every resolution is terminal.
var Transitions = fsm.NewTable("return",
	fsm.Edge[Status, Event]{From: StatusRaised, On: EventReview, To: StatusUnderReview},
	fsm.Edge[Status, Event]{From: StatusRaised, On: EventRestock, To: StatusApprovedRestock},
	fsm.Edge[Status, Event]{From: StatusRaised, On: EventReplace, To: StatusApprovedReplace},
	fsm.Edge[Status, Event]{From: StatusRaised, On: EventReject, To: StatusRejected},
	fsm.Edge[Status, Event]{From: StatusUnderReview, On: EventRestock, To: StatusApprovedRestock},
	fsm.Edge[Status, Event]{From: StatusUnderReview, On: EventReplace, To: StatusApprovedReplace},
	fsm.Edge[Status, Event]{From: StatusUnderReview, On: EventReject, To: StatusRejected},
)

// resolutionEvents maps a requested resolution to its transition.
var resolutionEvents = map[Status]Event{
	StatusApprovedRestock: EventRestock,
	StatusApprovedReplace: EventReplace,
	StatusRejected:        EventReject,
}

// Return is a retailer's request to send goods back to a manufacturer.
type Return struct {
	entity.Document

	RetailerID     id.ID      `db:"retailer_id" json:"retailerId"`
	ManufacturerID id.ID      `db:"manufacturer_id" json:"manufacturerId"`
	GRNID          *id.ID     `db:"grn_id" json:"grnId,omitempty"`
	Status         Status     `db:"status" json:"status"`
	Reason         string     `db:"reason" json:"reason,omitempty"`
	ResolutionNote string     `db:"resolution_note" json:"resolutionNote,omitempty"`
	ReviewedAt     *time.Time `db:"reviewed_at" json:"reviewedAt,omitempty"`
	ResolvedAt     *time.Time `db:"resolved_at" json:"resolvedAt,omitempty"`
	ResolvedBy     *id.ID     `db:"resolved_by" json:"resolvedBy,omitempty"`

	Items []Item `db:"-" json:"items"`
}

// Item is one returned material.
type Item struct {
	ID         id.ID  `db:"id" json:"id"`
	ReturnID   id.ID  `db:"return_id" json:"returnId"`
	LineNo     int    `db:"line_no" json:"lineNo"`
	MaterialID id.ID  `db:"material_id" json:"materialId"`
	Packets    int64  `db:"packets" json:"packets"`
	LooseUnits int64  `db:"loose_units" json:"looseUnits"`
	Reason     string `db:"reason" json:"reason,omitempty"`
}

// Qty returns the returned quantity.
func (i Item) Qty() inventory.Quantity {
	return inventory.Q(i.Packets, i.LooseUnits)
}

// ItemInput is one line of a new return.
type ItemInput struct {
	MaterialID id.ID
	Qty        inventory.Quantity
	Reason     string
}

// CreateInput is the retailer input for a new return.
type CreateInput struct {
	ManufacturerID id.ID
	GRNID          *id.ID
	Reason         string
	Items          []ItemInput
}

// ListFilter narrows listings.
type ListFilter struct {
	Status         Status
	RetailerID     *id.ID
	ManufacturerID *id.ID
	domain.Page
}
