// Package srn implements the stock requisition note workflow.
//
// A retailer drafts and submits a requisition; an admin adjudicates it. Approval
// binds the manufacturer and blocks the approved quantities in that
// manufacturer's ledger, all-or-nothing.
package srn

import (
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/entity"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/fsm"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
)

// Status of a requisition.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusPartial   Status = "PARTIAL"
	StatusRejected  Status = "REJECTED"
)

// Event drives status transitions.
type Event string

const (
	EventEdit           Event = "edit"
	EventSubmit         Event = "submit"
	EventApprove        Event = "approve"
	EventApprovePartial Event = "approve partially"
	EventReject         Event = "reject"
)

// Transitions is the SRN status machine.
var Transitions = fsm.NewTable("srn",
	fsm.Edge[Status, Event]{From: StatusDraft, On: EventEdit, To: StatusDraft},
	fsm.Edge[Status, Event]{From: StatusDraft, On: EventSubmit, To: StatusSubmitted},
	fsm.Edge[Status, Event]{From: StatusSubmitted, On: EventApprove, To: StatusApproved},
	fsm.Edge[Status, Event]{From: StatusSubmitted, On: EventApprovePartial, To: StatusPartial},
	fsm.Edge[Status, Event]{From: StatusSubmitted, On: EventReject, To: StatusRejected},
)

// Dispatchable reports whether a dispatch order may be created from status.
func (s Status) Dispatchable() bool {
	return s == StatusApproved || s == StatusPartial
}

// SRN is a retailer's stock requisition.
type SRN struct {
	entity.Document

	RetailerID id.ID `db:"retailer_id" json:"retailerId"`
	// ManufacturerID is bound by the admin at approval.
	ManufacturerID *id.ID     `db:"manufacturer_id" json:"manufacturerId,omitempty"`
	Status         Status     `db:"status" json:"status"`
	Note           string     `db:"note" json:"note,omitempty"`
	DecisionNote   string     `db:"decision_note" json:"decisionNote,omitempty"`
	SubmittedAt    *time.Time `db:"submitted_at" json:"submittedAt,omitempty"`
	DecidedAt      *time.Time `db:"decided_at" json:"decidedAt,omitempty"`
	DecidedBy      *id.ID     `db:"decided_by" json:"decidedBy,omitempty"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one requested material.
type Line struct {
	ID               id.ID `db:"id" json:"id"`
	SRNID            id.ID `db:"srn_id" json:"srnId"`
	LineNo           int   `db:"line_no" json:"lineNo"`
	MaterialID       id.ID `db:"material_id" json:"materialId"`
	RequestedPackets int64 `db:"requested_packets" json:"requestedPackets"`
	RequestedUnits   int64 `db:"requested_units" json:"requestedLooseUnits"`
	ApprovedPackets  int64 `db:"approved_packets" json:"approvedPackets"`
	ApprovedUnits    int64 `db:"approved_units" json:"approvedLooseUnits"`
}

// Requested returns the requested quantity.
func (l Line) Requested() inventory.Quantity {
	return inventory.Q(l.RequestedPackets, l.RequestedUnits)
}

// Approved returns the adjudicated quantity.
func (l Line) Approved() inventory.Quantity {
	return inventory.Q(l.ApprovedPackets, l.ApprovedUnits)
}

// Line returns the line for materialID.
func (s *SRN) Line(materialID id.ID) (Line, bool) {
	for _, l := range s.Lines {
		if l.MaterialID == materialID {
			return l, true
		}
	}
	return Line{}, false
}

// LineInput is one requested material.
type LineInput struct {
	MaterialID id.ID
	Qty        inventory.Quantity
}

// CreateInput is the retailer input for a new requisition.
type CreateInput struct {
	Note  string
	Lines []LineInput
}

// UpdateInput replaces the lines and note of a draft.
type UpdateInput struct {
	Note  *string
	Lines []LineInput
}

// Action is an adjudication outcome.
type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
)

// Decision is the admin adjudication of a submitted requisition.
type Decision struct {
	Action Action
	// ManufacturerID nominates the supplying manufacturer; required to approve.
	ManufacturerID id.ID
	// Lines maps approved quantities by material. Missing materials are approved as zero.
	Lines []LineInput
	Note  string
}

// ListFilter narrows listings.
type ListFilter struct {
	Status         Status
	RetailerID     *id.ID
	ManufacturerID *id.ID
	domain.Page
}
