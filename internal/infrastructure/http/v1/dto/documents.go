package dto

import (
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/dispatch"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/grn"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/invoice"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/returns"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/srn"
)

// DocumentListQuery filters documents exchanged between a retailer and a
// manufacturer. Non-admin callers only ever see their own documents.
type DocumentListQuery struct {
	PageQuery
	Status         string `form:"status"`
	RetailerID     string `form:"retailerId" binding:"omitempty,uuid"`
	ManufacturerID string `form:"manufacturerId" binding:"omitempty,uuid"`
}

type partyQuery struct {
	status         string
	retailerID     *id.ID
	manufacturerID *id.ID
	page           domain.Page
}

func (q *DocumentListQuery) parse() (partyQuery, error) {
	out := partyQuery{status: q.Status, page: q.ToPage()}
	var err error
	if out.retailerID, err = ParseOptionalID("retailerId", q.RetailerID); err != nil {
		return out, err
	}
	if out.manufacturerID, err = ParseOptionalID("manufacturerId", q.ManufacturerID); err != nil {
		return out, err
	}
	return out, nil
}

// SRNFilter converts to the SRN list filter.
func (q *DocumentListQuery) SRNFilter() (srn.ListFilter, error) {
	p, err := q.parse()
	return srn.ListFilter{Status: srn.Status(p.status), RetailerID: p.retailerID, ManufacturerID: p.manufacturerID, Page: p.page}, err
}

// DispatchFilter converts to the dispatch list filter.
func (q *DocumentListQuery) DispatchFilter() (dispatch.ListFilter, error) {
	p, err := q.parse()
	return dispatch.ListFilter{Status: dispatch.Status(p.status), RetailerID: p.retailerID, ManufacturerID: p.manufacturerID, Page: p.page}, err
}

// GRNFilter converts to the GRN list filter.
func (q *DocumentListQuery) GRNFilter() (grn.ListFilter, error) {
	p, err := q.parse()
	return grn.ListFilter{Status: grn.Status(p.status), RetailerID: p.retailerID, ManufacturerID: p.manufacturerID, Page: p.page}, err
}

// InvoiceFilter converts to the invoice list filter. Invoices have no status.
func (q *DocumentListQuery) InvoiceFilter() (invoice.ListFilter, error) {
	p, err := q.parse()
	return invoice.ListFilter{RetailerID: p.retailerID, ManufacturerID: p.manufacturerID, Page: p.page}, err
}

// ReturnFilter converts to the return list filter.
func (q *DocumentListQuery) ReturnFilter() (returns.ListFilter, error) {
	p, err := q.parse()
	return returns.ListFilter{Status: returns.Status(p.status), RetailerID: p.retailerID, ManufacturerID: p.manufacturerID, Page: p.page}, err
}

// --- SRN ---

// CreateSRNRequest opens a draft stock requisition.
type CreateSRNRequest struct {
	Note  string         `json:"note" binding:"max=1000"`
	Lines []MaterialLine `json:"lines" binding:"required,min=1,dive"`
}

// ToInput converts to the domain input.
func (r *CreateSRNRequest) ToInput() (srn.CreateInput, error) {
	lines, err := srnLines(r.Lines)
	return srn.CreateInput{Note: r.Note, Lines: lines}, err
}

// UpdateSRNRequest edits a draft. Lines, when given, replace the old ones.
type UpdateSRNRequest struct {
	Note  *string        `json:"note" binding:"omitempty,max=1000"`
	Lines []MaterialLine `json:"lines" binding:"omitempty,dive"`
}

// ToInput converts to the domain input.
func (r *UpdateSRNRequest) ToInput() (srn.UpdateInput, error) {
	lines, err := srnLines(r.Lines)
	return srn.UpdateInput{Note: r.Note, Lines: lines}, err
}

// SRNDecisionRequest approves or rejects a submitted SRN.
type SRNDecisionRequest struct {
	Action         string         `json:"action" binding:"required,oneof=APPROVE REJECT"`
	ManufacturerID string         `json:"manufacturerId" binding:"omitempty,uuid"`
	Lines          []MaterialLine `json:"lines" binding:"omitempty,dive"`
	Note           string         `json:"note" binding:"max=1000"`
}

// ToDecision converts to the domain decision.
func (r *SRNDecisionRequest) ToDecision() (srn.Decision, error) {
	d := srn.Decision{Action: srn.Action(r.Action), Note: r.Note}
	if r.ManufacturerID != "" {
		mfg, err := ParseID("manufacturerId", r.ManufacturerID)
		if err != nil {
			return d, err
		}
		d.ManufacturerID = mfg
	}
	lines, err := srnLines(r.Lines)
	d.Lines = lines
	return d, err
}

func srnLines(in []MaterialLine) ([]srn.LineInput, error) {
	if in == nil {
		return nil, nil
	}
	out := make([]srn.LineInput, 0, len(in))
	for _, l := range in {
		materialID, err := ParseID("materialId", l.MaterialID)
		if err != nil {
			return nil, err
		}
		out = append(out, srn.LineInput{MaterialID: materialID, Qty: l.Qty.ToQuantity()})
	}
	return out, nil
}

// --- Dispatch / GRN ---

// CreateDispatchRequest opens the dispatch order of an approved SRN.
type CreateDispatchRequest struct {
	SRNID string `json:"srnId" binding:"required,uuid"`
}

// ConfirmGRNRequest records what actually arrived.
type ConfirmGRNRequest struct {
	Lines []MaterialLine `json:"lines" binding:"required,min=1,dive"`
	Note  string         `json:"note" binding:"max=1000"`
}

// ToInput converts to the domain input.
func (r *ConfirmGRNRequest) ToInput() (dispatch.ConfirmInput, error) {
	in := dispatch.ConfirmInput{Note: r.Note, Lines: make([]dispatch.ReceivedLine, 0, len(r.Lines))}
	for _, l := range r.Lines {
		materialID, err := ParseID("materialId", l.MaterialID)
		if err != nil {
			return in, err
		}
		in.Lines = append(in.Lines, dispatch.ReceivedLine{MaterialID: materialID, Qty: l.Qty.ToQuantity()})
	}
	return in, nil
}

// --- Invoice ---

// GenerateInvoiceRequest bills a confirmed GRN.
type GenerateInvoiceRequest struct {
	GRNID      string `json:"grnId" binding:"required,uuid"`
	Interstate bool   `json:"interstate"`
}

// --- Returns ---

// ReturnItemRequest is one returned material.
type ReturnItemRequest struct {
	MaterialLine
	Reason string `json:"reason" binding:"max=500"`
}

// CreateReturnRequest raises a return against a manufacturer.
type CreateReturnRequest struct {
	ManufacturerID string              `json:"manufacturerId" binding:"required,uuid"`
	GRNID          string              `json:"grnId" binding:"omitempty,uuid"`
	Reason         string              `json:"reason" binding:"required,max=1000"`
	Items          []ReturnItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ToInput converts to the domain input.
func (r *CreateReturnRequest) ToInput() (returns.CreateInput, error) {
	var in returns.CreateInput
	mfg, err := ParseID("manufacturerId", r.ManufacturerID)
	if err != nil {
		return in, err
	}
	grnID, err := ParseOptionalID("grnId", r.GRNID)
	if err != nil {
		return in, err
	}
	in = returns.CreateInput{ManufacturerID: mfg, GRNID: grnID, Reason: r.Reason}
	for _, it := range r.Items {
		materialID, err := ParseID("materialId", it.MaterialID)
		if err != nil {
			return in, err
		}
		in.Items = append(in.Items, returns.ItemInput{MaterialID: materialID, Qty: it.Qty.ToQuantity(), Reason: it.Reason})
	}
	return in, nil
}

// ResolveReturnRequest closes a return under review.
type ResolveReturnRequest struct {
	Resolution string `json:"resolution" binding:"required,oneof=APPROVED_RESTOCK APPROVED_REPLACE REJECTED"`
	Note       string `json:"note" binding:"max=1000"`
}
