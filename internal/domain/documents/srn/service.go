package srn

import (
	"context"
	"fmt"
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/entity"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/numerator"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/tx"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/auth"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/catalog/material"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/notification"
	"github.com/harpreet-2146/FM-demo-sub001/pkg/logger"
)

// Materials resolves catalog entries that may be requested.
type Materials interface {
	RequireActive(ctx context.Context, materialID id.ID) (*material.Material, error)
}

// Service runs the requisition workflow.
type Service struct {
	repo      Repository
	materials Materials
	ledger    *inventory.ManufacturerLedger
	directory auth.Directory
	numerator numerator.Generator
	publisher notification.Publisher
	txManager tx.Manager
}

// NewService creates the workflow service.
func NewService(
	repo Repository,
	materials Materials,
	ledger *inventory.ManufacturerLedger,
	directory auth.Directory,
	numerator numerator.Generator,
	publisher notification.Publisher,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		materials: materials,
		ledger:    ledger,
		directory: directory,
		numerator: numerator,
		publisher: publisher,
		txManager: txManager,
	}
}

// Create drafts a requisition for the calling retailer.
func (s *Service) Create(ctx context.Context, actor security.Actor, in CreateInput) (*SRN, error) {
	if err := security.Require(actor, security.RoleRetailer); err != nil {
		return nil, err
	}

	var doc *SRN
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		lines, err := s.buildLines(ctx, in.Lines)
		if err != nil {
			return err
		}

		number, err := s.numerator.NextNumber(ctx, numerator.PrefixSRN)
		if err != nil {
			return fmt.Errorf("generate srn number: %w", err)
		}

		doc = &SRN{
			Document:   entity.NewDocument(number, time.Now()),
			RetailerID: actor.ID,
			Status:     StatusDraft,
			Note:       in.Note,
		}
		doc.setLines(lines)
		return s.repo.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "srn created", "srn_id", doc.ID, "number", doc.Number, "lines", len(doc.Lines))
	return doc, nil
}

// UpdateDraft replaces the lines (and optionally the note) of the caller's draft.
func (s *Service) UpdateDraft(ctx context.Context, actor security.Actor, srnID id.ID, in UpdateInput) (*SRN, error) {
	if err := security.Require(actor, security.RoleRetailer); err != nil {
		return nil, err
	}

	var doc *SRN
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.loadOwned(ctx, actor, srnID)
		if err != nil {
			return err
		}
		if _, err := Transitions.Next(doc.Status, EventEdit); err != nil {
			return err
		}

		if in.Lines != nil {
			lines, err := s.buildLines(ctx, in.Lines)
			if err != nil {
				return err
			}
			doc.setLines(lines)
		}
		if in.Note != nil {
			doc.Note = *in.Note
		}
		doc.Touch(time.Now())
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "srn draft updated", "srn_id", doc.ID)
	return doc, nil
}

// Submit sends the caller's draft for adjudication.
func (s *Service) Submit(ctx context.Context, actor security.Actor, srnID id.ID) (*SRN, error) {
	if err := security.Require(actor, security.RoleRetailer); err != nil {
		return nil, err
	}

	var doc *SRN
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.loadOwned(ctx, actor, srnID)
		if err != nil {
			return err
		}
		next, err := Transitions.Next(doc.Status, EventSubmit)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		doc.Status = next
		doc.SubmittedAt = &now
		doc.Touch(now)
		if err := s.repo.Update(ctx, doc); err != nil {
			return err
		}

		notification.Emit(ctx, s.publisher, notification.NewEvent(
			notification.ToAdmins(),
			notification.TypeSRNSubmitted,
			"Requisition submitted",
			fmt.Sprintf("%s is awaiting approval", doc.Number),
			doc.ID,
		))
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "srn submitted", "srn_id", doc.ID, "number", doc.Number)
	return doc, nil
}

// ProcessApproval adjudicates a submitted requisition. Admin only.
//
// Approval binds the nominated manufacturer and blocks every positive approved
// line in its ledger; one insufficient line aborts the whole adjudication.
// The result is APPROVED when every line is approved in full, PARTIAL otherwise.
func (s *Service) ProcessApproval(ctx context.Context, actor security.Actor, srnID id.ID, d Decision) (*SRN, error) {
	if err := security.Require(actor, security.RoleAdmin); err != nil {
		return nil, err
	}
	if d.Action != ActionApprove && d.Action != ActionReject {
		return nil, apperror.NewInvalidArgument("action must be APPROVE or REJECT").WithDetail("action", d.Action)
	}

	var doc *SRN
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, srnID)
		if err != nil {
			return err
		}

		if d.Action == ActionReject {
			return s.reject(ctx, actor, doc, d.Note)
		}
		return s.approve(ctx, actor, doc, d)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "srn adjudicated", "srn_id", doc.ID, "number", doc.Number, "status", doc.Status)
	return doc, nil
}

func (s *Service) reject(ctx context.Context, actor security.Actor, doc *SRN, note string) error {
	next, err := Transitions.Next(doc.Status, EventReject)
	if err != nil {
		return err
	}

	doc.Status = next
	doc.stampDecision(actor, note)
	if err := s.repo.Update(ctx, doc); err != nil {
		return err
	}

	notification.Emit(ctx, s.publisher, notification.NewEvent(
		notification.ToUsers(doc.RetailerID),
		notification.TypeSRNRejected,
		"Requisition rejected",
		fmt.Sprintf("%s was rejected", doc.Number),
		doc.ID,
	))
	return nil
}

func (s *Service) approve(ctx context.Context, actor security.Actor, doc *SRN, d Decision) error {
	// Status is checked before anything else so a decided SRN reports InvalidState.
	if !Transitions.Can(doc.Status, EventApprove) {
		return apperror.NewInvalidState("srn", string(doc.Status), string(EventApprove))
	}
	if id.IsNil(d.ManufacturerID) {
		return apperror.NewInvalidArgument("manufacturer is required to approve").WithDetail("field", "manufacturerId")
	}
	if _, err := s.directory.ActiveUser(ctx, d.ManufacturerID, security.RoleManufacturer); err != nil {
		return err
	}

	approved := make(map[id.ID]inventory.Quantity, len(d.Lines))
	for _, in := range d.Lines {
		line, ok := doc.Line(in.MaterialID)
		if !ok {
			return apperror.NewInvalidArgument("material is not part of this requisition").
				WithDetail("material_id", in.MaterialID)
		}
		if _, dup := approved[in.MaterialID]; dup {
			return apperror.NewInvalidArgument("material approved twice").WithDetail("material_id", in.MaterialID)
		}
		if err := in.Qty.ValidateNonNegative("approved quantity"); err != nil {
			return err
		}
		if !line.Requested().Covers(in.Qty) {
			return apperror.NewInvalidArgument("approved quantity exceeds requested quantity").
				WithDetail("material_id", in.MaterialID).
				WithDetail("requested", line.Requested()).
				WithDetail("approved", in.Qty)
		}
		approved[in.MaterialID] = in.Qty
	}

	full := true
	positive := false
	for i := range doc.Lines {
		line := &doc.Lines[i]
		q := approved[line.MaterialID]
		line.ApprovedPackets, line.ApprovedUnits = q.Packets, q.Units
		if q != line.Requested() {
			full = false
		}
		if !q.IsZero() {
			positive = true
		}
	}
	if !positive {
		return apperror.NewInvalidArgument("at least one line must be approved; reject the requisition instead")
	}

	event := EventApprovePartial
	if full {
		event = EventApprove
	}
	next, err := Transitions.Next(doc.Status, event)
	if err != nil {
		return err
	}

	for _, line := range doc.Lines {
		if line.Approved().IsZero() {
			continue
		}
		_, err := s.ledger.BlockForDispatch(ctx, inventory.Movement{
			MaterialID: line.MaterialID,
			OwnerID:    d.ManufacturerID,
			Qty:        line.Approved(),
			Ref:        inventory.Reference{Type: inventory.RefSRN, ID: doc.ID, Number: doc.Number},
			ActorID:    actor.ID,
		})
		if err != nil {
			return err
		}
	}

	manufacturerID := d.ManufacturerID
	doc.ManufacturerID = &manufacturerID
	doc.Status = next
	doc.stampDecision(actor, d.Note)
	if err := s.repo.Update(ctx, doc); err != nil {
		return err
	}

	notification.Emit(ctx, s.publisher, notification.NewEvent(
		notification.ToUsers(doc.RetailerID, manufacturerID),
		notification.TypeSRNApproved,
		"Requisition approved",
		fmt.Sprintf("%s was approved (%s)", doc.Number, doc.Status),
		doc.ID,
	))
	return nil
}

// Get returns a requisition visible to the caller.
func (s *Service) Get(ctx context.Context, actor security.Actor, srnID id.ID) (*SRN, error) {
	if err := security.Require(actor, security.RoleAdmin, security.RoleManufacturer, security.RoleRetailer); err != nil {
		return nil, err
	}
	var doc *SRN
	err := tx.Read(ctx, s.txManager, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetByID(ctx, srnID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := CanView(actor, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns requisitions visible to the caller, newest first.
func (s *Service) List(ctx context.Context, actor security.Actor, filter ListFilter) ([]SRN, error) {
	if err := security.Require(actor, security.RoleAdmin, security.RoleManufacturer, security.RoleRetailer); err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin():
	case actor.Has(security.RoleManufacturer):
		filter.ManufacturerID = &actor.ID
	default:
		filter.RetailerID = &actor.ID
	}
	filter.Page = filter.Page.Normalize()
	return s.repo.List(ctx, filter)
}

// CanView reports whether actor may read doc: admins always, the retailer that
// raised it, and the manufacturer bound to it.
func CanView(actor security.Actor, doc *SRN) error {
	if actor.IsAdmin() || actor.Is(doc.RetailerID) {
		return nil
	}
	if doc.ManufacturerID != nil && actor.Is(*doc.ManufacturerID) {
		return nil
	}
	return apperror.NewForbidden("srn belongs to another user").WithDetail("entity", "srn")
}

func (s *Service) loadOwned(ctx context.Context, actor security.Actor, srnID id.ID) (*SRN, error) {
	doc, err := s.repo.GetForUpdate(ctx, srnID)
	if err != nil {
		return nil, err
	}
	if !actor.Is(doc.RetailerID) {
		return nil, apperror.NewForbidden("srn belongs to another retailer").WithDetail("entity", "srn")
	}
	return doc, nil
}

// buildLines validates requested lines: at least one, distinct active materials,
// non-negative quantities with a positive component.
func (s *Service) buildLines(ctx context.Context, inputs []LineInput) ([]Line, error) {
	if len(inputs) == 0 {
		return nil, apperror.NewInvalidArgument("at least one line is required").WithDetail("field", "lines")
	}

	seen := make(map[id.ID]struct{}, len(inputs))
	lines := make([]Line, 0, len(inputs))
	for i, in := range inputs {
		if _, dup := seen[in.MaterialID]; dup {
			return nil, apperror.NewInvalidArgument("material requested more than once").
				WithDetail("material_id", in.MaterialID)
		}
		seen[in.MaterialID] = struct{}{}

		if err := in.Qty.ValidatePositive(fmt.Sprintf("line %d quantity", i+1)); err != nil {
			return nil, err
		}
		if _, err := s.materials.RequireActive(ctx, in.MaterialID); err != nil {
			return nil, err
		}

		lines = append(lines, Line{
			ID:               id.New(),
			MaterialID:       in.MaterialID,
			RequestedPackets: in.Qty.Packets,
			RequestedUnits:   in.Qty.Units,
		})
	}
	return lines, nil
}

func (doc *SRN) setLines(lines []Line) {
	for i := range lines {
		lines[i].SRNID = doc.ID
		lines[i].LineNo = i + 1
	}
	doc.Lines = lines
}

func (doc *SRN) stampDecision(actor security.Actor, note string) {
	now := time.Now().UTC()
	decidedBy := actor.ID
	doc.DecidedAt = &now
	doc.DecidedBy = &decidedBy
	doc.DecisionNote = note
	doc.Touch(now)
}
