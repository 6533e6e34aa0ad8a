package returns

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
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/grn"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/notification"
	"github.com/harpreet-2146/FM-demo-sub001/pkg/logger"
)

// Materials resolves returned catalog entries. Retired materials may still be returned.
type Materials interface {
	Get(ctx context.Context, materialID id.ID) (*material.Material, error)
}

// Service runs the return workflow.
type Service struct {
	repo      Repository
	grns      grn.Repository
	materials Materials
	ledger    *inventory.ManufacturerLedger
	directory auth.Directory
	numerator numerator.Generator
	publisher notification.Publisher
	txManager tx.Manager
}

// Deps groups the collaborators of Service.
type Deps struct {
	Repo      Repository
	GRNs      grn.Repository
	Materials Materials
	Ledger    *inventory.ManufacturerLedger
	Directory auth.Directory
	Numerator numerator.Generator
	Publisher notification.Publisher
	TxManager tx.Manager
}

// NewService creates the return service.
func NewService(d Deps) *Service {
	return &Service{
		repo:      d.Repo,
		grns:      d.GRNs,
		materials: d.Materials,
		ledger:    d.Ledger,
		directory: d.Directory,
		numerator: d.Numerator,
		publisher: d.Publisher,
		txManager: d.TxManager,
	}
}

// Create raises a return from the calling retailer to a manufacturer.
func (s *Service) Create(ctx context.Context, actor security.Actor, in CreateInput) (*Return, error) {
	if err := security.Require(actor, security.RoleRetailer); err != nil {
		return nil, err
	}
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}

	var ret *Return
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.directory.ActiveUser(ctx, in.ManufacturerID, security.RoleManufacturer); err != nil {
			return err
		}
		if in.GRNID != nil {
			receipt, err := s.grns.GetByID(ctx, *in.GRNID)
			if err != nil {
				return err
			}
			if receipt.RetailerID != actor.ID {
				return apperror.NewForbidden("grn belongs to another retailer").WithDetail("entity", "grn")
			}
			if receipt.ManufacturerID != in.ManufacturerID {
				return apperror.NewInvalidArgument("grn was supplied by a different manufacturer").
					WithDetail("grn_id", receipt.ID)
			}
		}
		for _, it := range in.Items {
			if _, err := s.materials.Get(ctx, it.MaterialID); err != nil {
				return err
			}
		}

		number, err := s.numerator.NextNumber(ctx, numerator.PrefixReturn)
		if err != nil {
			return fmt.Errorf("generate return number: %w", err)
		}

		ret = &Return{
			Document:       entity.NewDocument(number, time.Now()),
			RetailerID:     actor.ID,
			ManufacturerID: in.ManufacturerID,
			GRNID:          in.GRNID,
			Status:         StatusRaised,
			Reason:         in.Reason,
		}
		for i, it := range in.Items {
			ret.Items = append(ret.Items, Item{
				ID:         id.New(),
				ReturnID:   ret.ID,
				LineNo:     i + 1,
				MaterialID: it.MaterialID,
				Packets:    it.Qty.Packets,
				LooseUnits: it.Qty.Units,
				Reason:     it.Reason,
			})
		}
		if err := s.repo.Create(ctx, ret); err != nil {
			return err
		}

		notification.Emit(ctx, s.publisher, notification.NewEvent(
			notification.ToAdmins().And(notification.ToUsers(ret.ManufacturerID)),
			notification.TypeReturnRaised,
			"Return raised",
			fmt.Sprintf("%s raised with %d line(s)", ret.Number, len(ret.Items)),
			ret.ID,
		))
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "return raised", "return_id", ret.ID, "number", ret.Number)
	return ret, nil
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return apperror.NewInvalidArgument("at least one item is required").WithDetail("field", "items")
	}
	seen := make(map[id.ID]struct{}, len(items))
	positive := false
	for i, it := range items {
		if _, dup := seen[it.MaterialID]; dup {
			return apperror.NewInvalidArgument("material returned more than once").
				WithDetail("material_id", it.MaterialID)
		}
		seen[it.MaterialID] = struct{}{}
		if err := it.Qty.ValidateNonNegative(fmt.Sprintf("item %d quantity", i+1)); err != nil {
			return err
		}
		if !it.Qty.IsZero() {
			positive = true
		}
	}
	if !positive {
		return apperror.NewInvalidArgument("at least one item must return a packet or unit")
	}
	return nil
}

// MarkUnderReview moves a raised return into review. Admin only.
func (s *Service) MarkUnderReview(ctx context.Context, actor security.Actor, returnID id.ID) (*Return, error) {
	if err := security.Require(actor, security.RoleAdmin); err != nil {
		return nil, err
	}

	var ret *Return
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		ret, err = s.repo.GetForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		next, err := Transitions.Next(ret.Status, EventReview)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		ret.Status = next
		ret.ReviewedAt = &now
		ret.Touch(now)
		return s.repo.Update(ctx, ret)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "return under review", "return_id", ret.ID)
	return ret, nil
}

// Resolve closes a return. Only APPROVED_RESTOCK puts the goods back into the
// manufacturer's stock. Admin only.
func (s *Service) Resolve(ctx context.Context, actor security.Actor, returnID id.ID, resolution Status, note string) (*Return, error) {
	if err := security.Require(actor, security.RoleAdmin); err != nil {
		return nil, err
	}
	event, ok := resolutionEvents[resolution]
	if !ok {
		return nil, apperror.NewInvalidArgument("resolution must be APPROVED_RESTOCK, APPROVED_REPLACE or REJECTED").
			WithDetail("resolution", resolution)
	}

	var ret *Return
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		ret, err = s.repo.GetForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		next, err := Transitions.Next(ret.Status, event)
		if err != nil {
			return err
		}

		if next == StatusApprovedRestock {
			for _, it := range ret.Items {
				if it.Qty().IsZero() {
					continue
				}
				_, err := s.ledger.RestockFromReturn(ctx, inventory.Movement{
					MaterialID: it.MaterialID,
					OwnerID:    ret.ManufacturerID,
					Qty:        it.Qty(),
					Ref:        inventory.Reference{Type: inventory.RefReturn, ID: ret.ID, Number: ret.Number},
					ActorID:    actor.ID,
				})
				if err != nil {
					return err
				}
			}
		}

		now := time.Now().UTC()
		resolvedBy := actor.ID
		ret.Status = next
		ret.ResolutionNote = note
		ret.ResolvedAt = &now
		ret.ResolvedBy = &resolvedBy
		ret.Touch(now)
		if err := s.repo.Update(ctx, ret); err != nil {
			return err
		}

		notification.Emit(ctx, s.publisher, notification.NewEvent(
			notification.ToUsers(ret.RetailerID),
			notification.TypeReturnResolved,
			"Return resolved",
			fmt.Sprintf("%s resolved as %s", ret.Number, ret.Status),
			ret.ID,
		))
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "return resolved", "return_id", ret.ID, "status", ret.Status)
	return ret, nil
}

// Get returns a return visible to the caller.
func (s *Service) Get(ctx context.Context, actor security.Actor, returnID id.ID) (*Return, error) {
	if err := security.Require(actor, security.RoleAdmin, security.RoleManufacturer, security.RoleRetailer); err != nil {
		return nil, err
	}
	var ret *Return
	err := tx.Read(ctx, s.txManager, func(ctx context.Context) error {
		var err error
		ret, err = s.repo.GetByID(ctx, returnID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := security.RequireParty(actor, "return", ret.RetailerID, ret.ManufacturerID); err != nil {
		return nil, err
	}
	return ret, nil
}

// List returns returns visible to the caller, newest first.
func (s *Service) List(ctx context.Context, actor security.Actor, filter ListFilter) ([]Return, error) {
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
