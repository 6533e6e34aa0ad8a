package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/entity"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/money"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/numerator"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/tx"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/catalog/material"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/grn"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/srn"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/notification"
	"github.com/harpreet-2146/FM-demo-sub001/pkg/logger"
)

// Materials reads live catalog entries for the price snapshot.
type Materials interface {
	Get(ctx context.Context, materialID id.ID) (*material.Material, error)
}

// Service runs dispatch creation, execution and receipt confirmation.
type Service struct {
	repo          Repository
	grns          grn.Repository
	srns          srn.Repository
	materials     Materials
	manufacturers *inventory.ManufacturerLedger
	retailers     *inventory.RetailerLedger
	money         money.Engine
	numerator     numerator.Generator
	publisher     notification.Publisher
	txManager     tx.Manager
}

// Deps groups the collaborators of Service.
type Deps struct {
	Repo          Repository
	GRNs          grn.Repository
	SRNs          srn.Repository
	Materials     Materials
	Manufacturers *inventory.ManufacturerLedger
	Retailers     *inventory.RetailerLedger
	Money         money.Engine
	Numerator     numerator.Generator
	Publisher     notification.Publisher
	TxManager     tx.Manager
}

// NewService creates the workflow service.
func NewService(d Deps) *Service {
	return &Service{
		repo:          d.Repo,
		grns:          d.GRNs,
		srns:          d.SRNs,
		materials:     d.Materials,
		manufacturers: d.Manufacturers,
		retailers:     d.Retailers,
		money:         d.Money,
		numerator:     d.Numerator,
		publisher:     d.Publisher,
		txManager:     d.TxManager,
	}
}

// CreateDispatch materializes an approved requisition into a dispatch order and
// a PENDING receipt placeholder. Admins and the bound manufacturer may call it.
func (s *Service) CreateDispatch(ctx context.Context, actor security.Actor, srnID id.ID) (*Order, error) {
	if err := security.Require(actor, security.RoleAdmin, security.RoleManufacturer); err != nil {
		return nil, err
	}

	var order *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		req, err := s.srns.GetForUpdate(ctx, srnID)
		if err != nil {
			return err
		}
		if !req.Status.Dispatchable() || req.ManufacturerID == nil {
			return apperror.NewInvalidState("srn", string(req.Status), "create dispatch for")
		}
		if err := security.RequireParty(actor, "srn", *req.ManufacturerID); err != nil {
			return err
		}

		exists, err := s.repo.ExistsForSRN(ctx, req.ID)
		if err != nil {
			return fmt.Errorf("check dispatch exists: %w", err)
		}
		if exists {
			return apperror.NewConflict("dispatch order already exists for this srn").
				WithDetail("srn_id", req.ID)
		}

		number, err := s.numerator.NextNumber(ctx, numerator.PrefixDispatch)
		if err != nil {
			return fmt.Errorf("generate dispatch number: %w", err)
		}

		order = &Order{
			Document:       entity.NewDocument(number, time.Now()),
			SRNID:          req.ID,
			SRNNumber:      req.Number,
			RetailerID:     req.RetailerID,
			ManufacturerID: *req.ManufacturerID,
			Status:         StatusPending,
			CreatedBy:      actor.ID,
		}

		totals := make([]money.Money, 0, len(req.Lines))
		for _, line := range req.Lines {
			if line.Approved().IsZero() {
				continue
			}
			item, err := s.snapshot(ctx, line)
			if err != nil {
				return err
			}
			item.DispatchID = order.ID
			item.LineNo = len(order.Items) + 1
			order.Items = append(order.Items, item)
			totals = append(totals, item.LineTotal)
		}
		if len(order.Items) == 0 {
			return apperror.NewInvariantViolation("approved srn %s has no approved lines", req.ID)
		}
		order.Subtotal = s.money.Add(totals...)

		if err := s.repo.Create(ctx, order); err != nil {
			return err
		}

		receipt, err := s.placeholder(ctx, order)
		if err != nil {
			return err
		}
		if err := s.grns.Create(ctx, receipt); err != nil {
			return err
		}

		notification.Emit(ctx, s.publisher, notification.NewEvent(
			notification.ToAdmins(),
			notification.TypeDispatchCreated,
			"Dispatch order created",
			fmt.Sprintf("%s created for %s", order.Number, req.Number),
			order.ID,
		))
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "dispatch created",
		"dispatch_id", order.ID,
		"number", order.Number,
		"srn_id", order.SRNID,
		"subtotal", s.money.String(order.Subtotal),
	)
	return order, nil
}

// snapshot freezes the live material pricing for one approved line.
func (s *Service) snapshot(ctx context.Context, line srn.Line) (Item, error) {
	m, err := s.materials.Get(ctx, line.MaterialID)
	if err != nil {
		return Item{}, err
	}
	unitPrice, err := s.money.UnitPrice(m.MRPPerPacket, m.UnitsPerPacket)
	if err != nil {
		return Item{}, err
	}
	item := Item{
		ID:             id.New(),
		MaterialID:     m.ID,
		Packets:        line.ApprovedPackets,
		LooseUnits:     line.ApprovedUnits,
		UnitsPerPacket: m.UnitsPerPacket,
		MRPPerPacket:   m.MRPPerPacket,
		UnitPrice:      unitPrice,
		HSNCode:        m.HSNCode,
		GSTRate:        m.GSTRate,
	}
	item.LineTotal, err = s.money.LineTotal(unitPrice, item.Units())
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func (s *Service) placeholder(ctx context.Context, order *Order) (*grn.GRN, error) {
	number, err := s.numerator.NextNumber(ctx, numerator.PrefixGRN)
	if err != nil {
		return nil, fmt.Errorf("generate grn number: %w", err)
	}
	receipt := &grn.GRN{
		Document:       entity.NewDocument(number, time.Now()),
		DispatchID:     order.ID,
		RetailerID:     order.RetailerID,
		ManufacturerID: order.ManufacturerID,
		Status:         grn.StatusPending,
	}
	for i, it := range order.Items {
		receipt.Items = append(receipt.Items, grn.Item{
			ID:              id.New(),
			GRNID:           receipt.ID,
			LineNo:          i + 1,
			MaterialID:      it.MaterialID,
			ExpectedPackets: it.Packets,
			ExpectedUnits:   it.LooseUnits,
		})
	}
	return receipt, nil
}

// Execute ships a pending order: every line releases its reservation and leaves
// the manufacturer's stock. One failing line aborts the whole execution.
func (s *Service) Execute(ctx context.Context, actor security.Actor, dispatchID id.ID) (*Order, error) {
	if err := security.Require(actor, security.RoleAdmin, security.RoleManufacturer); err != nil {
		return nil, err
	}

	var order *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.repo.GetForUpdate(ctx, dispatchID)
		if err != nil {
			return err
		}
		if err := security.RequireParty(actor, "dispatch", order.ManufacturerID); err != nil {
			return err
		}
		next, err := Transitions.Next(order.Status, EventExecute)
		if err != nil {
			return err
		}

		for _, it := range order.Items {
			_, err := s.manufacturers.ExecuteDispatch(ctx, inventory.Movement{
				MaterialID: it.MaterialID,
				OwnerID:    order.ManufacturerID,
				Qty:        it.Qty(),
				Ref:        inventory.Reference{Type: inventory.RefDispatch, ID: order.ID, Number: order.Number},
				ActorID:    actor.ID,
			})
			if err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		order.Status = next
		order.ExecutedAt = &now
		order.Touch(now)
		if err := s.repo.Update(ctx, order); err != nil {
			return err
		}

		notification.Emit(ctx, s.publisher, notification.NewEvent(
			notification.ToUsers(order.RetailerID),
			notification.TypeDispatchExecuted,
			"Goods dispatched",
			fmt.Sprintf("%s is in transit", order.Number),
			order.ID,
		))
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "dispatch executed", "dispatch_id", order.ID, "number", order.Number)
	return order, nil
}

// Confirm records what the retailer received. Every expected line must be
// present; received stock lands in the retailer ledger, the receipt becomes
// CONFIRMED and the dispatch DELIVERED. Discrepancies are recorded, not reconciled.
func (s *Service) Confirm(ctx context.Context, actor security.Actor, grnID id.ID, in ConfirmInput) (*grn.GRN, error) {
	if err := security.Require(actor, security.RoleRetailer); err != nil {
		return nil, err
	}

	var receipt *grn.GRN
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		receipt, err = s.grns.GetForUpdate(ctx, grnID)
		if err != nil {
			return err
		}
		if !actor.Is(receipt.RetailerID) {
			return apperror.NewForbidden("grn belongs to another retailer").WithDetail("entity", "grn")
		}
		nextReceipt, err := grn.Transitions.Next(receipt.Status, grn.EventConfirm)
		if err != nil {
			return err
		}

		order, err := s.repo.GetForUpdate(ctx, receipt.DispatchID)
		if err != nil {
			return err
		}
		nextOrder, err := Transitions.Next(order.Status, EventDeliver)
		if err != nil {
			return apperror.NewInvalidState("dispatch", string(order.Status), "confirm receipt of")
		}

		received, err := matchReceived(receipt, in.Lines)
		if err != nil {
			return err
		}

		for i := range receipt.Items {
			it := &receipt.Items[i]
			q := received[it.MaterialID]
			it.ReceivedPackets, it.ReceivedUnits = q.Packets, q.Units

			_, err := s.retailers.ReceiveGoods(ctx, inventory.Movement{
				MaterialID: it.MaterialID,
				OwnerID:    receipt.RetailerID,
				Qty:        q,
				Ref:        inventory.Reference{Type: inventory.RefGRN, ID: receipt.ID, Number: receipt.Number},
				ActorID:    actor.ID,
			})
			if err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		confirmedBy := actor.ID
		receipt.Status = nextReceipt
		receipt.ConfirmedAt = &now
		receipt.ConfirmedBy = &confirmedBy
		receipt.Note = in.Note
		receipt.Touch(now)
		if err := s.grns.Update(ctx, receipt); err != nil {
			return err
		}

		order.Status = nextOrder
		order.DeliveredAt = &now
		order.Touch(now)
		if err := s.repo.Update(ctx, order); err != nil {
			return err
		}

		msg := fmt.Sprintf("%s received against %s", receipt.Number, order.Number)
		if receipt.HasDiscrepancy() {
			msg += " with discrepancies"
		}
		notification.Emit(ctx, s.publisher, notification.NewEvent(
			notification.ToAdmins().And(notification.ToUsers(order.ManufacturerID)),
			notification.TypeGRNConfirmed,
			"Goods received",
			msg,
			receipt.ID,
		))
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "grn confirmed",
		"grn_id", receipt.ID,
		"number", receipt.Number,
		"discrepancy", receipt.HasDiscrepancy(),
	)
	return receipt, nil
}

// matchReceived checks the confirmation covers exactly the expected materials.
func matchReceived(receipt *grn.GRN, lines []ReceivedLine) (map[id.ID]inventory.Quantity, error) {
	expected := make(map[id.ID]struct{}, len(receipt.Items))
	for _, it := range receipt.Items {
		expected[it.MaterialID] = struct{}{}
	}

	received := make(map[id.ID]inventory.Quantity, len(lines))
	for _, l := range lines {
		if _, ok := expected[l.MaterialID]; !ok {
			return nil, apperror.NewInvalidArgument("material was not dispatched on this receipt").
				WithDetail("material_id", l.MaterialID)
		}
		if _, dup := received[l.MaterialID]; dup {
			return nil, apperror.NewInvalidArgument("material confirmed more than once").
				WithDetail("material_id", l.MaterialID)
		}
		if err := l.Qty.ValidateNonNegative("received quantity"); err != nil {
			return nil, err
		}
		received[l.MaterialID] = l.Qty
	}
	for materialID := range expected {
		if _, ok := received[materialID]; !ok {
			return nil, apperror.NewInvalidArgument("every dispatched line must be confirmed").
				WithDetail("missing_material_id", materialID)
		}
	}
	return received, nil
}

// Get returns an order visible to the caller.
func (s *Service) Get(ctx context.Context, actor security.Actor, dispatchID id.ID) (*Order, error) {
	if err := security.Require(actor, security.RoleAdmin, security.RoleManufacturer, security.RoleRetailer); err != nil {
		return nil, err
	}
	var order *Order
	err := tx.Read(ctx, s.txManager, func(ctx context.Context) error {
		var err error
		order, err = s.repo.GetByID(ctx, dispatchID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := security.RequireParty(actor, "dispatch", order.RetailerID, order.ManufacturerID); err != nil {
		return nil, err
	}
	return order, nil
}

// GetBySRN returns the order created from srnID.
func (s *Service) GetBySRN(ctx context.Context, actor security.Actor, srnID id.ID) (*Order, error) {
	if err := security.Require(actor, security.RoleAdmin, security.RoleManufacturer, security.RoleRetailer); err != nil {
		return nil, err
	}
	var order *Order
	err := tx.Read(ctx, s.txManager, func(ctx context.Context) error {
		var err error
		order, err = s.repo.GetBySRN(ctx, srnID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := security.RequireParty(actor, "dispatch", order.RetailerID, order.ManufacturerID); err != nil {
		return nil, err
	}
	return order, nil
}

// List returns orders visible to the caller, newest first.
func (s *Service) List(ctx context.Context, actor security.Actor, filter ListFilter) ([]Order, error) {
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
