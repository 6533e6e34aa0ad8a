package sale

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
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
	"github.com/harpreet-2146/FM-demo-sub001/pkg/logger"
)

// Materials resolves sellable catalog entries.
type Materials interface {
	RequireActive(ctx context.Context, materialID id.ID) (*material.Material, error)
}

// Service records sales and settles commissions.
type Service struct {
	repo      Repository
	materials Materials
	retailers *inventory.RetailerLedger
	money     money.Engine
	numerator numerator.Generator
	txManager tx.Manager
}

// NewService creates the sale service.
func NewService(
	repo Repository,
	materials Materials,
	retailers *inventory.RetailerLedger,
	engine money.Engine,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		materials: materials,
		retailers: retailers,
		money:     engine,
		numerator: numerator,
		txManager: txManager,
	}
}

// RecordSale sells units from the caller's stock at the material's live MRP and
// accrues a PENDING commission, atomically with the ledger mutation.
func (s *Service) RecordSale(ctx context.Context, actor security.Actor, in RecordInput) (*Recorded, error) {
	if err := security.Require(actor, security.RoleRetailer); err != nil {
		return nil, err
	}
	if in.Units <= 0 {
		return nil, apperror.NewInvalidArgument("units sold must be positive").WithDetail("units", in.Units)
	}

	var out Recorded
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.materials.RequireActive(ctx, in.MaterialID)
		if err != nil {
			return err
		}

		unitPrice, err := s.money.UnitPrice(m.MRPPerPacket, m.UnitsPerPacket)
		if err != nil {
			return err
		}
		total, err := s.money.LineTotal(unitPrice, in.Units)
		if err != nil {
			return err
		}
		amount, err := s.money.Commission(m.Commission(), unitPrice, in.Units)
		if err != nil {
			return err
		}

		number, err := s.numerator.NextNumber(ctx, numerator.PrefixSale)
		if err != nil {
			return fmt.Errorf("generate sale number: %w", err)
		}
		sale := &Sale{
			Document:   entity.NewDocument(number, time.Now()),
			MaterialID: m.ID,
			RetailerID: actor.ID,
			Units:      in.Units,
			UnitPrice:  unitPrice,
			Total:      total,
		}

		opened, err := s.retailers.SellUnits(ctx, m.ID, actor.ID, in.Units,
			inventory.Reference{Type: inventory.RefSale, ID: sale.ID, Number: sale.Number}, actor.ID)
		if err != nil {
			return err
		}
		sale.PacketsOpened = opened
		if err := s.repo.CreateSale(ctx, sale); err != nil {
			return err
		}

		commission := &Commission{
			BaseEntity: entity.NewBaseEntity(time.Now()),
			SaleID:     sale.ID,
			SaleNumber: sale.Number,
			RetailerID: actor.ID,
			MaterialID: m.ID,
			Type:       m.CommissionType,
			Value:      m.CommissionValue,
			Units:      in.Units,
			UnitPrice:  unitPrice,
			Amount:     amount,
			Status:     CommissionPending,
		}
		if err := s.repo.CreateCommission(ctx, commission); err != nil {
			return err
		}

		out = Recorded{Sale: sale, Commission: commission}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale recorded",
		"sale_id", out.Sale.ID,
		"number", out.Sale.Number,
		"units", out.Sale.Units,
		"packets_opened", out.Sale.PacketsOpened,
		"commission", s.money.String(out.Commission.Amount),
	)
	return &out, nil
}

// MarkPaid settles one commission. Admin only; an already PAID commission is returned unchanged.
func (s *Service) MarkPaid(ctx context.Context, actor security.Actor, commissionID id.ID) (*Commission, error) {
	if err := security.Require(actor, security.RoleAdmin); err != nil {
		return nil, err
	}

	var c *Commission
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.repo.GetCommissionForUpdate(ctx, commissionID)
		if err != nil {
			return err
		}
		if c.Status == CommissionPaid {
			return nil
		}
		return s.pay(ctx, actor, c, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// MarkAllPaidForRetailer settles every pending commission of a retailer and
// returns how many were paid and their total.
func (s *Service) MarkAllPaidForRetailer(ctx context.Context, actor security.Actor, retailerID id.ID) (int, money.Money, error) {
	if err := security.Require(actor, security.RoleAdmin); err != nil {
		return 0, money.Zero(), err
	}

	var (
		count int
		total = money.Zero()
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		pending, err := s.repo.ListPendingForUpdate(ctx, retailerID)
		if err != nil {
			return fmt.Errorf("list pending commissions: %w", err)
		}
		now := time.Now().UTC()
		for i := range pending {
			if err := s.pay(ctx, actor, &pending[i], now); err != nil {
				return err
			}
			total = s.money.Add(total, pending[i].Amount)
		}
		count = len(pending)
		return nil
	})
	if err != nil {
		return 0, money.Zero(), err
	}

	logger.Info(ctx, "commissions settled", "retailer_id", retailerID, "count", count, "total", s.money.String(total))
	return count, total, nil
}

func (s *Service) pay(ctx context.Context, actor security.Actor, c *Commission, at time.Time) error {
	next, err := CommissionTransitions.Next(c.Status, EventPay)
	if err != nil {
		return err
	}
	paidBy := actor.ID
	c.Status = next
	c.PaidAt = &at
	c.PaidBy = &paidBy
	c.Touch(at)
	return s.repo.UpdateCommission(ctx, c)
}

// ListSales returns sales visible to the caller, newest first.
func (s *Service) ListSales(ctx context.Context, actor security.Actor, filter SaleFilter) ([]Sale, error) {
	if err := security.Require(actor, security.RoleAdmin, security.RoleRetailer); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		filter.RetailerID = &actor.ID
	}
	filter.Page = filter.Page.Normalize()
	return s.repo.ListSales(ctx, filter)
}

// GetSale returns one sale visible to the caller.
func (s *Service) GetSale(ctx context.Context, actor security.Actor, saleID id.ID) (*Sale, error) {
	if err := security.Require(actor, security.RoleAdmin, security.RoleRetailer); err != nil {
		return nil, err
	}
	var sale *Sale
	err := tx.Read(ctx, s.txManager, func(ctx context.Context) error {
		var err error
		sale, err = s.repo.GetSale(ctx, saleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := security.RequireParty(actor, "sale", sale.RetailerID); err != nil {
		return nil, err
	}
	return sale, nil
}

// ListCommissions returns commissions visible to the caller, newest first.
func (s *Service) ListCommissions(ctx context.Context, actor security.Actor, filter CommissionFilter) ([]Commission, error) {
	if err := security.Require(actor, security.RoleAdmin, security.RoleRetailer); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		filter.RetailerID = &actor.ID
	}
	filter.Page = filter.Page.Normalize()
	return s.repo.ListCommissions(ctx, filter)
}

// CommissionSummary totals pending and paid commissions per retailer.
// Retailers only see their own line.
func (s *Service) CommissionSummary(ctx context.Context, actor security.Actor, retailerID *id.ID) ([]Summary, error) {
	if err := security.Require(actor, security.RoleAdmin, security.RoleRetailer); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		retailerID = &actor.ID
	}
	return s.repo.Summarize(ctx, retailerID)
}
