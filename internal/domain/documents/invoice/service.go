package invoice

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
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/dispatch"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/grn"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/notification"
	"github.com/harpreet-2146/FM-demo-sub001/pkg/logger"
)

// Service generates and reads invoices.
type Service struct {
	repo       Repository
	grns       grn.Repository
	dispatches dispatch.Repository
	money      money.Engine
	numerator  numerator.Generator
	publisher  notification.Publisher
	txManager  tx.Manager
}

// NewService creates the invoice service.
func NewService(
	repo Repository,
	grns grn.Repository,
	dispatches dispatch.Repository,
	engine money.Engine,
	numerator numerator.Generator,
	publisher notification.Publisher,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:       repo,
		grns:       grns,
		dispatches: dispatches,
		money:      engine,
		numerator:  numerator,
		publisher:  publisher,
		txManager:  txManager,
	}
}

// Generate creates the single invoice of a confirmed receipt. Admin only.
//
// The subtotal is the sum of the dispatch's frozen line totals. Tax is computed
// once on the subtotal at the line-total weighted GST rate, split into CGST+SGST
// or IGST by the interstate flag.
func (s *Service) Generate(ctx context.Context, actor security.Actor, grnID id.ID, interstate bool) (*Invoice, error) {
	if err := security.Require(actor, security.RoleAdmin); err != nil {
		return nil, err
	}

	var inv *Invoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		receipt, err := s.grns.GetForUpdate(ctx, grnID)
		if err != nil {
			return err
		}
		if receipt.Status != grn.StatusConfirmed {
			return apperror.NewInvalidState("grn", string(receipt.Status), "invoice")
		}

		exists, err := s.repo.ExistsForGRN(ctx, receipt.ID)
		if err != nil {
			return fmt.Errorf("check invoice exists: %w", err)
		}
		if exists {
			return apperror.NewConflict("invoice already exists for this grn").WithDetail("grn_id", receipt.ID)
		}

		order, err := s.dispatches.GetByID(ctx, receipt.DispatchID)
		if err != nil {
			return err
		}

		number, err := s.numerator.NextNumber(ctx, numerator.PrefixInvoice)
		if err != nil {
			return fmt.Errorf("generate invoice number: %w", err)
		}

		inv = &Invoice{
			Document:       entity.NewDocument(number, time.Now()),
			GRNID:          receipt.ID,
			DispatchID:     order.ID,
			RetailerID:     order.RetailerID,
			ManufacturerID: order.ManufacturerID,
			Interstate:     interstate,
			CreatedBy:      actor.ID,
		}

		totals := make([]money.Money, len(order.Items))
		rated := make([]money.RatedAmount, len(order.Items))
		for i, it := range order.Items {
			inv.Items = append(inv.Items, Item{
				ID:         id.New(),
				InvoiceID:  inv.ID,
				LineNo:     i + 1,
				MaterialID: it.MaterialID,
				HSNCode:    it.HSNCode,
				Packets:    it.Packets,
				LooseUnits: it.LooseUnits,
				Units:      it.Units(),
				UnitPrice:  it.UnitPrice,
				LineTotal:  it.LineTotal,
				GSTRate:    it.GSTRate,
			})
			totals[i] = it.LineTotal
			rated[i] = money.RatedAmount{Amount: it.LineTotal, Rate: it.GSTRate}
		}

		tax, err := s.money.GST(s.money.Add(totals...), s.money.BlendedRate(rated), interstate)
		if err != nil {
			return err
		}
		inv.Subtotal = tax.Subtotal
		inv.GSTRate = tax.Rate
		inv.CGST = tax.CGST
		inv.SGST = tax.SGST
		inv.IGST = tax.IGST
		inv.Total = tax.Total

		if err := s.repo.Create(ctx, inv); err != nil {
			return err
		}

		notification.Emit(ctx, s.publisher, notification.NewEvent(
			notification.ToUsers(inv.RetailerID),
			notification.TypeInvoiceGenerated,
			"Invoice generated",
			fmt.Sprintf("%s for %s, total %s", inv.Number, receipt.Number, s.money.String(inv.Total)),
			inv.ID,
		))
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice generated",
		"invoice_id", inv.ID,
		"number", inv.Number,
		"grn_id", inv.GRNID,
		"total", s.money.String(inv.Total),
	)
	return inv, nil
}

// Get returns an invoice visible to the caller.
func (s *Service) Get(ctx context.Context, actor security.Actor, invoiceID id.ID) (*Invoice, error) {
	if err := security.Require(actor, security.RoleAdmin, security.RoleManufacturer, security.RoleRetailer); err != nil {
		return nil, err
	}
	var inv *Invoice
	err := tx.Read(ctx, s.txManager, func(ctx context.Context) error {
		var err error
		inv, err = s.repo.GetByID(ctx, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := security.RequireParty(actor, "invoice", inv.RetailerID, inv.ManufacturerID); err != nil {
		return nil, err
	}
	return inv, nil
}

// List returns invoices visible to the caller, newest first.
func (s *Service) List(ctx context.Context, actor security.Actor, filter ListFilter) ([]Invoice, error) {
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
