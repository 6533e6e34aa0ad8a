package grn

import (
	"context"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/tx"
)

// Service is the read side of goods receipts. Confirmation lives in the dispatch workflow.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates the service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Get returns a receipt visible to the caller.
func (s *Service) Get(ctx context.Context, actor security.Actor, grnID id.ID) (*GRN, error) {
	if err := security.Require(actor, security.RoleAdmin, security.RoleManufacturer, security.RoleRetailer); err != nil {
		return nil, err
	}
	var doc *GRN
	err := tx.Read(ctx, s.txManager, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetByID(ctx, grnID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := security.RequireParty(actor, "grn", doc.RetailerID, doc.ManufacturerID); err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns receipts visible to the caller, newest first.
func (s *Service) List(ctx context.Context, actor security.Actor, filter ListFilter) ([]GRN, error) {
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
