package inventory

import (
	"context"
	"fmt"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
)

// Service answers ledger queries scoped to the caller.
// Manufacturers and retailers only ever see their own rows; admins see everything.
type Service struct {
	repo Repository
}

// NewService creates a query service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ManufacturerStock lists manufacturer balances.
func (s *Service) ManufacturerStock(ctx context.Context, actor security.Actor, filter StockFilter) ([]ManufacturerStock, error) {
	if err := security.Require(actor, security.RoleAdmin, security.RoleManufacturer); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		filter.OwnerID = &actor.ID
	}
	rows, err := s.repo.ListManufacturerStock(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list manufacturer stock: %w", err)
	}
	return rows, nil
}

// RetailerStock lists retailer balances.
func (s *Service) RetailerStock(ctx context.Context, actor security.Actor, filter StockFilter) ([]RetailerStock, error) {
	if err := security.Require(actor, security.RoleAdmin, security.RoleRetailer); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		filter.OwnerID = &actor.ID
	}
	rows, err := s.repo.ListRetailerStock(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list retailer stock: %w", err)
	}
	return rows, nil
}

// Transactions lists the audit trail.
func (s *Service) Transactions(ctx context.Context, actor security.Actor, filter TransactionFilter) ([]Transaction, error) {
	if err := security.Require(actor, security.RoleAdmin, security.RoleManufacturer, security.RoleRetailer); err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin():
	case actor.Has(security.RoleManufacturer):
		filter.LocationType = LocationManufacturer
		filter.LocationID = &actor.ID
	default:
		filter.LocationType = LocationRetailer
		filter.LocationID = &actor.ID
	}
	rows, err := s.repo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return rows, nil
}
