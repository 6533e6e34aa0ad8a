package memory

import (
	"cmp"
	"context"
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
)

var _ inventory.Repository = (*InventoryRepo)(nil)

// InventoryRepo stores ledger rows and the transaction log.
type InventoryRepo struct {
	s *Store
}

// NewInventoryRepo creates the repository.
func (s *Store) NewInventoryRepo() *InventoryRepo {
	return &InventoryRepo{s: s}
}

func (r *InventoryRepo) GetManufacturerStock(ctx context.Context, materialID, manufacturerID id.ID) (inventory.ManufacturerStock, error) {
	var out inventory.ManufacturerStock
	err := r.s.read(ctx, func(st *state) error {
		row, ok := st.mfgStock[stockKey{materialID, manufacturerID}]
		if !ok {
			row = inventory.ManufacturerStock{MaterialID: materialID, ManufacturerID: manufacturerID}
		}
		out = row
		return nil
	})
	return out, err
}

func (r *InventoryRepo) LockManufacturerStock(ctx context.Context, materialID, manufacturerID id.ID) (inventory.ManufacturerStock, error) {
	var out inventory.ManufacturerStock
	err := r.s.write(ctx, func(st *state) error {
		key := stockKey{materialID, manufacturerID}
		row, ok := st.mfgStock[key]
		if !ok {
			row = inventory.ManufacturerStock{
				MaterialID:     materialID,
				ManufacturerID: manufacturerID,
				UpdatedAt:      time.Now().UTC(),
			}
			st.mfgStock[key] = row
		}
		out = row
		return nil
	})
	return out, err
}

func (r *InventoryRepo) SaveManufacturerStock(ctx context.Context, stock inventory.ManufacturerStock) error {
	return r.s.write(ctx, func(st *state) error {
		st.mfgStock[stockKey{stock.MaterialID, stock.ManufacturerID}] = stock
		return nil
	})
}

func (r *InventoryRepo) ListManufacturerStock(ctx context.Context, filter inventory.StockFilter) ([]inventory.ManufacturerStock, error) {
	var out []inventory.ManufacturerStock
	err := r.s.read(ctx, func(st *state) error {
		out = sortedValues(st.mfgStock,
			func(s inventory.ManufacturerStock) bool {
				return matchID(filter.MaterialID, s.MaterialID) && matchID(filter.OwnerID, s.ManufacturerID)
			},
			func(a, b inventory.ManufacturerStock) int {
				return cmp.Or(
					cmp.Compare(a.ManufacturerID.String(), b.ManufacturerID.String()),
					cmp.Compare(a.MaterialID.String(), b.MaterialID.String()),
				)
			})
		return nil
	})
	return out, err
}

func (r *InventoryRepo) GetRetailerStock(ctx context.Context, materialID, retailerID id.ID) (inventory.RetailerStock, error) {
	var out inventory.RetailerStock
	err := r.s.read(ctx, func(st *state) error {
		row, ok := st.retStock[stockKey{materialID, retailerID}]
		if !ok {
			row = inventory.RetailerStock{MaterialID: materialID, RetailerID: retailerID}
		}
		out = row
		return nil
	})
	return out, err
}

func (r *InventoryRepo) LockRetailerStock(ctx context.Context, materialID, retailerID id.ID) (inventory.RetailerStock, error) {
	var out inventory.RetailerStock
	err := r.s.write(ctx, func(st *state) error {
		key := stockKey{materialID, retailerID}
		row, ok := st.retStock[key]
		if !ok {
			row = inventory.RetailerStock{
				MaterialID: materialID,
				RetailerID: retailerID,
				UpdatedAt:  time.Now().UTC(),
			}
			st.retStock[key] = row
		}
		out = row
		return nil
	})
	return out, err
}

func (r *InventoryRepo) SaveRetailerStock(ctx context.Context, stock inventory.RetailerStock) error {
	return r.s.write(ctx, func(st *state) error {
		st.retStock[stockKey{stock.MaterialID, stock.RetailerID}] = stock
		return nil
	})
}

func (r *InventoryRepo) ListRetailerStock(ctx context.Context, filter inventory.StockFilter) ([]inventory.RetailerStock, error) {
	var out []inventory.RetailerStock
	err := r.s.read(ctx, func(st *state) error {
		out = sortedValues(st.retStock,
			func(s inventory.RetailerStock) bool {
				return matchID(filter.MaterialID, s.MaterialID) && matchID(filter.OwnerID, s.RetailerID)
			},
			func(a, b inventory.RetailerStock) int {
				return cmp.Or(
					cmp.Compare(a.RetailerID.String(), b.RetailerID.String()),
					cmp.Compare(a.MaterialID.String(), b.MaterialID.String()),
				)
			})
		return nil
	})
	return out, err
}

func (r *InventoryRepo) AppendTransactions(ctx context.Context, txs ...inventory.Transaction) error {
	return r.s.write(ctx, func(st *state) error {
		st.ledger = append(st.ledger, txs...)
		return nil
	})
}

func (r *InventoryRepo) ListTransactions(ctx context.Context, filter inventory.TransactionFilter) ([]inventory.Transaction, error) {
	var out []inventory.Transaction
	err := r.s.read(ctx, func(st *state) error {
		matched := make([]inventory.Transaction, 0)
		for _, t := range st.ledger {
			if !matchID(filter.MaterialID, t.MaterialID) ||
				!matchID(filter.LocationID, t.LocationID) ||
				!matchID(filter.ReferenceID, t.RefID) {
				continue
			}
			if filter.LocationType != "" && filter.LocationType != t.LocationType {
				continue
			}
			matched = append(matched, t)
		}
		out = domain.Window(matched, domain.Page{Limit: filter.Limit, Offset: filter.Offset})
		return nil
	})
	return out, err
}
