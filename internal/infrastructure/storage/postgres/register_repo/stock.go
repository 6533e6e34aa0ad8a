// Package register_repo provides the PostgreSQL stock ledgers and the
// inventory transaction log.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/storage/postgres"
)

const (
	manufacturerStockTable = "manufacturer_inventory"
	retailerStockTable     = "retailer_inventory"
	transactionsTable      = "inventory_transactions"
)

// StockRepo implements inventory.Repository.
type StockRepo struct {
	txm          *postgres.TxManager
	manufacturer *postgres.Table[inventory.ManufacturerStock]
	retailer     *postgres.Table[inventory.RetailerStock]
	transactions *postgres.Table[inventory.Transaction]
}

// NewStockRepo creates a new stock ledger repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txm:          txm,
		manufacturer: postgres.NewTable[inventory.ManufacturerStock](txm, manufacturerStockTable, "manufacturer stock"),
		retailer:     postgres.NewTable[inventory.RetailerStock](txm, retailerStockTable, "retailer stock"),
		transactions: postgres.NewTable[inventory.Transaction](txm, transactionsTable, "inventory transaction"),
	}
}

// GetManufacturerStock returns the balance or a zero row.
func (r *StockRepo) GetManufacturerStock(ctx context.Context, materialID, manufacturerID id.ID) (inventory.ManufacturerStock, error) {
	balance := inventory.ManufacturerStock{MaterialID: materialID, ManufacturerID: manufacturerID}
	err := r.getBalance(ctx, r.manufacturer.Select().Where(squirrel.Eq{
		"material_id":     materialID,
		"manufacturer_id": manufacturerID,
	}), &balance)
	return balance, err
}

// LockManufacturerStock creates the row on first touch and returns it with a
// pessimistic lock.
func (r *StockRepo) LockManufacturerStock(ctx context.Context, materialID, manufacturerID id.ID) (inventory.ManufacturerStock, error) {
	var balance inventory.ManufacturerStock

	querier := r.txm.GetQuerier(ctx)
	_, err := querier.Exec(ctx, `
		INSERT INTO manufacturer_inventory (material_id, manufacturer_id, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (material_id, manufacturer_id) DO NOTHING
	`, materialID, manufacturerID)
	if err != nil {
		return balance, postgres.TranslateError(fmt.Errorf("ensure manufacturer stock: %w", err), "manufacturer stock")
	}

	q := r.manufacturer.Select().Where(squirrel.Eq{
		"material_id":     materialID,
		"manufacturer_id": manufacturerID,
	}).Suffix("FOR UPDATE")
	if err := r.getBalance(ctx, q, &balance); err != nil {
		return balance, fmt.Errorf("lock manufacturer stock: %w", err)
	}

	return balance, nil
}

// SaveManufacturerStock writes back a locked row.
func (r *StockRepo) SaveManufacturerStock(ctx context.Context, stock inventory.ManufacturerStock) error {
	return r.manufacturer.Update(ctx, &stock, squirrel.Eq{
		"material_id":     stock.MaterialID,
		"manufacturer_id": stock.ManufacturerID,
	}, "material_id", "manufacturer_id")
}

// ListManufacturerStock returns balances ordered by manufacturer then material.
func (r *StockRepo) ListManufacturerStock(ctx context.Context, filter inventory.StockFilter) ([]inventory.ManufacturerStock, error) {
	q := r.manufacturer.Select()
	if filter.MaterialID != nil {
		q = q.Where(squirrel.Eq{"material_id": *filter.MaterialID})
	}
	if filter.OwnerID != nil {
		q = q.Where(squirrel.Eq{"manufacturer_id": *filter.OwnerID})
	}
	return r.manufacturer.All(ctx, q.OrderBy("manufacturer_id", "material_id"))
}

// GetRetailerStock returns the balance or a zero row.
func (r *StockRepo) GetRetailerStock(ctx context.Context, materialID, retailerID id.ID) (inventory.RetailerStock, error) {
	balance := inventory.RetailerStock{MaterialID: materialID, RetailerID: retailerID}
	err := r.getBalance(ctx, r.retailer.Select().Where(squirrel.Eq{
		"material_id": materialID,
		"retailer_id": retailerID,
	}), &balance)
	return balance, err
}

// LockRetailerStock creates the row on first touch and returns it locked.
func (r *StockRepo) LockRetailerStock(ctx context.Context, materialID, retailerID id.ID) (inventory.RetailerStock, error) {
	var balance inventory.RetailerStock

	querier := r.txm.GetQuerier(ctx)
	_, err := querier.Exec(ctx, `
		INSERT INTO retailer_inventory (material_id, retailer_id, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (material_id, retailer_id) DO NOTHING
	`, materialID, retailerID)
	if err != nil {
		return balance, postgres.TranslateError(fmt.Errorf("ensure retailer stock: %w", err), "retailer stock")
	}

	q := r.retailer.Select().Where(squirrel.Eq{
		"material_id": materialID,
		"retailer_id": retailerID,
	}).Suffix("FOR UPDATE")
	if err := r.getBalance(ctx, q, &balance); err != nil {
		return balance, fmt.Errorf("lock retailer stock: %w", err)
	}

	return balance, nil
}

// SaveRetailerStock writes back a locked row.
func (r *StockRepo) SaveRetailerStock(ctx context.Context, stock inventory.RetailerStock) error {
	return r.retailer.Update(ctx, &stock, squirrel.Eq{
		"material_id": stock.MaterialID,
		"retailer_id": stock.RetailerID,
	}, "material_id", "retailer_id")
}

// ListRetailerStock returns balances ordered by retailer then material.
func (r *StockRepo) ListRetailerStock(ctx context.Context, filter inventory.StockFilter) ([]inventory.RetailerStock, error) {
	q := r.retailer.Select()
	if filter.MaterialID != nil {
		q = q.Where(squirrel.Eq{"material_id": *filter.MaterialID})
	}
	if filter.OwnerID != nil {
		q = q.Where(squirrel.Eq{"retailer_id": *filter.OwnerID})
	}
	return r.retailer.All(ctx, q.OrderBy("retailer_id", "material_id"))
}

// AppendTransactions writes ledger rows. Inside a transaction it uses COPY.
func (r *StockRepo) AppendTransactions(ctx context.Context, txs ...inventory.Transaction) error {
	return r.transactions.InsertAll(ctx, txs)
}

// ListTransactions returns matching rows in insertion order.
func (r *StockRepo) ListTransactions(ctx context.Context, filter inventory.TransactionFilter) ([]inventory.Transaction, error) {
	return r.transactions.All(ctx, r.transactionsQuery(filter))
}

func (r *StockRepo) transactionsQuery(filter inventory.TransactionFilter) squirrel.SelectBuilder {
	q := r.transactions.Select()
	if filter.MaterialID != nil {
		q = q.Where(squirrel.Eq{"material_id": *filter.MaterialID})
	}
	if filter.LocationType != "" {
		q = q.Where(squirrel.Eq{"location_type": filter.LocationType})
	}
	if filter.LocationID != nil {
		q = q.Where(squirrel.Eq{"location_id": *filter.LocationID})
	}
	if filter.ReferenceID != nil {
		q = q.Where(squirrel.Eq{"reference_id": *filter.ReferenceID})
	}
	page := domain.Page{Limit: filter.Limit, Offset: filter.Offset}.Normalize()
	return postgres.Paginate(q.OrderBy("seq"), page.Limit, page.Offset)
}

func (r *StockRepo) getBalance(ctx context.Context, q squirrel.SelectBuilder, dst any) error {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, dst, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil
		}
		return fmt.Errorf("get balance: %w", err)
	}

	return nil
}

var _ inventory.Repository = (*StockRepo)(nil)
