package inventory

import (
	"context"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
)

// Repository persists ledger rows and the transaction log.
// All methods run on the transaction carried by ctx when there is one.
type Repository interface {
	// GetManufacturerStock returns the row or a zero balance if none exists.
	GetManufacturerStock(ctx context.Context, materialID, manufacturerID id.ID) (ManufacturerStock, error)

	// LockManufacturerStock returns the row locked for update, creating a zero row on first touch.
	LockManufacturerStock(ctx context.Context, materialID, manufacturerID id.ID) (ManufacturerStock, error)

	SaveManufacturerStock(ctx context.Context, stock ManufacturerStock) error

	ListManufacturerStock(ctx context.Context, filter StockFilter) ([]ManufacturerStock, error)

	GetRetailerStock(ctx context.Context, materialID, retailerID id.ID) (RetailerStock, error)

	LockRetailerStock(ctx context.Context, materialID, retailerID id.ID) (RetailerStock, error)

	SaveRetailerStock(ctx context.Context, stock RetailerStock) error

	ListRetailerStock(ctx context.Context, filter StockFilter) ([]RetailerStock, error)

	// AppendTransactions writes ledger rows in order. Rows are never updated or deleted.
	AppendTransactions(ctx context.Context, txs ...Transaction) error

	ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error)
}

// StockFilter narrows balance listings.
type StockFilter struct {
	MaterialID *id.ID
	OwnerID    *id.ID
}

// TransactionFilter narrows transaction log listings. Results are oldest first.
type TransactionFilter struct {
	MaterialID   *id.ID
	LocationType LocationType
	LocationID   *id.ID
	ReferenceID  *id.ID
	Limit        int
	Offset       int
}

// PacketSizer resolves the immutable units-per-packet of a material.
type PacketSizer interface {
	UnitsPerPacket(ctx context.Context, materialID id.ID) (int64, error)
}
