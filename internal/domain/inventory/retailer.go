package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/tx"
	"github.com/harpreet-2146/FM-demo-sub001/pkg/logger"
)

// RetailerLedger owns goods receipt and unit sales of retailer stock.
type RetailerLedger struct {
	repo      Repository
	sizes     PacketSizer
	txManager tx.Manager
}

// NewRetailerLedger creates the ledger.
func NewRetailerLedger(repo Repository, sizes PacketSizer, txManager tx.Manager) *RetailerLedger {
	return &RetailerLedger{repo: repo, sizes: sizes, txManager: txManager}
}

// ReceiveGoods adds received stock. Loose units that complete whole packets are
// folded into full packets. A zero quantity is a no-op and writes no row.
func (l *RetailerLedger) ReceiveGoods(ctx context.Context, m Movement) (RetailerStock, error) {
	if err := m.Qty.ValidateNonNegative("received quantity"); err != nil {
		return RetailerStock{}, err
	}
	if m.Qty.IsZero() {
		return l.Balance(ctx, m.MaterialID, m.OwnerID)
	}
	if err := m.validate(); err != nil {
		return RetailerStock{}, err
	}

	var result RetailerStock
	err := l.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		upp, err := l.sizes.UnitsPerPacket(ctx, m.MaterialID)
		if err != nil {
			return err
		}
		stock, err := l.repo.LockRetailerStock(ctx, m.MaterialID, m.OwnerID)
		if err != nil {
			return fmt.Errorf("lock retailer stock: %w", err)
		}

		loose := stock.LooseUnits + m.Qty.Units
		folded := loose / upp
		packetsDelta := m.Qty.Packets + folded
		unitsDelta := m.Qty.Units - folded*upp

		stock.FullPackets += packetsDelta
		stock.LooseUnits += unitsDelta
		if err := stock.check(upp); err != nil {
			logger.Error(ctx, "retailer ledger invariant violated", "error", err, "type", TxGRNReceive)
			return err
		}

		now := time.Now().UTC()
		stock.UpdatedAt = now
		if err := l.repo.SaveRetailerStock(ctx, stock); err != nil {
			return fmt.Errorf("save retailer stock: %w", err)
		}
		if err := l.repo.AppendTransactions(ctx, retailerRow(m, TxGRNReceive, packetsDelta, unitsDelta, stock, now)); err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}

		result = stock
		return nil
	})
	if err != nil {
		return RetailerStock{}, err
	}
	return result, nil
}

// SellUnits consumes units, opening sealed packets when loose stock is short.
// Returns the number of packets opened.
func (l *RetailerLedger) SellUnits(ctx context.Context, materialID, retailerID id.ID, units int64, ref Reference, actorID id.ID) (int64, error) {
	m := Movement{MaterialID: materialID, OwnerID: retailerID, Qty: Q(0, units), Ref: ref, ActorID: actorID}
	if units <= 0 {
		return 0, apperror.NewInvalidArgument("units sold must be positive").WithDetail("units", units)
	}
	if err := m.validate(); err != nil {
		return 0, err
	}

	var opened int64
	err := l.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		upp, err := l.sizes.UnitsPerPacket(ctx, materialID)
		if err != nil {
			return err
		}
		stock, err := l.repo.LockRetailerStock(ctx, materialID, retailerID)
		if err != nil {
			return fmt.Errorf("lock retailer stock: %w", err)
		}

		total := stock.TotalUnits(upp)
		if total < units {
			return apperror.NewInsufficientInventory(materialID.String(), units, total).
				WithDetail("dimension", "units")
		}

		packetsToOpen := int64(0)
		if stock.LooseUnits < units {
			needed := units - stock.LooseUnits
			packetsToOpen = (needed + upp - 1) / upp
			if packetsToOpen > stock.FullPackets {
				return apperror.NewInsufficientInventory(materialID.String(), packetsToOpen, stock.FullPackets).
					WithDetail("dimension", "packets")
			}
		}

		stock.FullPackets -= packetsToOpen
		stock.LooseUnits = stock.LooseUnits + packetsToOpen*upp - units
		if err := stock.check(upp); err != nil {
			logger.Error(ctx, "retailer ledger invariant violated", "error", err, "type", TxSale)
			return err
		}

		now := time.Now().UTC()
		stock.UpdatedAt = now
		if err := l.repo.SaveRetailerStock(ctx, stock); err != nil {
			return fmt.Errorf("save retailer stock: %w", err)
		}

		rows := make([]Transaction, 0, 2)
		if packetsToOpen > 0 {
			rows = append(rows, retailerRow(m, TxPacketOpen, -packetsToOpen, packetsToOpen*upp, stock, now))
		}
		rows = append(rows, retailerRow(m, TxSale, 0, -units, stock, now))
		if err := l.repo.AppendTransactions(ctx, rows...); err != nil {
			return fmt.Errorf("append transactions: %w", err)
		}

		opened = packetsToOpen
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Debug(ctx, "retailer units sold",
		"material_id", materialID,
		"retailer_id", retailerID,
		"units", units,
		"packets_opened", opened,
	)
	return opened, nil
}

// Balance returns the current row, zero if the retailer never held the material.
func (l *RetailerLedger) Balance(ctx context.Context, materialID, retailerID id.ID) (RetailerStock, error) {
	s, err := l.repo.GetRetailerStock(ctx, materialID, retailerID)
	if err != nil {
		return RetailerStock{}, fmt.Errorf("get retailer stock: %w", err)
	}
	return s, nil
}

// AvailableUnits returns fullPackets*unitsPerPacket + looseUnits.
func (l *RetailerLedger) AvailableUnits(ctx context.Context, materialID, retailerID id.ID) (int64, error) {
	upp, err := l.sizes.UnitsPerPacket(ctx, materialID)
	if err != nil {
		return 0, err
	}
	s, err := l.Balance(ctx, materialID, retailerID)
	if err != nil {
		return 0, err
	}
	return s.TotalUnits(upp), nil
}

func retailerRow(m Movement, typ TransactionType, packets, units int64, after RetailerStock, at time.Time) Transaction {
	return Transaction{
		ID:           id.New(),
		MaterialID:   m.MaterialID,
		ActorID:      m.ActorID,
		Type:         typ,
		LocationType: LocationRetailer,
		LocationID:   m.OwnerID,
		PacketsDelta: packets,
		UnitsDelta:   units,
		RefType:      m.Ref.Type,
		RefID:        m.Ref.ID,
		RefNumber:    m.Ref.Number,
		PacketsAfter: after.FullPackets,
		UnitsAfter:   after.LooseUnits,
		CreatedAt:    at,
	}
}
