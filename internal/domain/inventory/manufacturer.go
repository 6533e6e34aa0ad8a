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

// ManufacturerLedger owns production, blocking and dispatch of manufacturer stock.
type ManufacturerLedger struct {
	repo      Repository
	txManager tx.Manager
}

// NewManufacturerLedger creates the ledger.
func NewManufacturerLedger(repo Repository, txManager tx.Manager) *ManufacturerLedger {
	return &ManufacturerLedger{repo: repo, txManager: txManager}
}

// delta is a signed change of a manufacturer row.
type delta struct {
	packets, units, blockedPackets, blockedUnits int64
}

// AddProduction increments full packets and loose units.
func (l *ManufacturerLedger) AddProduction(ctx context.Context, m Movement) (ManufacturerStock, error) {
	return l.mutate(ctx, m, TxProduction, func(ManufacturerStock) (delta, error) {
		return delta{packets: m.Qty.Packets, units: m.Qty.Units}, nil
	})
}

// BlockForDispatch reserves stock against an approved requisition.
// Fails with InsufficientInventory unless available covers the request.
func (l *ManufacturerLedger) BlockForDispatch(ctx context.Context, m Movement) (ManufacturerStock, error) {
	return l.mutate(ctx, m, TxDispatchBlock, func(s ManufacturerStock) (delta, error) {
		avail := s.Available()
		if avail.Packets < m.Qty.Packets {
			return delta{}, apperror.NewInsufficientInventory(m.MaterialID.String(), m.Qty.Packets, avail.Packets).
				WithDetail("dimension", "packets")
		}
		if avail.Units < m.Qty.Units {
			return delta{}, apperror.NewInsufficientInventory(m.MaterialID.String(), m.Qty.Units, avail.Units).
				WithDetail("dimension", "loose_units")
		}
		return delta{blockedPackets: m.Qty.Packets, blockedUnits: m.Qty.Units}, nil
	})
}

// ExecuteDispatch ships reserved stock: full and blocked quantities drop together.
// Fails with InsufficientBlocked unless the reservation covers the request.
func (l *ManufacturerLedger) ExecuteDispatch(ctx context.Context, m Movement) (ManufacturerStock, error) {
	return l.mutate(ctx, m, TxDispatchExecute, func(s ManufacturerStock) (delta, error) {
		if s.BlockedPackets < m.Qty.Packets {
			return delta{}, apperror.NewInsufficientBlocked(m.MaterialID.String(), m.Qty.Packets, s.BlockedPackets).
				WithDetail("dimension", "packets")
		}
		if s.BlockedLooseUnits < m.Qty.Units {
			return delta{}, apperror.NewInsufficientBlocked(m.MaterialID.String(), m.Qty.Units, s.BlockedLooseUnits).
				WithDetail("dimension", "loose_units")
		}
		return delta{
			packets:        -m.Qty.Packets,
			units:          -m.Qty.Units,
			blockedPackets: -m.Qty.Packets,
			blockedUnits:   -m.Qty.Units,
		}, nil
	})
}

// RestockFromReturn puts returned goods back into full stock.
func (l *ManufacturerLedger) RestockFromReturn(ctx context.Context, m Movement) (ManufacturerStock, error) {
	return l.mutate(ctx, m, TxReturnRestock, func(ManufacturerStock) (delta, error) {
		return delta{packets: m.Qty.Packets, units: m.Qty.Units}, nil
	})
}

// Balance returns the current row, zero if the manufacturer never held the material.
func (l *ManufacturerLedger) Balance(ctx context.Context, materialID, manufacturerID id.ID) (ManufacturerStock, error) {
	s, err := l.repo.GetManufacturerStock(ctx, materialID, manufacturerID)
	if err != nil {
		return ManufacturerStock{}, fmt.Errorf("get manufacturer stock: %w", err)
	}
	return s, nil
}

// AvailablePackets returns full minus blocked packets.
func (l *ManufacturerLedger) AvailablePackets(ctx context.Context, materialID, manufacturerID id.ID) (int64, error) {
	s, err := l.Balance(ctx, materialID, manufacturerID)
	if err != nil {
		return 0, err
	}
	return s.Available().Packets, nil
}

// AvailableLooseUnits returns loose minus blocked loose units.
func (l *ManufacturerLedger) AvailableLooseUnits(ctx context.Context, materialID, manufacturerID id.ID) (int64, error) {
	s, err := l.Balance(ctx, materialID, manufacturerID)
	if err != nil {
		return 0, err
	}
	return s.Available().Units, nil
}

func (l *ManufacturerLedger) mutate(
	ctx context.Context,
	m Movement,
	typ TransactionType,
	change func(ManufacturerStock) (delta, error),
) (ManufacturerStock, error) {
	if err := m.validate(); err != nil {
		return ManufacturerStock{}, err
	}

	var result ManufacturerStock
	err := l.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		stock, err := l.repo.LockManufacturerStock(ctx, m.MaterialID, m.OwnerID)
		if err != nil {
			return fmt.Errorf("lock manufacturer stock: %w", err)
		}

		d, err := change(stock)
		if err != nil {
			return err
		}

		stock.FullPackets += d.packets
		stock.LooseUnits += d.units
		stock.BlockedPackets += d.blockedPackets
		stock.BlockedLooseUnits += d.blockedUnits
		if err := stock.check(); err != nil {
			logger.Error(ctx, "manufacturer ledger invariant violated", "error", err, "type", typ)
			return err
		}

		now := time.Now().UTC()
		stock.UpdatedAt = now
		if err := l.repo.SaveManufacturerStock(ctx, stock); err != nil {
			return fmt.Errorf("save manufacturer stock: %w", err)
		}

		row := Transaction{
			ID:                  id.New(),
			MaterialID:          m.MaterialID,
			ActorID:             m.ActorID,
			Type:                typ,
			LocationType:        LocationManufacturer,
			LocationID:          m.OwnerID,
			PacketsDelta:        d.packets,
			UnitsDelta:          d.units,
			BlockedPacketsDelta: d.blockedPackets,
			BlockedUnitsDelta:   d.blockedUnits,
			RefType:             m.Ref.Type,
			RefID:               m.Ref.ID,
			RefNumber:           m.Ref.Number,
			PacketsAfter:        stock.FullPackets,
			UnitsAfter:          stock.LooseUnits,
			BlockedPacketsAfter: stock.BlockedPackets,
			BlockedUnitsAfter:   stock.BlockedLooseUnits,
			CreatedAt:           now,
		}
		if err := l.repo.AppendTransactions(ctx, row); err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}

		result = stock
		return nil
	})
	if err != nil {
		return ManufacturerStock{}, err
	}

	logger.Debug(ctx, "manufacturer ledger updated",
		"type", typ,
		"material_id", m.MaterialID,
		"manufacturer_id", m.OwnerID,
		"packets", m.Qty.Packets,
		"loose_units", m.Qty.Units,
	)
	return result, nil
}
