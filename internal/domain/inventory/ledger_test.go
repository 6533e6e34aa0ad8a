package inventory_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harpreet-2146/FM-demo-sub001/internal/app/apptest"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
)

func batchRef() inventory.Reference {
	return inventory.Reference{Type: inventory.RefBatch, ID: id.New(), Number: "BATCH-TEST"}
}

func move(materialID, ownerID, actorID id.ID, qty inventory.Quantity, ref inventory.Reference) inventory.Movement {
	return inventory.Movement{MaterialID: materialID, OwnerID: ownerID, Qty: qty, Ref: ref, ActorID: actorID}
}

func TestSellUnitsOpensPackets(t *testing.T) {
	env := apptest.New(t)
	retailer := env.Retailer(t)
	m := env.Material(t, apptest.MaterialSpec{UnitsPerPacket: 10, MRP: "100.00"})

	_, err := env.Retailers.ReceiveGoods(env.Ctx, move(m.ID, retailer.ID, retailer.ID, inventory.Q(5, 0),
		inventory.Reference{Type: inventory.RefGRN, ID: id.New()}))
	require.NoError(t, err)

	saleRef := inventory.Reference{Type: inventory.RefSale, ID: id.New(), Number: "SALE-1"}
	opened, err := env.Retailers.SellUnits(env.Ctx, m.ID, retailer.ID, 12, saleRef, retailer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), opened)

	stock, err := env.Retailers.Balance(env.Ctx, m.ID, retailer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stock.FullPackets)
	assert.Equal(t, int64(8), stock.LooseUnits)

	rows, err := env.Backend.Inventory.ListTransactions(env.Ctx, inventory.TransactionFilter{ReferenceID: &saleRef.ID})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, inventory.TxPacketOpen, rows[0].Type)
	assert.Equal(t, int64(-2), rows[0].PacketsDelta)
	assert.Equal(t, int64(20), rows[0].UnitsDelta)

	assert.Equal(t, inventory.TxSale, rows[1].Type)
	assert.Equal(t, int64(0), rows[1].PacketsDelta)
	assert.Equal(t, int64(-12), rows[1].UnitsDelta)
	assert.Equal(t, int64(3), rows[1].PacketsAfter)
	assert.Equal(t, int64(8), rows[1].UnitsAfter)
}

func TestSellUnitsFromLooseStockOnly(t *testing.T) {
	env := apptest.New(t)
	retailer := env.Retailer(t)
	m := env.Material(t, apptest.MaterialSpec{UnitsPerPacket: 10})

	_, err := env.Retailers.ReceiveGoods(env.Ctx, move(m.ID, retailer.ID, retailer.ID, inventory.Q(1, 6),
		inventory.Reference{Type: inventory.RefGRN, ID: id.New()}))
	require.NoError(t, err)

	opened, err := env.Retailers.SellUnits(env.Ctx, m.ID, retailer.ID, 6,
		inventory.Reference{Type: inventory.RefSale, ID: id.New()}, retailer.ID)
	require.NoError(t, err)
	assert.Zero(t, opened)

	stock, err := env.Retailers.Balance(env.Ctx, m.ID, retailer.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.Q(1, 0), inventory.Q(stock.FullPackets, stock.LooseUnits))
}

func TestSellUnitsInsufficientLeavesNoTrace(t *testing.T) {
	env := apptest.New(t)
	retailer := env.Retailer(t)
	m := env.Material(t, apptest.MaterialSpec{UnitsPerPacket: 10})

	_, err := env.Retailers.ReceiveGoods(env.Ctx, move(m.ID, retailer.ID, retailer.ID, inventory.Q(0, 3),
		inventory.Reference{Type: inventory.RefGRN, ID: id.New()}))
	require.NoError(t, err)

	before, err := env.Backend.Inventory.ListTransactions(env.Ctx, inventory.TransactionFilter{MaterialID: &m.ID})
	require.NoError(t, err)

	_, err = env.Retailers.SellUnits(env.Ctx, m.ID, retailer.ID, 5,
		inventory.Reference{Type: inventory.RefSale, ID: id.New()}, retailer.ID)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientInventory))

	after, err := env.Backend.Inventory.ListTransactions(env.Ctx, inventory.TransactionFilter{MaterialID: &m.ID})
	require.NoError(t, err)
	assert.Len(t, after, len(before))

	units, err := env.Retailers.AvailableUnits(env.Ctx, m.ID, retailer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), units)
}

func TestSellUnitsRejectsNonPositive(t *testing.T) {
	env := apptest.New(t)
	retailer := env.Retailer(t)
	m := env.Material(t, apptest.MaterialSpec{})

	_, err := env.Retailers.SellUnits(env.Ctx, m.ID, retailer.ID, 0,
		inventory.Reference{Type: inventory.RefSale, ID: id.New()}, retailer.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument))
}

func TestReceiveGoodsFoldsLooseUnits(t *testing.T) {
	env := apptest.New(t)
	retailer := env.Retailer(t)
	m := env.Material(t, apptest.MaterialSpec{UnitsPerPacket: 10})

	stock, err := env.Retailers.ReceiveGoods(env.Ctx, move(m.ID, retailer.ID, retailer.ID, inventory.Q(1, 15),
		inventory.Reference{Type: inventory.RefGRN, ID: id.New()}))
	require.NoError(t, err)
	assert.Equal(t, int64(2), stock.FullPackets)
	assert.Equal(t, int64(5), stock.LooseUnits)

	stock, err = env.Retailers.ReceiveGoods(env.Ctx, move(m.ID, retailer.ID, retailer.ID, inventory.Q(0, 7),
		inventory.Reference{Type: inventory.RefGRN, ID: id.New()}))
	require.NoError(t, err)
	assert.Equal(t, int64(3), stock.FullPackets)
	assert.Equal(t, int64(2), stock.LooseUnits)
}

func TestReceiveGoodsZeroIsNoop(t *testing.T) {
	env := apptest.New(t)
	retailer := env.Retailer(t)
	m := env.Material(t, apptest.MaterialSpec{})

	ref := inventory.Reference{Type: inventory.RefGRN, ID: id.New()}
	_, err := env.Retailers.ReceiveGoods(env.Ctx, move(m.ID, retailer.ID, retailer.ID, inventory.Q(0, 0), ref))
	require.NoError(t, err)

	rows, err := env.Backend.Inventory.ListTransactions(env.Ctx, inventory.TransactionFilter{ReferenceID: &ref.ID})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBlockForDispatchChecksAvailable(t *testing.T) {
	env := apptest.New(t)
	mfg := env.Manufacturer(t)
	m := env.Material(t, apptest.MaterialSpec{})

	_, err := env.Manufacturers.AddProduction(env.Ctx, move(m.ID, mfg.ID, mfg.ID, inventory.Q(15, 0), batchRef()))
	require.NoError(t, err)

	srnRef := inventory.Reference{Type: inventory.RefSRN, ID: id.New()}
	_, err = env.Manufacturers.BlockForDispatch(env.Ctx, move(m.ID, mfg.ID, env.Admin.ID, inventory.Q(20, 0), srnRef))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientInventory, appErr.Code)
	assert.Equal(t, int64(20), appErr.Details["requested"])
	assert.Equal(t, int64(15), appErr.Details["available"])

	stock, err := env.Manufacturers.BlockForDispatch(env.Ctx, move(m.ID, mfg.ID, env.Admin.ID, inventory.Q(15, 0), srnRef))
	require.NoError(t, err)
	assert.Equal(t, int64(15), stock.BlockedPackets)
	assert.Equal(t, int64(15), stock.FullPackets)

	avail, err := env.Manufacturers.AvailablePackets(env.Ctx, m.ID, mfg.ID)
	require.NoError(t, err)
	assert.Zero(t, avail)
}

func TestBlockForDispatchChecksLooseUnits(t *testing.T) {
	env := apptest.New(t)
	mfg := env.Manufacturer(t)
	m := env.Material(t, apptest.MaterialSpec{})

	_, err := env.Manufacturers.AddProduction(env.Ctx, move(m.ID, mfg.ID, mfg.ID, inventory.Q(5, 3), batchRef()))
	require.NoError(t, err)

	_, err = env.Manufacturers.BlockForDispatch(env.Ctx, move(m.ID, mfg.ID, env.Admin.ID, inventory.Q(1, 4),
		inventory.Reference{Type: inventory.RefSRN, ID: id.New()}))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientInventory, appErr.Code)
	assert.Equal(t, "loose_units", appErr.Details["dimension"])

	units, err := env.Manufacturers.AvailableLooseUnits(env.Ctx, m.ID, mfg.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), units)
}

func TestExecuteDispatchBeyondBlockedChangesNothing(t *testing.T) {
	env := apptest.New(t)
	mfg := env.Manufacturer(t)
	m := env.Material(t, apptest.MaterialSpec{})

	_, err := env.Manufacturers.AddProduction(env.Ctx, move(m.ID, mfg.ID, mfg.ID, inventory.Q(10, 0), batchRef()))
	require.NoError(t, err)
	_, err = env.Manufacturers.BlockForDispatch(env.Ctx, move(m.ID, mfg.ID, env.Admin.ID, inventory.Q(5, 0),
		inventory.Reference{Type: inventory.RefSRN, ID: id.New()}))
	require.NoError(t, err)

	before, err := env.Backend.Inventory.ListTransactions(env.Ctx, inventory.TransactionFilter{MaterialID: &m.ID})
	require.NoError(t, err)

	_, err = env.Manufacturers.ExecuteDispatch(env.Ctx, move(m.ID, mfg.ID, mfg.ID, inventory.Q(6, 0),
		inventory.Reference{Type: inventory.RefDispatch, ID: id.New()}))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientBlocked))

	stock, err := env.Manufacturers.Balance(env.Ctx, m.ID, mfg.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stock.FullPackets)
	assert.Equal(t, int64(5), stock.BlockedPackets)

	after, err := env.Backend.Inventory.ListTransactions(env.Ctx, inventory.TransactionFilter{MaterialID: &m.ID})
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestExecuteDispatchReleasesReservation(t *testing.T) {
	env := apptest.New(t)
	mfg := env.Manufacturer(t)
	m := env.Material(t, apptest.MaterialSpec{})

	_, err := env.Manufacturers.AddProduction(env.Ctx, move(m.ID, mfg.ID, mfg.ID, inventory.Q(10, 4), batchRef()))
	require.NoError(t, err)
	_, err = env.Manufacturers.BlockForDispatch(env.Ctx, move(m.ID, mfg.ID, env.Admin.ID, inventory.Q(4, 2),
		inventory.Reference{Type: inventory.RefSRN, ID: id.New()}))
	require.NoError(t, err)

	stock, err := env.Manufacturers.ExecuteDispatch(env.Ctx, move(m.ID, mfg.ID, mfg.ID, inventory.Q(4, 2),
		inventory.Reference{Type: inventory.RefDispatch, ID: id.New()}))
	require.NoError(t, err)
	assert.Equal(t, inventory.Q(6, 2), inventory.Q(stock.FullPackets, stock.LooseUnits))
	assert.True(t, stock.Blocked().IsZero())
}

func TestLedgerDeltasReconcileWithBalance(t *testing.T) {
	env := apptest.New(t)
	mfg := env.Manufacturer(t)
	m := env.Material(t, apptest.MaterialSpec{})

	steps := []func() error{
		func() error {
			_, err := env.Manufacturers.AddProduction(env.Ctx, move(m.ID, mfg.ID, mfg.ID, inventory.Q(30, 7), batchRef()))
			return err
		},
		func() error {
			_, err := env.Manufacturers.BlockForDispatch(env.Ctx, move(m.ID, mfg.ID, env.Admin.ID, inventory.Q(12, 5),
				inventory.Reference{Type: inventory.RefSRN, ID: id.New()}))
			return err
		},
		func() error {
			_, err := env.Manufacturers.ExecuteDispatch(env.Ctx, move(m.ID, mfg.ID, mfg.ID, inventory.Q(10, 5),
				inventory.Reference{Type: inventory.RefDispatch, ID: id.New()}))
			return err
		},
		func() error {
			_, err := env.Manufacturers.RestockFromReturn(env.Ctx, move(m.ID, mfg.ID, env.Admin.ID, inventory.Q(2, 1),
				inventory.Reference{Type: inventory.RefReturn, ID: id.New()}))
			return err
		},
	}
	for _, step := range steps {
		require.NoError(t, step())
	}

	rows, err := env.Backend.Inventory.ListTransactions(env.Ctx, inventory.TransactionFilter{
		MaterialID:   &m.ID,
		LocationType: inventory.LocationManufacturer,
		Limit:        500,
	})
	require.NoError(t, err)
	require.Len(t, rows, len(steps))

	var packets, units, blockedPackets, blockedUnits int64
	for _, r := range rows {
		packets += r.PacketsDelta
		units += r.UnitsDelta
		blockedPackets += r.BlockedPacketsDelta
		blockedUnits += r.BlockedUnitsDelta
	}

	stock, err := env.Manufacturers.Balance(env.Ctx, m.ID, mfg.ID)
	require.NoError(t, err)
	assert.Equal(t, stock.FullPackets, packets)
	assert.Equal(t, stock.LooseUnits, units)
	assert.Equal(t, stock.BlockedPackets, blockedPackets)
	assert.Equal(t, stock.BlockedLooseUnits, blockedUnits)
	assert.Equal(t, inventory.Q(22, 3), inventory.Q(stock.FullPackets, stock.LooseUnits))
	assert.Equal(t, inventory.Q(2, 0), stock.Blocked())
}

func TestMovementValidation(t *testing.T) {
	env := apptest.New(t)
	mfg := env.Manufacturer(t)
	m := env.Material(t, apptest.MaterialSpec{})

	_, err := env.Manufacturers.AddProduction(env.Ctx, move(m.ID, mfg.ID, mfg.ID, inventory.Q(-1, 0), batchRef()))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument))

	_, err = env.Manufacturers.AddProduction(env.Ctx, move(id.Nil(), mfg.ID, mfg.ID, inventory.Q(1, 0), batchRef()))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument))
}

func TestServiceScopesStockToCaller(t *testing.T) {
	env := apptest.New(t)
	mine := env.Manufacturer(t)
	other := env.Manufacturer(t)
	m := env.Material(t, apptest.MaterialSpec{})

	env.Produce(t, mine, m, inventory.Q(3, 0))
	env.Produce(t, other, m, inventory.Q(4, 0))

	rows, err := env.Inventory.ManufacturerStock(env.Ctx, mine, inventory.StockFilter{OwnerID: &other.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, mine.ID, rows[0].ManufacturerID)

	all, err := env.Inventory.ManufacturerStock(env.Ctx, env.Admin, inventory.StockFilter{MaterialID: &m.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	retailer := env.Retailer(t)
	_, err = env.Inventory.ManufacturerStock(env.Ctx, retailer, inventory.StockFilter{})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
}

func TestConcurrentBlocksNeverOverbook(t *testing.T) {
	env := apptest.New(t)
	mfg := env.Manufacturer(t)
	m := env.Material(t, apptest.MaterialSpec{})
	_, err := env.Manufacturers.AddProduction(env.Ctx, move(m.ID, mfg.ID, mfg.ID, inventory.Q(7, 0), batchRef()))
	require.NoError(t, err)

	const callers = 25
	var (
		wg       sync.WaitGroup
		blocked  atomic.Int64
		shortage atomic.Int64
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.Manufacturers.BlockForDispatch(env.Ctx, move(m.ID, mfg.ID, env.Admin.ID, inventory.Q(1, 0),
				inventory.Reference{Type: inventory.RefSRN, ID: id.New()}))
			switch {
			case err == nil:
				blocked.Add(1)
			case apperror.HasCode(err, apperror.CodeInsufficientInventory):
				shortage.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(7), blocked.Load())
	assert.Equal(t, int64(callers-7), shortage.Load())

	stock, err := env.Manufacturers.Balance(env.Ctx, m.ID, mfg.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), stock.FullPackets)
	assert.Equal(t, int64(7), stock.BlockedPackets)
	assert.Equal(t, inventory.Q(0, 0), stock.Available())

	rows, err := env.Backend.Inventory.ListTransactions(env.Ctx, inventory.TransactionFilter{
		MaterialID:   &m.ID,
		LocationType: inventory.LocationManufacturer,
		Limit:        500,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1+7)
	var blockedSum int64
	for _, r := range rows {
		blockedSum += r.BlockedPacketsDelta
	}
	assert.Equal(t, stock.BlockedPackets, blockedSum)
}
