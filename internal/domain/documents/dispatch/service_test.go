package dispatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harpreet-2146/FM-demo-sub001/internal/app/apptest"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/money"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/catalog/material"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/dispatch"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/grn"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/srn"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/notification"
)

type parties struct {
	retailer security.Actor
	mfg      security.Actor
	material *material.Material
}

// approved seeds 50 packets and 9 loose units at a manufacturer and returns
// an SRN for qty approved against it.
func approved(t *testing.T, env *apptest.Env, qty inventory.Quantity) (*srn.SRN, parties) {
	t.Helper()
	p := parties{
		retailer: env.Retailer(t),
		mfg:      env.Manufacturer(t),
		material: env.Material(t, apptest.MaterialSpec{UnitsPerPacket: 10, MRP: "100.00"}),
	}
	env.Produce(t, p.mfg, p.material, inventory.Q(50, 9))
	doc := env.SubmitSRN(t, p.retailer, srn.LineInput{MaterialID: p.material.ID, Qty: qty})
	return env.ApproveAll(t, doc, p.mfg), p
}

func TestCreateDispatchFreezesPricing(t *testing.T) {
	env := apptest.New(t)
	doc, p := approved(t, env, inventory.Q(3, 5))

	order, err := env.Dispatch.CreateDispatch(env.Ctx, p.mfg, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, dispatch.StatusPending, order.Status)
	assert.Regexp(t, `^DO-\d{8}-000001$`, order.Number)
	require.Len(t, order.Items, 1)

	it := order.Items[0]
	assert.Equal(t, inventory.Q(3, 5), it.Qty())
	assert.Equal(t, int64(35), it.Units())
	assert.True(t, money.MustParse("10").Equal(it.UnitPrice), "unit price %s", it.UnitPrice)
	assert.True(t, money.MustParse("350").Equal(it.LineTotal), "line total %s", it.LineTotal)
	assert.True(t, money.MustParse("350").Equal(order.Subtotal))
	assert.Equal(t, "3004", it.HSNCode)

	receipt, err := env.Backend.GRNs.GetByDispatch(env.Ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, grn.StatusPending, receipt.Status)
	require.Len(t, receipt.Items, 1)
	assert.Equal(t, inventory.Q(3, 5), receipt.Items[0].Expected())

	_, err = env.Dispatch.CreateDispatch(env.Ctx, p.mfg, doc.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict), "got %v", err)
}

func TestCreateDispatchRequiresApproval(t *testing.T) {
	env := apptest.New(t)
	retailer := env.Retailer(t)
	mfg := env.Manufacturer(t)
	m := env.Material(t, apptest.MaterialSpec{})
	doc := env.SubmitSRN(t, retailer, srn.LineInput{MaterialID: m.ID, Qty: inventory.Q(1, 0)})

	_, err := env.Dispatch.CreateDispatch(env.Ctx, mfg, doc.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState), "got %v", err)
}

func TestCreateDispatchOnlyByBoundManufacturer(t *testing.T) {
	env := apptest.New(t)
	doc, p := approved(t, env, inventory.Q(1, 0))

	_, err := env.Dispatch.CreateDispatch(env.Ctx, env.Manufacturer(t), doc.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden), "got %v", err)

	_, err = env.Dispatch.CreateDispatch(env.Ctx, p.retailer, doc.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden), "got %v", err)

	_, err = env.Dispatch.CreateDispatch(env.Ctx, env.Admin, doc.ID)
	assert.NoError(t, err)
}

func TestExecuteShipsBlockedStock(t *testing.T) {
	env := apptest.New(t)
	doc, p := approved(t, env, inventory.Q(3, 5))

	order, err := env.Dispatch.CreateDispatch(env.Ctx, p.mfg, doc.ID)
	require.NoError(t, err)

	order, err = env.Dispatch.Execute(env.Ctx, p.mfg, order.ID)
	require.NoError(t, err)
	assert.Equal(t, dispatch.StatusInTransit, order.Status)
	assert.NotNil(t, order.ExecutedAt)

	bal, err := env.Manufacturers.Balance(env.Ctx, p.material.ID, p.mfg.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(47), bal.FullPackets)
	assert.Equal(t, int64(4), bal.LooseUnits)
	assert.True(t, bal.Blocked().IsZero())

	_, err = env.Dispatch.Execute(env.Ctx, p.mfg, order.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState), "got %v", err)

	inbox, err := env.Inbox.List(env.Ctx, p.retailer, true, 10)
	require.NoError(t, err)
	require.NotEmpty(t, inbox)
	assert.Equal(t, notification.TypeDispatchExecuted, inbox[0].Type)
}

func TestConfirmInFull(t *testing.T) {
	env := apptest.New(t)
	doc, p := approved(t, env, inventory.Q(3, 5))
	order, receipt := env.Ship(t, doc, p.mfg)

	receipt = env.ReceiveInFull(t, p.retailer, receipt)
	assert.Equal(t, grn.StatusConfirmed, receipt.Status)
	assert.False(t, receipt.HasDiscrepancy())
	require.NotNil(t, receipt.ConfirmedBy)
	assert.Equal(t, p.retailer.ID, *receipt.ConfirmedBy)

	order, err := env.Dispatch.Get(env.Ctx, p.retailer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, dispatch.StatusDelivered, order.Status)
	assert.NotNil(t, order.DeliveredAt)

	bal, err := env.Retailers.Balance(env.Ctx, p.material.ID, p.retailer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), bal.FullPackets)
	assert.Equal(t, int64(5), bal.LooseUnits)

	_, err = env.Dispatch.Confirm(env.Ctx, p.retailer, receipt.ID, dispatch.ConfirmInput{
		Lines: []dispatch.ReceivedLine{{MaterialID: p.material.ID, Qty: inventory.Q(3, 5)}},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState), "got %v", err)
}

func TestConfirmRecordsDiscrepancy(t *testing.T) {
	env := apptest.New(t)
	doc, p := approved(t, env, inventory.Q(5, 0))
	_, receipt := env.Ship(t, doc, p.mfg)

	receipt, err := env.Dispatch.Confirm(env.Ctx, p.retailer, receipt.ID, dispatch.ConfirmInput{
		Lines: []dispatch.ReceivedLine{{MaterialID: p.material.ID, Qty: inventory.Q(4, 3)}},
		Note:  "one carton damaged",
	})
	require.NoError(t, err)
	assert.True(t, receipt.HasDiscrepancy())
	assert.Equal(t, "one carton damaged", receipt.Note)
	assert.Equal(t, inventory.Q(1, -3), receipt.Items[0].Shortfall())

	bal, err := env.Retailers.Balance(env.Ctx, p.material.ID, p.retailer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), bal.FullPackets)
	assert.Equal(t, int64(3), bal.LooseUnits)

	inbox, err := env.Inbox.List(env.Ctx, p.mfg, true, 10)
	require.NoError(t, err)
	require.NotEmpty(t, inbox)
	assert.Equal(t, notification.TypeGRNConfirmed, inbox[0].Type)
	assert.Contains(t, inbox[0].Message, "discrepancies")
}

func TestConfirmValidation(t *testing.T) {
	env := apptest.New(t)
	doc, p := approved(t, env, inventory.Q(2, 0))
	_, receipt := env.Ship(t, doc, p.mfg)
	other := env.Material(t, apptest.MaterialSpec{})

	_, err := env.Dispatch.Confirm(env.Ctx, env.Retailer(t), receipt.ID, dispatch.ConfirmInput{
		Lines: []dispatch.ReceivedLine{{MaterialID: p.material.ID, Qty: inventory.Q(2, 0)}},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden), "got %v", err)

	_, err = env.Dispatch.Confirm(env.Ctx, p.mfg, receipt.ID, dispatch.ConfirmInput{})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden), "got %v", err)

	tests := []struct {
		name  string
		lines []dispatch.ReceivedLine
	}{
		{"missing line", nil},
		{"foreign material", []dispatch.ReceivedLine{
			{MaterialID: p.material.ID, Qty: inventory.Q(2, 0)},
			{MaterialID: other.ID, Qty: inventory.Q(1, 0)},
		}},
		{"duplicate line", []dispatch.ReceivedLine{
			{MaterialID: p.material.ID, Qty: inventory.Q(1, 0)},
			{MaterialID: p.material.ID, Qty: inventory.Q(1, 0)},
		}},
		{"negative", []dispatch.ReceivedLine{{MaterialID: p.material.ID, Qty: inventory.Q(-1, 0)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Dispatch.Confirm(env.Ctx, p.retailer, receipt.ID, dispatch.ConfirmInput{Lines: tt.lines})
			assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument), "got %v", err)
		})
	}

	got, err := env.GRN.Get(env.Ctx, p.retailer, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, grn.StatusPending, got.Status)
}

func TestConfirmBeforeExecuteFails(t *testing.T) {
	env := apptest.New(t)
	doc, p := approved(t, env, inventory.Q(2, 0))
	order, err := env.Dispatch.CreateDispatch(env.Ctx, p.mfg, doc.ID)
	require.NoError(t, err)
	receipt, err := env.Backend.GRNs.GetByDispatch(env.Ctx, order.ID)
	require.NoError(t, err)

	_, err = env.Dispatch.Confirm(env.Ctx, p.retailer, receipt.ID, dispatch.ConfirmInput{
		Lines: []dispatch.ReceivedLine{{MaterialID: p.material.ID, Qty: inventory.Q(2, 0)}},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState), "got %v", err)
}

func TestListScopesToParty(t *testing.T) {
	env := apptest.New(t)
	doc, p := approved(t, env, inventory.Q(1, 0))
	env.Ship(t, doc, p.mfg)

	mine, err := env.Dispatch.List(env.Ctx, p.retailer, dispatch.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := env.Dispatch.List(env.Ctx, env.Retailer(t), dispatch.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, theirs)

	all, err := env.Dispatch.List(env.Ctx, env.Admin, dispatch.ListFilter{Status: dispatch.StatusInTransit})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
