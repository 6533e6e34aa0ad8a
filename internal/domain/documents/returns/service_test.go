package returns_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harpreet-2146/FM-demo-sub001/internal/app/apptest"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/returns"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/notification"
)

func TestRestockReturnsGoodsToManufacturer(t *testing.T) {
	env := apptest.New(t)
	retailer := env.Retailer(t)
	mfg := env.Manufacturer(t)
	m := env.Material(t, apptest.MaterialSpec{})
	receipt := env.Stock(t, retailer, mfg, m, inventory.Q(4, 0))

	ret, err := env.Returns.Create(env.Ctx, retailer, returns.CreateInput{
		ManufacturerID: mfg.ID,
		GRNID:          &receipt.ID,
		Reason:         "expired",
		Items:          []returns.ItemInput{{MaterialID: m.ID, Qty: inventory.Q(1, 3), Reason: "seal broken"}},
	})
	require.NoError(t, err)
	assert.Equal(t, returns.StatusRaised, ret.Status)
	assert.Regexp(t, `^RET-\d{8}-000001$`, ret.Number)

	ret, err = env.Returns.MarkUnderReview(env.Ctx, env.Admin, ret.ID)
	require.NoError(t, err)
	assert.Equal(t, returns.StatusUnderReview, ret.Status)
	assert.NotNil(t, ret.ReviewedAt)

	ret, err = env.Returns.Resolve(env.Ctx, env.Admin, ret.ID, returns.StatusApprovedRestock, "ok")
	require.NoError(t, err)
	assert.Equal(t, returns.StatusApprovedRestock, ret.Status)
	assert.Equal(t, "ok", ret.ResolutionNote)

	bal, err := env.Manufacturers.Balance(env.Ctx, m.ID, mfg.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), bal.FullPackets)
	assert.Equal(t, int64(3), bal.LooseUnits)

	txs, err := env.Inventory.Transactions(env.Ctx, env.Admin, inventory.TransactionFilter{
		MaterialID:  &m.ID,
		ReferenceID: &ret.ID,
	})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, inventory.TxReturnRestock, txs[0].Type)

	inbox, err := env.Inbox.List(env.Ctx, retailer, true, 10)
	require.NoError(t, err)
	require.NotEmpty(t, inbox)
	assert.Equal(t, notification.TypeReturnResolved, inbox[0].Type)

	_, err = env.Returns.Resolve(env.Ctx, env.Admin, ret.ID, returns.StatusRejected, "")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState), "got %v", err)
}

func TestNonRestockResolutionsLeaveStock(t *testing.T) {
	for _, resolution := range []returns.Status{returns.StatusApprovedReplace, returns.StatusRejected} {
		t.Run(string(resolution), func(t *testing.T) {
			env := apptest.New(t)
			retailer := env.Retailer(t)
			mfg := env.Manufacturer(t)
			m := env.Material(t, apptest.MaterialSpec{})

			ret, err := env.Returns.Create(env.Ctx, retailer, returns.CreateInput{
				ManufacturerID: mfg.ID,
				Items:          []returns.ItemInput{{MaterialID: m.ID, Qty: inventory.Q(2, 0)}},
			})
			require.NoError(t, err)

			ret, err = env.Returns.Resolve(env.Ctx, env.Admin, ret.ID, resolution, "")
			require.NoError(t, err)
			assert.Equal(t, resolution, ret.Status)

			bal, err := env.Manufacturers.Balance(env.Ctx, m.ID, mfg.ID)
			require.NoError(t, err)
			assert.Zero(t, bal.FullPackets)
		})
	}
}

func TestCreateReturnValidation(t *testing.T) {
	env := apptest.New(t)
	retailer := env.Retailer(t)
	mfg := env.Manufacturer(t)
	m := env.Material(t, apptest.MaterialSpec{})

	tests := []struct {
		name string
		in   returns.CreateInput
		code string
	}{
		{"no items", returns.CreateInput{ManufacturerID: mfg.ID}, apperror.CodeInvalidArgument},
		{"all zero", returns.CreateInput{
			ManufacturerID: mfg.ID,
			Items:          []returns.ItemInput{{MaterialID: m.ID, Qty: inventory.Q(0, 0)}},
		}, apperror.CodeInvalidArgument},
		{"negative", returns.CreateInput{
			ManufacturerID: mfg.ID,
			Items:          []returns.ItemInput{{MaterialID: m.ID, Qty: inventory.Q(0, -1)}},
		}, apperror.CodeInvalidArgument},
		{"duplicate material", returns.CreateInput{
			ManufacturerID: mfg.ID,
			Items: []returns.ItemInput{
				{MaterialID: m.ID, Qty: inventory.Q(1, 0)},
				{MaterialID: m.ID, Qty: inventory.Q(1, 0)},
			},
		}, apperror.CodeInvalidArgument},
		{"retailer as manufacturer", returns.CreateInput{
			ManufacturerID: retailer.ID,
			Items:          []returns.ItemInput{{MaterialID: m.ID, Qty: inventory.Q(1, 0)}},
		}, apperror.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Returns.Create(env.Ctx, retailer, tt.in)
			assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
		})
	}

	_, err := env.Returns.Create(env.Ctx, mfg, returns.CreateInput{
		ManufacturerID: mfg.ID,
		Items:          []returns.ItemInput{{MaterialID: m.ID, Qty: inventory.Q(1, 0)}},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden), "got %v", err)
}

func TestCreateReturnChecksReceipt(t *testing.T) {
	env := apptest.New(t)
	retailer := env.Retailer(t)
	mfg := env.Manufacturer(t)
	m := env.Material(t, apptest.MaterialSpec{})
	receipt := env.Stock(t, retailer, mfg, m, inventory.Q(1, 0))
	items := []returns.ItemInput{{MaterialID: m.ID, Qty: inventory.Q(1, 0)}}

	_, err := env.Returns.Create(env.Ctx, env.Retailer(t), returns.CreateInput{
		ManufacturerID: mfg.ID, GRNID: &receipt.ID, Items: items,
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden), "got %v", err)

	_, err = env.Returns.Create(env.Ctx, retailer, returns.CreateInput{
		ManufacturerID: env.Manufacturer(t).ID, GRNID: &receipt.ID, Items: items,
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument), "got %v", err)
}

func TestResolveValidation(t *testing.T) {
	env := apptest.New(t)
	retailer := env.Retailer(t)
	mfg := env.Manufacturer(t)
	m := env.Material(t, apptest.MaterialSpec{})
	ret, err := env.Returns.Create(env.Ctx, retailer, returns.CreateInput{
		ManufacturerID: mfg.ID,
		Items:          []returns.ItemInput{{MaterialID: m.ID, Qty: inventory.Q(1, 0)}},
	})
	require.NoError(t, err)

	_, err = env.Returns.Resolve(env.Ctx, env.Admin, ret.ID, returns.StatusUnderReview, "")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument), "got %v", err)

	_, err = env.Returns.Resolve(env.Ctx, mfg, ret.ID, returns.StatusRejected, "")
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden), "got %v", err)

	got, err := env.Returns.Get(env.Ctx, mfg, ret.ID)
	require.NoError(t, err)
	assert.Equal(t, returns.StatusRaised, got.Status)

	_, err = env.Returns.Get(env.Ctx, env.Manufacturer(t), ret.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden), "got %v", err)
}
