package grn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harpreet-2146/FM-demo-sub001/internal/app/apptest"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/grn"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
)

func TestGetReturnsReceiptWithItems(t *testing.T) {
	env := apptest.New(t)
	retailer, mfg := env.Retailer(t), env.Manufacturer(t)
	m := env.Material(t, apptest.MaterialSpec{})
	receipt := env.Stock(t, retailer, mfg, m, inventory.Q(3, 1))

	for _, viewer := range []struct {
		name string
		get  func() (*grn.GRN, error)
	}{
		{"retailer", func() (*grn.GRN, error) { return env.GRN.Get(env.Ctx, retailer, receipt.ID) }},
		{"manufacturer", func() (*grn.GRN, error) { return env.GRN.Get(env.Ctx, mfg, receipt.ID) }},
		{"admin", func() (*grn.GRN, error) { return env.GRN.Get(env.Ctx, env.Admin, receipt.ID) }},
	} {
		t.Run(viewer.name, func(t *testing.T) {
			got, err := viewer.get()
			require.NoError(t, err)
			assert.Equal(t, grn.StatusConfirmed, got.Status)
			require.Len(t, got.Items, 1)
			assert.Equal(t, m.ID, got.Items[0].MaterialID)
			assert.Equal(t, int64(3), got.Items[0].ReceivedPackets)
			assert.Equal(t, int64(1), got.Items[0].ReceivedUnits)
		})
	}

	_, err := env.GRN.Get(env.Ctx, env.Retailer(t), receipt.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden), "got %v", err)
}
