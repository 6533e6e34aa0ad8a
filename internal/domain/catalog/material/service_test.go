package material_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harpreet-2146/FM-demo-sub001/internal/app/apptest"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/money"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/catalog/material"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/notification"
)

func validInput() material.CreateInput {
	return material.CreateInput{
		Code:           " pcm-500 ",
		Name:           "Paracetamol 500",
		UnitsPerPacket: 10,
		MRPPerPacket:   money.MustParse("45.50"),
		HSNCode:        "300490",
		GSTRate:        money.MustParse("12"),
		Commission:     money.CommissionPolicy{Type: money.CommissionPercentage, Value: money.MustParse("5")},
	}
}

func TestValidHSN(t *testing.T) {
	for code, want := range map[string]bool{
		"3004":      true,
		"300490":    true,
		"30049011":  true,
		"300":       false,
		"30049":     false,
		"300490111": false,
		"30a4":      false,
		"":          false,
	} {
		assert.Equal(t, want, material.ValidHSN(code), code)
	}
}

func TestCreateMaterial(t *testing.T) {
	env := apptest.New(t)

	m, err := env.Materials.Create(env.Ctx, env.Admin, validInput())
	require.NoError(t, err)
	assert.Equal(t, "PCM-500", m.Code)
	assert.True(t, m.IsActive)
	assert.False(t, m.HasProduction)

	byCode, err := env.Materials.Resolve(env.Ctx, "pcm-500")
	require.NoError(t, err)
	assert.Equal(t, m.ID, byCode.ID)

	byID, err := env.Materials.Resolve(env.Ctx, m.ID.String())
	require.NoError(t, err)
	assert.Equal(t, m.Code, byID.Code)

	_, err = env.Materials.Create(env.Ctx, env.Admin, validInput())
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict), "got %v", err)

	_, err = env.Materials.Create(env.Ctx, env.Retailer(t), validInput())
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden), "got %v", err)
}

func TestCreateMaterialValidation(t *testing.T) {
	env := apptest.New(t)

	tests := []struct {
		name   string
		mutate func(*material.CreateInput)
	}{
		{"missing code", func(in *material.CreateInput) { in.Code = " " }},
		{"missing name", func(in *material.CreateInput) { in.Name = "" }},
		{"zero units per packet", func(in *material.CreateInput) { in.UnitsPerPacket = 0 }},
		{"zero MRP", func(in *material.CreateInput) { in.MRPPerPacket = money.Zero() }},
		{"bad HSN", func(in *material.CreateInput) { in.HSNCode = "30049" }},
		{"GST above 100", func(in *material.CreateInput) { in.GSTRate = money.MustParse("101") }},
		{"GST with three places", func(in *material.CreateInput) { in.GSTRate = money.MustParse("12.345") }},
		{"MRP with three places", func(in *material.CreateInput) { in.MRPPerPacket = money.MustParse("45.505") }},
		{"negative flat commission", func(in *material.CreateInput) {
			in.Commission = money.CommissionPolicy{Type: money.CommissionFlatPerUnit, Value: money.MustParse("-1")}
		}},
		{"unknown commission type", func(in *material.CreateInput) {
			in.Commission = money.CommissionPolicy{Type: "TIERED", Value: money.MustParse("1")}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := env.Materials.Create(env.Ctx, env.Admin, in)
			assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument), "got %v", err)
		})
	}
}

func TestUpdateLocksTaxAfterProduction(t *testing.T) {
	env := apptest.New(t)
	m, err := env.Materials.Create(env.Ctx, env.Admin, validInput())
	require.NoError(t, err)

	hsn := "3004"
	m, err = env.Materials.Update(env.Ctx, env.Admin, m.ID, material.UpdateInput{HSNCode: &hsn})
	require.NoError(t, err)
	assert.Equal(t, "3004", m.HSNCode)

	upp := int64(20)
	_, err = env.Materials.Update(env.Ctx, env.Admin, m.ID, material.UpdateInput{UnitsPerPacket: &upp})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument), "got %v", err)

	env.Produce(t, env.Manufacturer(t), m, inventory.Q(1, 0))

	other := "300490"
	_, err = env.Materials.Update(env.Ctx, env.Admin, m.ID, material.UpdateInput{HSNCode: &other})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState), "got %v", err)

	rate := money.MustParse("18")
	_, err = env.Materials.Update(env.Ctx, env.Admin, m.ID, material.UpdateInput{GSTRate: &rate})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState), "got %v", err)

	same := money.MustParse("12.00")
	name := "Paracetamol 500mg"
	mrp := money.MustParse("50.00")
	m, err = env.Materials.Update(env.Ctx, env.Admin, m.ID, material.UpdateInput{
		Name:         &name,
		MRPPerPacket: &mrp,
		GSTRate:      &same,
	})
	require.NoError(t, err)
	assert.Equal(t, name, m.Name)
	assert.True(t, mrp.Equal(m.MRPPerPacket))
}

func TestRecordProduction(t *testing.T) {
	env := apptest.New(t)
	mfg := env.Manufacturer(t)
	m, err := env.Materials.Create(env.Ctx, env.Admin, validInput())
	require.NoError(t, err)

	res, err := env.Materials.RecordProduction(env.Ctx, mfg, material.ProductionInput{
		MaterialID: m.ID,
		Qty:        inventory.Q(12, 4),
	})
	require.NoError(t, err)
	assert.Regexp(t, `^BATCH-\d{8}-000001$`, res.BatchNumber)
	assert.True(t, res.Material.HasProduction)
	assert.Equal(t, int64(12), res.Stock.FullPackets)
	assert.Equal(t, int64(4), res.Stock.LooseUnits)

	admin, err := env.Materials.RecordProduction(env.Ctx, env.Admin, material.ProductionInput{
		MaterialID:     m.ID,
		ManufacturerID: mfg.ID,
		Qty:            inventory.Q(3, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), admin.Stock.FullPackets)

	inbox, err := env.Inbox.List(env.Ctx, env.Admin, true, 10)
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.Equal(t, notification.TypeProductionRecorded, inbox[0].Type)
}

func TestRecordProductionValidation(t *testing.T) {
	env := apptest.New(t)
	mfg := env.Manufacturer(t)
	m := env.Material(t, apptest.MaterialSpec{})

	_, err := env.Materials.RecordProduction(env.Ctx, mfg, material.ProductionInput{MaterialID: m.ID})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument), "got %v", err)

	_, err = env.Materials.RecordProduction(env.Ctx, env.Admin, material.ProductionInput{
		MaterialID: m.ID, Qty: inventory.Q(1, 0),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument), "got %v", err)

	_, err = env.Materials.RecordProduction(env.Ctx, env.Retailer(t), material.ProductionInput{
		MaterialID: m.ID, Qty: inventory.Q(1, 0),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden), "got %v", err)

	_, err = env.Materials.SetActive(env.Ctx, env.Admin, m.ID, false)
	require.NoError(t, err)
	_, err = env.Materials.RecordProduction(env.Ctx, mfg, material.ProductionInput{
		MaterialID: m.ID, Qty: inventory.Q(1, 0),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument), "got %v", err)
}

func TestListSearchesCodeAndName(t *testing.T) {
	env := apptest.New(t)
	in := validInput()
	_, err := env.Materials.Create(env.Ctx, env.Admin, in)
	require.NoError(t, err)
	in.Code, in.Name = "IBU-200", "Ibuprofen 200"
	ibu, err := env.Materials.Create(env.Ctx, env.Admin, in)
	require.NoError(t, err)

	all, err := env.Materials.List(env.Ctx, material.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "IBU-200", all[0].Code)

	found, err := env.Materials.List(env.Ctx, material.ListFilter{Search: "ibupro"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, ibu.ID, found[0].ID)

	_, err = env.Materials.SetActive(env.Ctx, env.Admin, ibu.ID, false)
	require.NoError(t, err)
	active, err := env.Materials.List(env.Ctx, material.ListFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
