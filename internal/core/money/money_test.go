package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
)

func TestUnitPrice(t *testing.T) {
	e := Default()

	tests := []struct {
		name  string
		mrp   string
		units int64
		want  string
	}{
		{"even split", "100.00", 10, "10.00"},
		{"repeating third", "100.00", 3, "33.33"},
		{"half rounds up", "0.05", 2, "0.03"},
		{"single unit packet", "49.99", 1, "49.99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.UnitPrice(MustParse(tt.mrp), tt.units)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.String(got))
		})
	}
}

func TestUnitPriceRejectsNonPositivePacketSize(t *testing.T) {
	_, err := Default().UnitPrice(MustParse("10"), 0)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument))
}

func TestUnitPriceRoundTrip(t *testing.T) {
	e := Default()
	halfCent := MustParse("0.005")

	for _, mrp := range []string{"100.00", "99.99", "12.34", "0.10", "250.50"} {
		for _, upp := range []int64{1, 2, 3, 6, 7, 10, 12, 24} {
			price, err := e.UnitPrice(MustParse(mrp), upp)
			require.NoError(t, err)

			back := price.Mul(decimal.NewFromInt(upp))
			diff := back.Sub(MustParse(mrp)).Abs()
			// Per-unit rounding error is at most half a cent, so the packet error is bounded by upp half-cents.
			assert.True(t, diff.LessThanOrEqual(halfCent.Mul(decimal.NewFromInt(upp))),
				"mrp=%s upp=%d back=%s", mrp, upp, back)
		}
	}

	price, err := e.UnitPrice(MustParse("100.00"), 3)
	require.NoError(t, err)
	assert.True(t, e.MulInt(price, 3).Sub(MustParse("100.00")).Abs().LessThanOrEqual(MustParse("0.01")))
}

func TestDivByZero(t *testing.T) {
	_, err := Default().Div(MustParse("1"), Zero())
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument))
}

func TestLineTotal(t *testing.T) {
	e := Default()

	total, err := e.LineTotal(MustParse("10.00"), 12)
	require.NoError(t, err)
	assert.Equal(t, "120.00", e.String(total))

	total, err = e.LineTotal(MustParse("33.33"), 0)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	_, err = e.LineTotal(MustParse("10.00"), -1)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument))
}

func TestGSTIntrastateAndInterstate(t *testing.T) {
	e := Default()
	subtotal := MustParse("1000.00")
	rate := MustParse("18")

	intra, err := e.GST(subtotal, rate, false)
	require.NoError(t, err)
	assert.Equal(t, "90.00", e.String(intra.CGST))
	assert.Equal(t, "90.00", e.String(intra.SGST))
	assert.True(t, intra.IGST.IsZero())
	assert.Equal(t, "1180.00", e.String(intra.Total))

	inter, err := e.GST(subtotal, rate, true)
	require.NoError(t, err)
	assert.Equal(t, "180.00", e.String(inter.IGST))
	assert.True(t, inter.CGST.IsZero())
	assert.True(t, inter.SGST.IsZero())
	assert.Equal(t, "1180.00", e.String(inter.Total))
}

func TestGSTRoundsEachComponent(t *testing.T) {
	e := Default()

	tb, err := e.GST(MustParse("10.01"), MustParse("5"), false)
	require.NoError(t, err)
	// 10.01 * 2.5 / 100 = 0.25025
	assert.Equal(t, "0.25", e.String(tb.CGST))
	assert.Equal(t, "0.25", e.String(tb.SGST))
	assert.Equal(t, "10.51", e.String(tb.Total))
}

func TestGSTRejectsOutOfRangeRate(t *testing.T) {
	_, err := Default().GST(MustParse("10"), MustParse("101"), false)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument))
}

func TestCommission(t *testing.T) {
	e := Default()
	unitPrice := MustParse("10.00")

	pct, err := e.Commission(CommissionPolicy{Type: CommissionPercentage, Value: MustParse("5")}, unitPrice, 10)
	require.NoError(t, err)
	assert.Equal(t, "5.00", e.String(pct))

	flat, err := e.Commission(CommissionPolicy{Type: CommissionFlatPerUnit, Value: MustParse("2.00")}, unitPrice, 10)
	require.NoError(t, err)
	assert.Equal(t, "20.00", e.String(flat))

	_, err = e.Commission(CommissionPolicy{Type: "BONUS", Value: MustParse("1")}, unitPrice, 1)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument))
}

func TestBlendedRate(t *testing.T) {
	e := Default()

	rate := e.BlendedRate([]RatedAmount{
		{Amount: MustParse("100.00"), Rate: MustParse("5")},
		{Amount: MustParse("300.00"), Rate: MustParse("18")},
	})
	// (100*5 + 300*18) / 400 = 14.75
	assert.Equal(t, "14.75", e.String(rate))

	assert.True(t, e.BlendedRate(nil).IsZero())
}

func TestComparisonsUseRoundedValues(t *testing.T) {
	e := Default()

	assert.True(t, e.Equal(MustParse("1.004"), MustParse("1.00")))
	assert.Equal(t, 1, e.Cmp(MustParse("1.005"), MustParse("1.00")))
}

func TestHalfEvenPolicy(t *testing.T) {
	e := NewEngine(Policy{Places: 2, Mode: RoundHalfEven})

	assert.Equal(t, "0.12", e.String(MustParse("0.125")))
	assert.Equal(t, "0.13", Default().String(MustParse("0.125")))
}

func TestFormatKeepsTwoPlaces(t *testing.T) {
	assert.Equal(t, "1180.00", Format(MustParse("1180")))
	assert.Equal(t, "10.50", Format(MustParse("10.5")))
	assert.Equal(t, "0.00", Format(Zero()))
	assert.Equal(t, "2.35", Format(MustParse("2.345")))
}

func TestValidateScale(t *testing.T) {
	require.NoError(t, ValidateScale("gstRate", MustParse("12.50"), 2))
	require.NoError(t, ValidateScale("gstRate", MustParse("12.500"), 2))

	err := ValidateScale("gstRate", MustParse("12.345"), 2)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument), "got %v", err)
}
