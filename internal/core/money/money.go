// Package money implements fixed-precision monetary arithmetic and the pricing,
// tax and commission formulas used across the supply chain.
//
// Every operation rounds its result according to the Engine's Policy, so callers
// never see more fractional digits than the policy allows. There is no global
// rounding state: each Engine carries its own Policy value.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// RoundingMode selects how a value halfway between two representable amounts is resolved.
type RoundingMode int

const (
	// RoundHalfUp rounds halves away from zero (1.005 -> 1.01, -1.005 -> -1.01).
	RoundHalfUp RoundingMode = iota
	// RoundHalfEven rounds halves to the nearest even digit.
	RoundHalfEven
)

// Policy is the rounding rule applied at the boundary of every operation.
type Policy struct {
	Places int32
	Mode   RoundingMode
}

// DefaultPolicy is two decimal places, half-up.
func DefaultPolicy() Policy {
	return Policy{Places: 2, Mode: RoundHalfUp}
}

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// Engine performs rounded arithmetic under a fixed Policy.
type Engine struct {
	policy Policy
}

// NewEngine creates an engine bound to policy.
func NewEngine(policy Policy) Engine {
	return Engine{policy: policy}
}

// Default returns an engine with DefaultPolicy.
func Default() Engine {
	return NewEngine(DefaultPolicy())
}

// Policy returns the engine's rounding policy.
func (e Engine) Policy() Policy {
	return e.policy
}

// Round applies the policy to v.
func (e Engine) Round(v Money) Money {
	if e.policy.Mode == RoundHalfEven {
		return v.RoundBank(e.policy.Places)
	}
	return v.Round(e.policy.Places)
}

// Add sums values, rounding after each addition.
func (e Engine) Add(values ...Money) Money {
	sum := decimal.Zero
	for _, v := range values {
		sum = e.Round(sum.Add(v))
	}
	return sum
}

// Sub returns round(a - b).
func (e Engine) Sub(a, b Money) Money {
	return e.Round(a.Sub(b))
}

// Mul returns round(a * b).
func (e Engine) Mul(a, b Money) Money {
	return e.Round(a.Mul(b))
}

// MulInt returns round(a * n).
func (e Engine) MulInt(a Money, n int64) Money {
	return e.Round(a.Mul(decimal.NewFromInt(n)))
}

// Div returns round(a / b). A zero divisor is an InvalidArgument error.
func (e Engine) Div(a, b Money) (Money, error) {
	if b.IsZero() {
		return decimal.Zero, apperror.NewInvalidArgument("division by zero").
			WithDetail("dividend", a.String())
	}
	if e.policy.Mode == RoundHalfEven {
		return a.Div(b).RoundBank(e.policy.Places), nil
	}
	// DivRound rounds half away from zero at exactly the requested precision.
	return a.DivRound(b, e.policy.Places), nil
}

// Percent returns round(base * pct / 100).
func (e Engine) Percent(base, pct Money) Money {
	return e.Round(base.Mul(pct).Div(hundred))
}

// Cmp compares the rounded representations of a and b.
func (e Engine) Cmp(a, b Money) int {
	return e.Round(a).Cmp(e.Round(b))
}

// Equal reports whether a and b are equal after rounding.
func (e Engine) Equal(a, b Money) bool {
	return e.Cmp(a, b) == 0
}

// String renders v with exactly Places fractional digits.
func (e Engine) String(v Money) string {
	return e.Round(v).StringFixed(e.policy.Places)
}

// UnitPrice is the price of one loose unit: round(mrpPerPacket / unitsPerPacket).
func (e Engine) UnitPrice(mrpPerPacket Money, unitsPerPacket int64) (Money, error) {
	if unitsPerPacket <= 0 {
		return decimal.Zero, apperror.NewInvalidArgument("units per packet must be positive").
			WithDetail("units_per_packet", unitsPerPacket)
	}
	return e.Div(mrpPerPacket, decimal.NewFromInt(unitsPerPacket))
}

// LineTotal returns round(unitPrice * quantity). Negative quantities are rejected.
func (e Engine) LineTotal(unitPrice Money, quantity int64) (Money, error) {
	if quantity < 0 {
		return decimal.Zero, apperror.NewInvalidArgument("quantity must not be negative").
			WithDetail("quantity", quantity)
	}
	return e.MulInt(unitPrice, quantity), nil
}

// TaxBreakdown is the GST split of a subtotal. Either CGST+SGST or IGST is non-zero, never both.
type TaxBreakdown struct {
	Subtotal   Money
	Rate       Money
	Interstate bool
	CGST       Money
	SGST       Money
	IGST       Money
	Total      Money
}

// GST splits tax on subtotal at rate percent. Intrastate supplies carry CGST and SGST
// of rate/2 each; interstate supplies carry IGST at the full rate.
func (e Engine) GST(subtotal, rate Money, interstate bool) (TaxBreakdown, error) {
	if subtotal.IsNegative() {
		return TaxBreakdown{}, apperror.NewInvalidArgument("subtotal must not be negative")
	}
	if err := ValidateRate(rate); err != nil {
		return TaxBreakdown{}, err
	}

	tb := TaxBreakdown{
		Subtotal:   e.Round(subtotal),
		Rate:       rate,
		Interstate: interstate,
		CGST:       decimal.Zero,
		SGST:       decimal.Zero,
		IGST:       decimal.Zero,
	}
	if interstate {
		tb.IGST = e.Percent(tb.Subtotal, rate)
		tb.Total = e.Add(tb.Subtotal, tb.IGST)
		return tb, nil
	}

	half := rate.Div(two)
	tb.CGST = e.Percent(tb.Subtotal, half)
	tb.SGST = e.Percent(tb.Subtotal, half)
	tb.Total = e.Add(tb.Subtotal, tb.CGST, tb.SGST)
	return tb, nil
}

// RatedAmount is a line amount together with the GST rate it is taxed at.
type RatedAmount struct {
	Amount Money
	Rate   Money
}

// BlendedRate returns the amount-weighted average rate of lines, rounded by policy.
// Lines with a zero total amount yield a zero rate.
func (e Engine) BlendedRate(lines []RatedAmount) Money {
	total := decimal.Zero
	weighted := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
		weighted = weighted.Add(l.Amount.Mul(l.Rate))
	}
	if total.IsZero() {
		return decimal.Zero
	}
	return e.Round(weighted.Div(total))
}

// ValidateRate checks that a percentage rate lies in [0, 100].
func ValidateRate(rate Money) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return apperror.NewInvalidArgument("rate must be between 0 and 100").
			WithDetail("rate", rate.String())
	}
	return nil
}

// Format renders v the way amounts cross the API: rounded half-up to two
// places and always carrying both fractional digits.
func Format(v Money) string {
	return Default().String(v)
}

// ValidateScale rejects v when it has more than places fractional digits.
// Stored amounts and rates are NUMERIC with two places.
func ValidateScale(field string, v Money, places int32) error {
	if !v.Equal(v.Truncate(places)) {
		return apperror.NewInvalidArgument(fmt.Sprintf("%s allows at most %d decimal places", field, places)).
			WithDetail("field", field).
			WithDetail("value", v.String())
	}
	return nil
}

// Parse reads a decimal string. Malformed input is an InvalidArgument error.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperror.NewInvalidArgument(fmt.Sprintf("invalid amount %q", s)).WithCause(err)
	}
	return d, nil
}

// MustParse parses s and panics on error. Use only for constants and tests.
func MustParse(s string) Money {
	return decimal.RequireFromString(s)
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}
