package money

import (
	"github.com/shopspring/decimal"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
)

// CommissionType selects how a retailer's commission is accrued per sale.
type CommissionType string

const (
	CommissionPercentage  CommissionType = "PERCENTAGE"
	CommissionFlatPerUnit CommissionType = "FLAT_PER_UNIT"
)

// CommissionPolicy is the per-material commission rule.
type CommissionPolicy struct {
	Type  CommissionType `json:"type"`
	Value Money          `json:"value"`
}

// Validate checks the policy type and value range.
func (p CommissionPolicy) Validate() error {
	switch p.Type {
	case CommissionPercentage:
		if err := ValidateRate(p.Value); err != nil {
			return apperror.NewInvalidArgument("commission percentage must be between 0 and 100").
				WithDetail("value", p.Value.String())
		}
	case CommissionFlatPerUnit:
		if p.Value.IsNegative() {
			return apperror.NewInvalidArgument("flat commission must not be negative").
				WithDetail("value", p.Value.String())
		}
	default:
		return apperror.NewInvalidArgument("unknown commission type").
			WithDetail("type", string(p.Type))
	}
	return nil
}

// Commission computes the commission for units sold at unitPrice.
//
//	PERCENTAGE:    round(unitPrice * units * value / 100)
//	FLAT_PER_UNIT: round(value * units)
func (e Engine) Commission(policy CommissionPolicy, unitPrice Money, units int64) (Money, error) {
	if units < 0 {
		return decimal.Zero, apperror.NewInvalidArgument("units must not be negative").
			WithDetail("units", units)
	}
	if err := policy.Validate(); err != nil {
		return decimal.Zero, err
	}

	n := decimal.NewFromInt(units)
	if policy.Type == CommissionPercentage {
		return e.Percent(unitPrice.Mul(n), policy.Value), nil
	}
	return e.Mul(policy.Value, n), nil
}
