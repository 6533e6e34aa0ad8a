// Package material provides the material catalog and production intake.
//
// UnitsPerPacket never changes after creation. HSN code and GST rate are frozen
// by the first production event.
package material

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/entity"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/money"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
)

var hsnPattern = regexp.MustCompile(`^[0-9]{4}([0-9]{2}){0,2}$`)

// ValidHSN reports whether code is a 4, 6 or 8 digit HSN code.
func ValidHSN(code string) bool {
	return hsnPattern.MatchString(code)
}

// Material is a packaged product.
type Material struct {
	entity.BaseEntity

	Code            string               `db:"code" json:"code"`
	Name            string               `db:"name" json:"name"`
	UnitsPerPacket  int64                `db:"units_per_packet" json:"unitsPerPacket"`
	MRPPerPacket    money.Money          `db:"mrp_per_packet" json:"mrpPerPacket"`
	HSNCode         string               `db:"hsn_code" json:"hsnCode"`
	GSTRate         money.Money          `db:"gst_rate" json:"gstRate"`
	CommissionType  money.CommissionType `db:"commission_type" json:"commissionType"`
	CommissionValue money.Money          `db:"commission_value" json:"commissionValue"`
	HasProduction   bool                 `db:"has_production" json:"hasProduction"`
	IsActive        bool                 `db:"is_active" json:"isActive"`
}

// Commission returns the material's commission policy.
func (m *Material) Commission() money.CommissionPolicy {
	return money.CommissionPolicy{Type: m.CommissionType, Value: m.CommissionValue}
}

// Validate checks field ranges.
func (m *Material) Validate() error {
	if m.Code == "" {
		return apperror.NewInvalidArgument("code is required").WithDetail("field", "code")
	}
	if m.Name == "" {
		return apperror.NewInvalidArgument("name is required").WithDetail("field", "name")
	}
	if m.UnitsPerPacket <= 0 {
		return apperror.NewInvalidArgument("units per packet must be positive").
			WithDetail("field", "unitsPerPacket")
	}
	if !m.MRPPerPacket.IsPositive() {
		return apperror.NewInvalidArgument("MRP per packet must be positive").
			WithDetail("field", "mrpPerPacket")
	}
	if !ValidHSN(m.HSNCode) {
		return apperror.NewInvalidArgument("HSN code must have 4, 6 or 8 digits").
			WithDetail("field", "hsnCode")
	}
	if err := money.ValidateRate(m.GSTRate); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		v    money.Money
	}{
		{"mrpPerPacket", m.MRPPerPacket},
		{"gstRate", m.GSTRate},
		{"commissionValue", m.CommissionValue},
	} {
		if err := money.ValidateScale(f.name, f.v, 2); err != nil {
			return err
		}
	}
	return m.Commission().Validate()
}

// NormalizeCode upper-cases and trims a material code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateInput is the admin input for a new material.
type CreateInput struct {
	Code           string
	Name           string
	UnitsPerPacket int64
	MRPPerPacket   money.Money
	HSNCode        string
	GSTRate        money.Money
	Commission     money.CommissionPolicy
}

// UpdateInput carries optional changes. Nil fields are left untouched.
type UpdateInput struct {
	Name           *string
	UnitsPerPacket *int64
	MRPPerPacket   *money.Money
	HSNCode        *string
	GSTRate        *money.Money
	Commission     *money.CommissionPolicy
}

// ListFilter narrows catalog listings.
type ListFilter struct {
	Search     string
	ActiveOnly bool
	domain.Page
}

// ProductionInput records a production run.
type ProductionInput struct {
	MaterialID id.ID
	// ManufacturerID is required for admins; manufacturers always record their own production.
	ManufacturerID id.ID
	Qty            inventory.Quantity
}

// ProductionResult is the outcome of RecordProduction.
type ProductionResult struct {
	BatchNumber string                      `json:"batchNumber"`
	Material    *Material                   `json:"material"`
	Stock       inventory.ManufacturerStock `json:"stock"`
	RecordedAt  time.Time                   `json:"recordedAt"`
}

// MarshalJSON renders the price, rate and commission value with two fixed
// decimals.
func (m Material) MarshalJSON() ([]byte, error) {
	type plain Material
	return json.Marshal(struct {
		plain
		MRPPerPacket    string `json:"mrpPerPacket"`
		GSTRate         string `json:"gstRate"`
		CommissionValue string `json:"commissionValue"`
	}{
		plain:           plain(m),
		MRPPerPacket:    money.Format(m.MRPPerPacket),
		GSTRate:         money.Format(m.GSTRate),
		CommissionValue: money.Format(m.CommissionValue),
	})
}
