// Package sale records retail unit sales and the commission each one accrues.
package sale

import (
	"encoding/json"
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/entity"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/fsm"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/money"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain"
)

// Sale is one retail consumption event.
type Sale struct {
	entity.Document

	MaterialID    id.ID       `db:"material_id" json:"materialId"`
	RetailerID    id.ID       `db:"retailer_id" json:"retailerId"`
	Units         int64       `db:"units" json:"units"`
	UnitPrice     money.Money `db:"unit_price" json:"unitPrice"`
	Total         money.Money `db:"total" json:"total"`
	PacketsOpened int64       `db:"packets_opened" json:"packetsOpened"`
}

// CommissionStatus of a commission accrual.
type CommissionStatus string

const (
	CommissionPending CommissionStatus = "PENDING"
	CommissionPaid    CommissionStatus = "PAID"
)

// CommissionEvent drives commission transitions.
type CommissionEvent string

// EventPay settles a commission.
const EventPay CommissionEvent = "pay"

// CommissionTransitions is the commission status machine.
var CommissionTransitions = fsm.NewTable("commission",
	fsm.Edge[CommissionStatus, CommissionEvent]{From: CommissionPending, On: EventPay, To: CommissionPaid},
)

// Commission is accrued 1:1 with a Sale.
type Commission struct {
	entity.BaseEntity

	SaleID     id.ID                `db:"sale_id" json:"saleId"`
	SaleNumber string               `db:"sale_number" json:"saleNumber"`
	RetailerID id.ID                `db:"retailer_id" json:"retailerId"`
	MaterialID id.ID                `db:"material_id" json:"materialId"`
	Type       money.CommissionType `db:"commission_type" json:"commissionType"`
	Value      money.Money          `db:"commission_value" json:"commissionValue"`
	Units      int64                `db:"units" json:"units"`
	UnitPrice  money.Money          `db:"unit_price" json:"unitPrice"`
	Amount     money.Money          `db:"amount" json:"amount"`
	Status     CommissionStatus     `db:"status" json:"status"`
	PaidAt     *time.Time           `db:"paid_at" json:"paidAt,omitempty"`
	PaidBy     *id.ID               `db:"paid_by" json:"paidBy,omitempty"`
}

// Summary aggregates one retailer's commissions.
type Summary struct {
	RetailerID    id.ID       `db:"retailer_id" json:"retailerId"`
	PendingCount  int64       `db:"pending_count" json:"pendingCount"`
	PendingAmount money.Money `db:"pending_amount" json:"pendingAmount"`
	PaidCount     int64       `db:"paid_count" json:"paidCount"`
	PaidAmount    money.Money `db:"paid_amount" json:"paidAmount"`
}

// RecordInput is a retailer's sale.
type RecordInput struct {
	MaterialID id.ID
	Units      int64
}

// Recorded is the outcome of RecordSale.
type Recorded struct {
	Sale       *Sale       `json:"sale"`
	Commission *Commission `json:"commission"`
}

// SaleFilter narrows sale listings.
type SaleFilter struct {
	RetailerID *id.ID
	MaterialID *id.ID
	domain.Page
}

// CommissionFilter narrows commission listings.
type CommissionFilter struct {
	RetailerID *id.ID
	Status     CommissionStatus
	domain.Page
}

// MarshalJSON renders amounts with two fixed decimals.
func (s Sale) MarshalJSON() ([]byte, error) {
	type plain Sale
	return json.Marshal(struct {
		plain
		UnitPrice string `json:"unitPrice"`
		Total     string `json:"total"`
	}{plain: plain(s), UnitPrice: money.Format(s.UnitPrice), Total: money.Format(s.Total)})
}

func (c Commission) MarshalJSON() ([]byte, error) {
	type plain Commission
	return json.Marshal(struct {
		plain
		Value     string `json:"commissionValue"`
		UnitPrice string `json:"unitPrice"`
		Amount    string `json:"amount"`
	}{
		plain:     plain(c),
		Value:     money.Format(c.Value),
		UnitPrice: money.Format(c.UnitPrice),
		Amount:    money.Format(c.Amount),
	})
}

func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	return json.Marshal(struct {
		plain
		PendingAmount string `json:"pendingAmount"`
		PaidAmount    string `json:"paidAmount"`
	}{plain: plain(s), PendingAmount: money.Format(s.PendingAmount), PaidAmount: money.Format(s.PaidAmount)})
}
