// Package inventory implements the manufacturer and retailer stock ledgers.
//
// Every mutation locks the ledger row, applies a delta, asserts the row
// invariants and appends one InventoryTransaction per logical movement. For any
// ledger key the sum of transaction deltas equals the current balance.
package inventory

import (
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
)

// LocationType identifies which ledger a row belongs to.
type LocationType string

const (
	LocationManufacturer LocationType = "MANUFACTURER"
	LocationRetailer     LocationType = "RETAILER"
)

// TransactionType classifies a ledger movement.
type TransactionType string

const (
	TxProduction      TransactionType = "PRODUCTION"
	TxDispatchBlock   TransactionType = "DISPATCH_BLOCK"
	TxDispatchExecute TransactionType = "DISPATCH_EXECUTE"
	TxGRNReceive      TransactionType = "GRN_RECEIVE"
	TxPacketOpen      TransactionType = "PACKET_OPEN"
	TxSale            TransactionType = "SALE"
	TxReturnRestock   TransactionType = "RETURN_RESTOCK"
)

// ReferenceType names the document that caused a movement.
type ReferenceType string

const (
	RefBatch    ReferenceType = "BATCH"
	RefSRN      ReferenceType = "SRN"
	RefDispatch ReferenceType = "DISPATCH"
	RefGRN      ReferenceType = "GRN"
	RefSale     ReferenceType = "SALE"
	RefReturn   ReferenceType = "RETURN"
)

// Reference points at the document behind a movement.
type Reference struct {
	Type   ReferenceType `json:"type"`
	ID     id.ID         `json:"id"`
	Number string        `json:"number,omitempty"`
}

// Quantity is an amount of stock expressed as sealed packets plus loose units.
type Quantity struct {
	Packets int64 `json:"packets"`
	Units   int64 `json:"looseUnits"`
}

// Q is shorthand for Quantity{packets, units}.
func Q(packets, units int64) Quantity {
	return Quantity{Packets: packets, Units: units}
}

// IsZero reports whether both components are zero.
func (q Quantity) IsZero() bool {
	return q.Packets == 0 && q.Units == 0
}

// Positive reports whether q is non-negative with at least one positive component.
func (q Quantity) Positive() bool {
	return q.Packets >= 0 && q.Units >= 0 && !q.IsZero()
}

// Covers reports whether q is at least other in both components.
func (q Quantity) Covers(other Quantity) bool {
	return q.Packets >= other.Packets && q.Units >= other.Units
}

// ValidateNonNegative rejects negative components.
func (q Quantity) ValidateNonNegative(field string) error {
	if q.Packets < 0 || q.Units < 0 {
		return apperror.NewInvalidArgument(field+" must not be negative").
			WithDetail("packets", q.Packets).
			WithDetail("loose_units", q.Units)
	}
	return nil
}

// ValidatePositive rejects negative components and an all-zero quantity.
func (q Quantity) ValidatePositive(field string) error {
	if err := q.ValidateNonNegative(field); err != nil {
		return err
	}
	if q.IsZero() {
		return apperror.NewInvalidArgument(field + " must request at least one packet or unit")
	}
	return nil
}

// ManufacturerStock is the balance of one material at one manufacturer.
// Invariant: BlockedPackets <= FullPackets and BlockedLooseUnits <= LooseUnits.
type ManufacturerStock struct {
	MaterialID        id.ID     `db:"material_id" json:"materialId"`
	ManufacturerID    id.ID     `db:"manufacturer_id" json:"manufacturerId"`
	FullPackets       int64     `db:"full_packets" json:"fullPackets"`
	BlockedPackets    int64     `db:"blocked_packets" json:"blockedPackets"`
	LooseUnits        int64     `db:"loose_units" json:"looseUnits"`
	BlockedLooseUnits int64     `db:"blocked_loose_units" json:"blockedLooseUnits"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}

// Available returns full minus blocked stock.
func (s ManufacturerStock) Available() Quantity {
	return Q(s.FullPackets-s.BlockedPackets, s.LooseUnits-s.BlockedLooseUnits)
}

// Blocked returns the reserved quantity.
func (s ManufacturerStock) Blocked() Quantity {
	return Q(s.BlockedPackets, s.BlockedLooseUnits)
}

func (s ManufacturerStock) check() error {
	switch {
	case s.FullPackets < 0 || s.LooseUnits < 0 || s.BlockedPackets < 0 || s.BlockedLooseUnits < 0:
		return apperror.NewInvariantViolation("manufacturer stock %s/%s went negative: %+v",
			s.MaterialID, s.ManufacturerID, s)
	case s.BlockedPackets > s.FullPackets:
		return apperror.NewInvariantViolation("manufacturer stock %s/%s blocked packets %d > full %d",
			s.MaterialID, s.ManufacturerID, s.BlockedPackets, s.FullPackets)
	case s.BlockedLooseUnits > s.LooseUnits:
		return apperror.NewInvariantViolation("manufacturer stock %s/%s blocked units %d > loose %d",
			s.MaterialID, s.ManufacturerID, s.BlockedLooseUnits, s.LooseUnits)
	}
	return nil
}

// RetailerStock is the balance of one material at one retailer.
// Invariant: 0 <= LooseUnits < unitsPerPacket.
type RetailerStock struct {
	MaterialID  id.ID     `db:"material_id" json:"materialId"`
	RetailerID  id.ID     `db:"retailer_id" json:"retailerId"`
	FullPackets int64     `db:"full_packets" json:"fullPackets"`
	LooseUnits  int64     `db:"loose_units" json:"looseUnits"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// TotalUnits converts the balance to individual units.
func (s RetailerStock) TotalUnits(unitsPerPacket int64) int64 {
	return s.FullPackets*unitsPerPacket + s.LooseUnits
}

func (s RetailerStock) check(unitsPerPacket int64) error {
	if s.FullPackets < 0 || s.LooseUnits < 0 || s.LooseUnits >= unitsPerPacket {
		return apperror.NewInvariantViolation(
			"retailer stock %s/%s out of range: packets=%d loose=%d units_per_packet=%d",
			s.MaterialID, s.RetailerID, s.FullPackets, s.LooseUnits, unitsPerPacket)
	}
	return nil
}

// Transaction is one append-only ledger row.
type Transaction struct {
	ID           id.ID           `db:"id" json:"id"`
	MaterialID   id.ID           `db:"material_id" json:"materialId"`
	ActorID      id.ID           `db:"actor_id" json:"actorId"`
	Type         TransactionType `db:"transaction_type" json:"type"`
	LocationType LocationType    `db:"location_type" json:"locationType"`
	LocationID   id.ID           `db:"location_id" json:"locationId"`

	PacketsDelta        int64 `db:"packets_delta" json:"packetsDelta"`
	UnitsDelta          int64 `db:"units_delta" json:"unitsDelta"`
	BlockedPacketsDelta int64 `db:"blocked_packets_delta" json:"blockedPacketsDelta"`
	BlockedUnitsDelta   int64 `db:"blocked_units_delta" json:"blockedUnitsDelta"`

	RefType   ReferenceType `db:"reference_type" json:"referenceType"`
	RefID     id.ID         `db:"reference_id" json:"referenceId"`
	RefNumber string        `db:"reference_number" json:"referenceNumber,omitempty"`

	PacketsAfter        int64 `db:"packets_after" json:"packetsAfter"`
	UnitsAfter          int64 `db:"units_after" json:"unitsAfter"`
	BlockedPacketsAfter int64 `db:"blocked_packets_after" json:"blockedPacketsAfter"`
	BlockedUnitsAfter   int64 `db:"blocked_units_after" json:"blockedUnitsAfter"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Movement is the input of a ledger mutation.
type Movement struct {
	MaterialID id.ID
	// OwnerID is the manufacturer or retailer that owns the ledger row.
	OwnerID id.ID
	Qty     Quantity
	Ref     Reference
	ActorID id.ID
}

func (m Movement) validate() error {
	if id.IsNil(m.MaterialID) || id.IsNil(m.OwnerID) {
		return apperror.NewInvalidArgument("material and owner are required")
	}
	return m.Qty.ValidatePositive("quantity")
}
