// Package entity holds the fields shared by every persisted aggregate.
package entity

import (
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
)

// BaseEntity contains the identity and timestamps common to all aggregates.
type BaseEntity struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseEntity creates a new BaseEntity with generated ID stamped at now.
func NewBaseEntity(now time.Time) BaseEntity {
	now = now.UTC()
	return BaseEntity{
		ID:        id.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch records a modification.
func (b *BaseEntity) Touch(now time.Time) {
	b.UpdatedAt = now.UTC()
}

// Document is the base for numbered business documents (SRN, dispatch order, GRN, ...).
type Document struct {
	BaseEntity

	// Number is the human-readable PREFIX-YYYYMMDD-NNNNNN identifier
	Number string `db:"number" json:"number"`
}

// NewDocument creates a Document with the given number.
func NewDocument(number string, now time.Time) Document {
	return Document{
		BaseEntity: NewBaseEntity(now),
		Number:     number,
	}
}
