// Package id generates the identifiers of users, materials and documents.
// Ids are UUIDv7, so they sort by creation time.
package id

import (
	"github.com/google/uuid"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
)

type ID = uuid.UUID

// New returns a fresh UUIDv7, or a random v4 if the clock source fails.
func New() ID {
	if v, err := uuid.NewV7(); err == nil {
		return v
	}
	return uuid.New()
}

// Parse reads an id from a path or body value.
func Parse(s string) (ID, error) {
	v, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apperror.NewInvalidArgument("invalid identifier").
			WithDetail("value", s).
			WithCause(err)
	}
	return v, nil
}

// MustParse is for fixtures.
func MustParse(s string) ID { return uuid.MustParse(s) }

func Nil() ID { return uuid.Nil }

func IsNil(v ID) bool { return v == uuid.Nil }
