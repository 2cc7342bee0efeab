// Package dto defines the shapes exchanged between services and
// repositories: create and partial-update inputs, and read-optimized views.
package dto

import (
	"time"

	"github.com/google/uuid"
)

// AccountCreate is the input for provisioning a new account.
type AccountCreate struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	AccountNumber string
	DebitCard     string
	PaymentID     string
	CVV           string
	Expiration    string
}

// AccountUpdate is a partial update; nil fields are left untouched.
type AccountUpdate struct {
	Balance *int64
	Frozen  *bool
}

// AccountRead is the read model of an account row. Balance is in the
// smallest currency unit.
type AccountRead struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	AccountNumber string
	DebitCard     string
	PaymentID     string
	Balance       int64
	Frozen        bool
	CVV           string
	Expiration    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
