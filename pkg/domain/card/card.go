package card

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/zokasta/bank/pkg/money"
)

var (
	// ErrCardNotFound is returned when a user has no credit card.
	ErrCardNotFound = errors.New("credit card not found")

	// ErrCardAlreadyExists is returned when a user who already holds a card
	// applies for another. At most one credit card per user.
	ErrCardAlreadyExists = errors.New("credit card application already exists")

	// ErrCardFrozen is returned when a frozen card is charged.
	ErrCardFrozen = errors.New("credit card is frozen")

	// ErrCardNotConfirmed is returned when a pending or rejected card is
	// charged.
	ErrCardNotConfirmed = errors.New("credit card is not confirmed")

	// ErrInsufficientCredit is returned when a charge would exceed the
	// available credit.
	ErrInsufficientCredit = errors.New("insufficient credit card balance")

	// ErrNoOutstandingBalance is returned when a bill payment finds nothing
	// to settle.
	ErrNoOutstandingBalance = errors.New("no outstanding credit card balance")

	// ErrCardSpaceExhausted is returned when the generator cannot find an
	// unused card number within its retry budget.
	ErrCardSpaceExhausted = errors.New("card number space exhausted")

	// ErrInvalidStatus is returned when an admin supplies an unknown status
	// transition.
	ErrInvalidStatus = errors.New("invalid credit card status")
)

// Status is the lifecycle state of a credit-card application.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirm"
	StatusRejected  Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected:
		return true
	}
	return false
}

// CreditCard is a user's single credit instrument. Used accumulates charges
// and is settled back to the account by the billing engine.
//
// Invariant: 0 <= Used <= Limit at every committed state.
type CreditCard struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	CardNumber string // 16-digit Luhn-valid
	Expiration string // MM/YY
	CVV        string
	Status     Status
	Frozen     bool
	Limit      money.Money
	Used       money.Money
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Available returns the remaining credit, Limit - Used.
func (c *CreditCard) Available() money.Money {
	avail, err := c.Limit.Sub(c.Used)
	if err != nil {
		// Limit and Used are both bounded by the invariant; reaching here
		// means corrupted state, treat as no credit.
		return money.Zero
	}
	return avail
}

// CanCharge reports whether the card can fund the given amount, checking
// status, freeze flag and available credit in that order.
func (c *CreditCard) CanCharge(amount money.Money) error {
	if c.Status != StatusConfirmed {
		return ErrCardNotConfirmed
	}
	if c.Frozen {
		return ErrCardFrozen
	}
	if c.Available().LessThan(amount) {
		return ErrInsufficientCredit
	}
	return nil
}
