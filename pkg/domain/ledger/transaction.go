// Package ledger holds the transaction record and the errors shared by the
// transfer, rollback and billing engines.
package ledger

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zokasta/bank/pkg/money"
)

var (
	// ErrInvalidAmount is returned when a transfer amount is zero, negative
	// or malformed.
	ErrInvalidAmount = errors.New("invalid amount, amount must be greater than zero")

	// ErrInvalidInstrument is returned for an unknown funding instrument.
	ErrInvalidInstrument = errors.New("invalid transaction instrument")

	// ErrReceiverNotFound is returned when no account matches the receiver
	// payment id.
	ErrReceiverNotFound = errors.New("receiver account not found")

	// ErrAlreadyRolledBack is returned when a rollback targets a transaction
	// that does not exist or was already rolled back.
	ErrAlreadyRolledBack = errors.New("transaction already rolled back or not found")

	// ErrReceiverBalanceInsufficient is returned when the receiver has since
	// spent the funds a rollback would claw back.
	ErrReceiverBalanceInsufficient = errors.New("receiver balance insufficient for rollback")

	// ErrTransactionFailed is the generic failure surfaced to callers when
	// the atomic block aborts for an unexpected storage reason. The cause is
	// logged server side, never returned.
	ErrTransactionFailed = errors.New("transaction failed, all changes rolled back")

	// ErrBusy is returned when a row lock could not be acquired within the
	// configured wait. The caller may retry.
	ErrBusy = errors.New("ledger busy, retry the operation")
)

// Instrument is the funding method of a transfer: debit card draws on the
// account balance, credit card draws on the credit limit.
type Instrument string

const (
	DebitCard  Instrument = "DC"
	CreditCard Instrument = "CC"
)

// ParseInstrument normalizes and validates a wire-format instrument.
func ParseInstrument(s string) (Instrument, error) {
	switch Instrument(strings.ToUpper(strings.TrimSpace(s))) {
	case DebitCard:
		return DebitCard, nil
	case CreditCard:
		return CreditCard, nil
	}
	return "", ErrInvalidInstrument
}

// Transaction is the immutable record of one funds movement between two
// accounts. After commit the only permitted change is the one-way
// RolledBack flip made by the rollback engine; the compensating movement is
// appended as a separate row pointing back through ReversesID.
type Transaction struct {
	ID         uuid.UUID
	SenderID   uuid.UUID // sender account id
	ReceiverID uuid.UUID // receiver account id
	Amount     money.Money
	Instrument Instrument
	RolledBack bool
	ReversesID *uuid.UUID // set on reversal rows only
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsReversal reports whether this row compensates an earlier transaction.
func (t *Transaction) IsReversal() bool {
	return t.ReversesID != nil
}
