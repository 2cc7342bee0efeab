package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/zokasta/bank/pkg/money"
)

var (
	// ErrAccountNotFound is returned when an account cannot be found.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountFrozen is returned when a frozen account is used on either
	// side of a transfer.
	ErrAccountFrozen = errors.New("account is frozen")

	// ErrInsufficientFunds is returned when a debit would push the balance
	// below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Account is a user's bank account. It holds the balance the debit
// instrument draws on, plus the card-shaped identifiers the user sees.
//
// Invariants:
//   - Exactly one account per user.
//   - Balance is never negative at any committed state.
//   - AccountNumber, DebitCard and PaymentID are unique across the bank.
type Account struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	AccountNumber string
	DebitCard     string // 16-digit Luhn-valid card number
	PaymentID     string // UPI-style address, e.g. amir@zokasta
	Balance       money.Money
	Frozen        bool
	CVV           string
	Expiration    string // MM/YY
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Builder constructs Account values, mainly for store hydration and tests.
type Builder struct {
	acct Account
}

// New returns a Builder with a fresh ID and zero balance.
func New() *Builder {
	return &Builder{acct: Account{ID: uuid.New(), CreatedAt: time.Now()}}
}

func (b *Builder) WithID(id uuid.UUID) *Builder            { b.acct.ID = id; return b }
func (b *Builder) WithUserID(id uuid.UUID) *Builder        { b.acct.UserID = id; return b }
func (b *Builder) WithAccountNumber(n string) *Builder     { b.acct.AccountNumber = n; return b }
func (b *Builder) WithDebitCard(card string) *Builder      { b.acct.DebitCard = card; return b }
func (b *Builder) WithPaymentID(pid string) *Builder       { b.acct.PaymentID = pid; return b }
func (b *Builder) WithBalance(m money.Money) *Builder      { b.acct.Balance = m; return b }
func (b *Builder) WithFrozen(frozen bool) *Builder         { b.acct.Frozen = frozen; return b }
func (b *Builder) WithCVV(cvv string) *Builder             { b.acct.CVV = cvv; return b }
func (b *Builder) WithExpiration(exp string) *Builder      { b.acct.Expiration = exp; return b }
func (b *Builder) WithCreatedAt(t time.Time) *Builder      { b.acct.CreatedAt = t; return b }
func (b *Builder) WithUpdatedAt(t time.Time) *Builder      { b.acct.UpdatedAt = t; return b }

// Build validates mandatory fields and returns the Account.
func (b *Builder) Build() (*Account, error) {
	if b.acct.UserID == uuid.Nil {
		return nil, errors.New("userID is required")
	}
	if b.acct.Balance.IsNegative() {
		return nil, ErrInsufficientFunds
	}
	a := b.acct
	return &a, nil
}

// CanDebit reports whether the account can cover the given amount.
// It returns ErrAccountFrozen or ErrInsufficientFunds when it cannot.
func (a *Account) CanDebit(amount money.Money) error {
	if a.Frozen {
		return ErrAccountFrozen
	}
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}
