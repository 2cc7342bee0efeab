// Package repository defines the data-access contracts the services depend
// on. Implementations live under infra/repository.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/zokasta/bank/pkg/dto"
)

// AccountRepository is the data-access contract for accounts. The ForUpdate
// variants take an exclusive row lock that is held until the surrounding
// unit of work commits or aborts.
type AccountRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*dto.AccountRead, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*dto.AccountRead, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*dto.AccountRead, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*dto.AccountRead, error)
	Create(ctx context.Context, create dto.AccountCreate) error
	Update(ctx context.Context, id uuid.UUID, update dto.AccountUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CardRepository is the data-access contract for credit cards.
type CardRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*dto.CardRead, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*dto.CardRead, error)
	GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*dto.CardRead, error)
	ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error)
	Create(ctx context.Context, create dto.CardCreate) error
	Update(ctx context.Context, id uuid.UUID, update dto.CardUpdate) error
}

// TransactionRepository is the data-access contract for the append-only
// ledger history.
type TransactionRepository interface {
	Create(ctx context.Context, create dto.TransactionCreate) error
	Get(ctx context.Context, id uuid.UUID) (*dto.TransactionRead, error)
	// MarkRolledBack flips the one-way rollback flag. It returns
	// ledger.ErrAlreadyRolledBack when the row is missing or already
	// flagged, which doubles as the concurrency guard.
	MarkRolledBack(ctx context.Context, id uuid.UUID) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, filter dto.TransactionFilter) ([]*dto.TransactionRead, error)
	List(ctx context.Context, filter dto.TransactionFilter) ([]*dto.TransactionRead, error)
	SumAmount(ctx context.Context, filter dto.TransactionFilter) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository is the data-access contract for users.
type UserRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*dto.UserRead, error)
	GetByEmail(ctx context.Context, email string) (*dto.UserRead, error)
	Create(ctx context.Context, create dto.UserCreate) error
}

// CardNumberIndex answers whether a candidate card number already exists
// anywhere in the bank, across both the debit-card column of accounts and
// the credit-card table. The generator retries against it.
type CardNumberIndex interface {
	Exists(ctx context.Context, number string) (bool, error)
}
