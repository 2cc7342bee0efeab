package repository

import (
	"context"
	"reflect"
)

// UnitOfWork provides the transaction boundary and repository access in one
// abstraction.
//
// Why is GetRepository part of UnitOfWork?
// - Ensures all repositories use the same DB session/transaction, which is
//   what makes the ledger's all-or-nothing guarantee hold.
// - Keeps service code focused on business logic.
// - Centralizes repository wiring and makes mocking trivial in tests.
//
// Every mutating ledger operation runs inside Do: row locks taken by the
// ForUpdate repository methods are held until the closure returns, and any
// error rolls the whole unit back.
type UnitOfWork interface {
	// Do executes fn within a transaction boundary. If fn returns an
	// error the transaction is rolled back and the error is returned.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	// GetRepository returns a repository of the requested interface type,
	// bound to the current transaction/session.
	// Example:
	//   repoAny, err := uow.GetRepository(reflect.TypeOf((*AccountRepository)(nil)).Elem())
	//   repo := repoAny.(AccountRepository)
	GetRepository(repoType reflect.Type) (any, error)

	// Typed convenience accessors.
	AccountRepository() (AccountRepository, error)
	CardRepository() (CardRepository, error)
	TransactionRepository() (TransactionRepository, error)
	UserRepository() (UserRepository, error)
}
