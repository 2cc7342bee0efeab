// Package repository implements the data-access contracts on Postgres.
package repository

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/zokasta/bank/infra/repository/account"
	"github.com/zokasta/bank/infra/repository/card"
	"github.com/zokasta/bank/infra/repository/transaction"
	"github.com/zokasta/bank/infra/repository/user"
	"github.com/zokasta/bank/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides the transaction boundary and repository access in one
// abstraction, backed by a gorm transaction.
//
// Every transaction starts with SET LOCAL lock_timeout so a unit of work
// stuck behind a contended row lock fails fast with ledger.ErrBusy instead
// of queueing callers indefinitely.
type UoW struct {
	db           *gorm.DB
	tx           *gorm.DB
	lockTimeout  time.Duration
	repoRegistry map[reflect.Type]func(*gorm.DB) any
}

// NewUoW creates a UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB, lockTimeout time.Duration) *UoW {
	return &UoW{
		db:          db,
		lockTimeout: lockTimeout,
		repoRegistry: map[reflect.Type]func(*gorm.DB) any{
			reflect.TypeOf((*repository.AccountRepository)(nil)).Elem():     func(db *gorm.DB) any { return account.New(db) },
			reflect.TypeOf((*repository.CardRepository)(nil)).Elem():        func(db *gorm.DB) any { return card.New(db) },
			reflect.TypeOf((*repository.TransactionRepository)(nil)).Elem(): func(db *gorm.DB) any { return transaction.New(db) },
			reflect.TypeOf((*repository.UserRepository)(nil)).Elem():        func(db *gorm.DB) any { return user.New(db) },
		},
	}
}

// Do runs fn in a transaction boundary, providing a UoW bound to that
// transaction. Any error rolls the whole unit back.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if u.lockTimeout > 0 {
			timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", u.lockTimeout.Milliseconds())
			if err := tx.Exec(timeout).Error; err != nil {
				return err
			}
		}
		txnUow := &UoW{db: u.db, tx: tx, lockTimeout: u.lockTimeout, repoRegistry: u.repoRegistry}
		return fn(txnUow)
	})
}

// GetRepository provides generic access to repositories bound to the
// current transaction session.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	constructor, ok := u.repoRegistry[repoType]
	if !ok {
		return nil, fmt.Errorf("unsupported repository type: %v", repoType)
	}
	session := u.tx
	if session == nil {
		session = u.db
	}
	return constructor(session), nil
}

// AccountRepository implements repository.UnitOfWork.
func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	repo, err := u.GetRepository(reflect.TypeOf((*repository.AccountRepository)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	return repo.(repository.AccountRepository), nil
}

// CardRepository implements repository.UnitOfWork.
func (u *UoW) CardRepository() (repository.CardRepository, error) {
	repo, err := u.GetRepository(reflect.TypeOf((*repository.CardRepository)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	return repo.(repository.CardRepository), nil
}

// TransactionRepository implements repository.UnitOfWork.
func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	repo, err := u.GetRepository(reflect.TypeOf((*repository.TransactionRepository)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	return repo.(repository.TransactionRepository), nil
}

// UserRepository implements repository.UnitOfWork.
func (u *UoW) UserRepository() (repository.UserRepository, error) {
	repo, err := u.GetRepository(reflect.TypeOf((*repository.UserRepository)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	return repo.(repository.UserRepository), nil
}
