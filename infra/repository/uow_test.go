package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zokasta/bank/pkg/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestUoW_DoSetsLockTimeout(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db, 3*time.Second)

	mock.ExpectBegin()
	mock.ExpectExec(`SET LOCAL lock_timeout = '3000ms'`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(txUow repository.UnitOfWork) error {
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUoW_NoLockTimeoutWhenZero(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db, 0)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(txUow repository.UnitOfWork) error {
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUoW_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db, time.Second)

	mock.ExpectBegin()
	mock.ExpectExec(`SET LOCAL lock_timeout = '1000ms'`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	sentinel := assert.AnError
	err := uow.Do(context.Background(), func(txUow repository.UnitOfWork) error {
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUoW_TypedRepositories(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db, time.Second)

	mock.ExpectBegin()
	mock.ExpectExec(`SET LOCAL lock_timeout`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(txUow repository.UnitOfWork) error {
		accounts, err := txUow.AccountRepository()
		require.NoError(t, err)
		assert.NotNil(t, accounts)

		cards, err := txUow.CardRepository()
		require.NoError(t, err)
		assert.NotNil(t, cards)

		txs, err := txUow.TransactionRepository()
		require.NoError(t, err)
		assert.NotNil(t, txs)

		users, err := txUow.UserRepository()
		require.NoError(t, err)
		assert.NotNil(t, users)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
