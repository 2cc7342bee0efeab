package transaction

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ledgerdomain "github.com/zokasta/bank/pkg/domain/ledger"
	"github.com/zokasta/bank/pkg/dto"
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

func TestCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)

	mock.ExpectExec(`INSERT INTO "transactions" (.+) VALUES (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), dto.TransactionCreate{
		ID:         uuid.New(),
		SenderID:   uuid.New(),
		ReceiverID: uuid.New(),
		Amount:     4000,
		Instrument: "DC",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRolledBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "transactions" SET (.+) WHERE id = \$\d+ AND rolled_back = false`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkRolledBack(context.Background(), id))

	// No row matched: already flagged, or never existed.
	mock.ExpectExec(`UPDATE "transactions" SET (.+) WHERE id = \$\d+ AND rolled_back = false`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkRolledBack(context.Background(), id)
	require.ErrorIs(t, err, ledgerdomain.ErrAlreadyRolledBack)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)

	mock.ExpectQuery(`SELECT (.+) FROM "transactions"`).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ledgerdomain.ErrAlreadyRolledBack)
}

func TestSumAmount_EmptyIsZero(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))

	sum, err := repo.SumAmount(context.Background(), dto.TransactionFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, sum)
}
