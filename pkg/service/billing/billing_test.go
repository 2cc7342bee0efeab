package billing_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zokasta/bank/internal/fixtures/memstore"
	"github.com/zokasta/bank/pkg/config"
	"github.com/zokasta/bank/pkg/domain/account"
	"github.com/zokasta/bank/pkg/domain/card"
	"github.com/zokasta/bank/pkg/domain/user"
	"github.com/zokasta/bank/pkg/dto"
	billingsvc "github.com/zokasta/bank/pkg/service/billing"
)

const testMPIN = "1234"

var testMPINHash = func() []byte {
	hash, err := user.HashMPIN(testMPIN)
	if err != nil {
		panic(err)
	}
	return hash
}()

type fixture struct {
	store        *memstore.Store
	svc          *billingsvc.Service
	userID       uuid.UUID
	accountID    uuid.UUID
	cardID       uuid.UUID
	settlementID uuid.UUID
}

func setup(t *testing.T, balance, used int64) fixture {
	t.Helper()
	store := memstore.New()
	f := fixture{
		store:        store,
		userID:       uuid.New(),
		accountID:    uuid.New(),
		cardID:       uuid.New(),
		settlementID: uuid.New(),
	}
	store.PutUser(dto.UserRead{ID: f.userID, Name: "Alice", MPINHash: testMPINHash})
	store.PutAccount(dto.AccountRead{ID: f.accountID, UserID: f.userID, Balance: balance})
	store.PutAccount(dto.AccountRead{ID: f.settlementID, PaymentID: "bank@zokasta"})
	store.PutCard(dto.CardRead{
		ID:     f.cardID,
		UserID: f.userID,
		Status: string(card.StatusConfirmed),
		Limit:  3000000,
		Used:   used,
	})
	cfg := &config.Ledger{SettlementAccountID: f.settlementID}
	f.svc = billingsvc.NewService(store, cfg, slog.Default())
	return f
}

func TestPayBill_Success(t *testing.T) {
	f := setup(t, 100000, 25000)

	receipt, err := f.svc.PayBill(context.Background(), f.userID, testMPIN)
	require.NoError(t, err)

	assert.Equal(t, f.cardID, receipt.CardID)
	assert.Equal(t, f.accountID, receipt.AccountID)
	assert.EqualValues(t, 25000, receipt.PaidAmount.Units())
	assert.EqualValues(t, 75000, receipt.RemainingBalance.Units())

	assert.EqualValues(t, 75000, f.store.Account(f.accountID).Balance)
	assert.EqualValues(t, 25000, f.store.Account(f.settlementID).Balance)
	assert.EqualValues(t, 0, f.store.Card(f.cardID).Used)
}

func TestPayBill_InsufficientFunds(t *testing.T) {
	f := setup(t, 200, 500)

	_, err := f.svc.PayBill(context.Background(), f.userID, testMPIN)
	require.ErrorIs(t, err, account.ErrInsufficientFunds)

	// The outstanding balance survives the failed payment.
	assert.EqualValues(t, 500, f.store.Card(f.cardID).Used)
	assert.EqualValues(t, 200, f.store.Account(f.accountID).Balance)
	assert.EqualValues(t, 0, f.store.Account(f.settlementID).Balance)
}

func TestPayBill_NothingOwed(t *testing.T) {
	f := setup(t, 100000, 0)

	_, err := f.svc.PayBill(context.Background(), f.userID, testMPIN)
	assert.ErrorIs(t, err, card.ErrNoOutstandingBalance)
}

func TestPayBill_WrongMPIN(t *testing.T) {
	f := setup(t, 100000, 25000)

	_, err := f.svc.PayBill(context.Background(), f.userID, "0000")
	require.ErrorIs(t, err, user.ErrInvalidMPIN)
	assert.EqualValues(t, 25000, f.store.Card(f.cardID).Used)
}

func TestPayBill_NoCard(t *testing.T) {
	store := memstore.New()
	userID := uuid.New()
	store.PutUser(dto.UserRead{ID: userID, MPINHash: testMPINHash})
	store.PutAccount(dto.AccountRead{ID: uuid.New(), UserID: userID, Balance: 1000})
	settlement := uuid.New()
	store.PutAccount(dto.AccountRead{ID: settlement})
	svc := billingsvc.NewService(store, &config.Ledger{SettlementAccountID: settlement}, slog.Default())

	_, err := svc.PayBill(context.Background(), userID, testMPIN)
	assert.ErrorIs(t, err, card.ErrCardNotFound)
}

func TestPayBill_CardNotConfirmed(t *testing.T) {
	f := setup(t, 100000, 0)
	f.store.PutCard(dto.CardRead{
		ID:     f.cardID,
		UserID: f.userID,
		Status: string(card.StatusPending),
		Limit:  3000000,
		Used:   500,
	})

	_, err := f.svc.PayBill(context.Background(), f.userID, testMPIN)
	require.ErrorIs(t, err, card.ErrCardNotConfirmed)
	assert.EqualValues(t, 500, f.store.Card(f.cardID).Used)
	assert.EqualValues(t, 100000, f.store.Account(f.accountID).Balance)
}

func TestPayBill_ExactBalance(t *testing.T) {
	f := setup(t, 500, 500)

	receipt, err := f.svc.PayBill(context.Background(), f.userID, testMPIN)
	require.NoError(t, err)

	assert.EqualValues(t, 0, receipt.RemainingBalance.Units())
	assert.EqualValues(t, 0, f.store.Account(f.accountID).Balance)
	assert.EqualValues(t, 500, f.store.Account(f.settlementID).Balance)
	assert.EqualValues(t, 0, f.store.Card(f.cardID).Used)
}
