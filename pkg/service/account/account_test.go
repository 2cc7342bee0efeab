package account_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zokasta/bank/internal/fixtures/memstore"
	"github.com/zokasta/bank/pkg/config"
	ledgerdomain "github.com/zokasta/bank/pkg/domain/ledger"
	"github.com/zokasta/bank/pkg/domain/user"
	"github.com/zokasta/bank/pkg/dto"
	"github.com/zokasta/bank/pkg/money"
	accountsvc "github.com/zokasta/bank/pkg/service/account"
	cardsvc "github.com/zokasta/bank/pkg/service/card"
	ledgersvc "github.com/zokasta/bank/pkg/service/ledger"
)

const testMPIN = "1234"

var testMPINHash = func() []byte {
	hash, err := user.HashMPIN(testMPIN)
	if err != nil {
		panic(err)
	}
	return hash
}()

func testConfig() *config.Ledger {
	return &config.Ledger{
		SettlementAccountID: uuid.New(),
		CardPrefix:          "4",
		CardLength:          16,
		CardMaxAttempts:     100,
		PaymentDomain:       "zokasta",
	}
}

type noIndex struct{}

func (noIndex) Exists(context.Context, string) (bool, error) { return false, nil }

func newService(store *memstore.Store) *accountsvc.Service {
	cfg := testConfig()
	gen := cardsvc.NewGenerator(cfg, noIndex{}, slog.Default())
	return accountsvc.NewService(store, gen, cfg, slog.Default())
}

func TestOpen_Provisioning(t *testing.T) {
	store := memstore.New()
	userID := uuid.New()
	store.PutUser(dto.UserRead{ID: userID, Name: "Alice", MPINHash: testMPINHash})
	svc := newService(store)

	acct, err := svc.Open(context.Background(), userID, "9876543210", "alice")
	require.NoError(t, err)

	assert.Equal(t, "9876543210", acct.AccountNumber)
	assert.Equal(t, "alice@zokasta", acct.PaymentID)
	assert.Len(t, acct.DebitCard, 16)
	assert.True(t, cardsvc.ValidLuhn(acct.DebitCard))
	assert.Len(t, acct.CVV, 3)
	assert.NotEmpty(t, acct.Expiration)
	assert.EqualValues(t, 0, acct.Balance)

	balance, err := svc.Balance(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestToggleFreeze(t *testing.T) {
	store := memstore.New()
	accountID := uuid.New()
	store.PutAccount(dto.AccountRead{ID: accountID, UserID: uuid.New()})
	svc := newService(store)

	frozen, err := svc.ToggleFreeze(context.Background(), accountID)
	require.NoError(t, err)
	assert.True(t, frozen)
	assert.True(t, store.Account(accountID).Frozen)

	frozen, err = svc.ToggleFreeze(context.Background(), accountID)
	require.NoError(t, err)
	assert.False(t, frozen)
	assert.False(t, store.Account(accountID).Frozen)
}

// seedHistory runs real transfers so the history view is built from rows
// the ledger engine actually writes.
func seedHistory(t *testing.T, store *memstore.Store) (alice, bob uuid.UUID) {
	t.Helper()
	alice, bob = uuid.New(), uuid.New()
	store.PutUser(dto.UserRead{ID: alice, Name: "Alice", MPINHash: testMPINHash})
	store.PutUser(dto.UserRead{ID: bob, Name: "Bob", MPINHash: testMPINHash})
	store.PutAccount(dto.AccountRead{ID: uuid.New(), UserID: alice, PaymentID: "alice@zokasta", Balance: 100000})
	store.PutAccount(dto.AccountRead{ID: uuid.New(), UserID: bob, PaymentID: "bob@zokasta", Balance: 100000})

	ledger := ledgersvc.NewService(store, testConfig(), slog.Default())
	transfers := []struct {
		from   uuid.UUID
		to     string
		amount string
	}{
		{alice, "bob@zokasta", "40.00"},
		{bob, "alice@zokasta", "12.50"},
		{alice, "alice@zokasta", "5.00"},
	}
	for _, tr := range transfers {
		amount, err := money.Parse(tr.amount)
		require.NoError(t, err)
		_, err = ledger.Transfer(context.Background(), ledgersvc.TransferInput{
			SenderUserID:      tr.from,
			Amount:            amount,
			ReceiverPaymentID: tr.to,
			MPIN:              testMPIN,
			Instrument:        ledgerdomain.DebitCard,
		})
		require.NoError(t, err)
	}
	return alice, bob
}

func TestHistory_Labels(t *testing.T) {
	store := memstore.New()
	alice, _ := seedHistory(t, store)
	svc := newService(store)

	entries, err := svc.History(context.Background(), alice, "", "")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first: self transfer, then Bob's payment, then the debit.
	assert.Equal(t, "Self Transfer", entries[0].Direction)
	assert.Equal(t, "Alice", entries[0].Name)
	assert.Equal(t, "5.00", entries[0].Amount)

	assert.Equal(t, "Credit", entries[1].Direction)
	assert.Equal(t, "Bob", entries[1].Name)
	assert.Equal(t, "12.50", entries[1].Amount)

	assert.Equal(t, "Debit", entries[2].Direction)
	assert.Equal(t, "Bob", entries[2].Name)
	assert.Equal(t, "40.00", entries[2].Amount)

	for i, e := range entries {
		assert.Equal(t, i+1, e.Index)
	}
}

func TestHistory_Search(t *testing.T) {
	store := memstore.New()
	alice, _ := seedHistory(t, store)
	svc := newService(store)

	entries, err := svc.History(context.Background(), alice, "", "credit")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Credit", entries[0].Direction)
	// Indexes are renumbered after filtering.
	assert.Equal(t, 1, entries[0].Index)

	entries, err = svc.History(context.Background(), alice, "", "40.00")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Debit", entries[0].Direction)

	entries, err = svc.History(context.Background(), alice, "", "no such thing")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
