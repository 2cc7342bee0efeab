package card_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zokasta/bank/internal/fixtures/memstore"
	"github.com/zokasta/bank/pkg/config"
	carddomain "github.com/zokasta/bank/pkg/domain/card"
	cardsvc "github.com/zokasta/bank/pkg/service/card"
)

type noIndex struct{}

func (noIndex) Exists(context.Context, string) (bool, error) { return false, nil }

func newService(store *memstore.Store) *cardsvc.Service {
	cfg := &config.Ledger{
		CardPrefix:         "4",
		CardLength:         16,
		CardMaxAttempts:    100,
		DefaultCreditLimit: 3000000,
	}
	gen := cardsvc.NewGenerator(cfg, noIndex{}, slog.Default())
	return cardsvc.NewService(store, gen, cfg, slog.Default())
}

func TestApply(t *testing.T) {
	store := memstore.New()
	svc := newService(store)
	userID := uuid.New()

	created, err := svc.Apply(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, userID, created.UserID)
	assert.Equal(t, string(carddomain.StatusPending), created.Status)
	assert.EqualValues(t, 3000000, created.Limit)
	assert.EqualValues(t, 0, created.Used)
	assert.Len(t, created.CardNumber, 16)
	assert.True(t, cardsvc.ValidLuhn(created.CardNumber))
	assert.Len(t, created.CVV, 3)
}

func TestApply_OnePerUser(t *testing.T) {
	store := memstore.New()
	svc := newService(store)
	userID := uuid.New()

	_, err := svc.Apply(context.Background(), userID)
	require.NoError(t, err)

	_, err = svc.Apply(context.Background(), userID)
	assert.ErrorIs(t, err, carddomain.ErrCardAlreadyExists)
}

func TestSetStatus(t *testing.T) {
	store := memstore.New()
	svc := newService(store)
	userID := uuid.New()

	created, err := svc.Apply(context.Background(), userID)
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(context.Background(), created.ID, carddomain.StatusConfirmed))
	assert.Equal(t, string(carddomain.StatusConfirmed), store.Card(created.ID).Status)

	err = svc.SetStatus(context.Background(), created.ID, carddomain.Status("burned"))
	assert.ErrorIs(t, err, carddomain.ErrInvalidStatus)

	err = svc.SetStatus(context.Background(), uuid.New(), carddomain.StatusRejected)
	assert.ErrorIs(t, err, carddomain.ErrCardNotFound)
}

func TestToggleFreeze(t *testing.T) {
	store := memstore.New()
	svc := newService(store)

	created, err := svc.Apply(context.Background(), uuid.New())
	require.NoError(t, err)

	frozen, err := svc.ToggleFreeze(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, frozen)

	frozen, err = svc.ToggleFreeze(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, frozen)
}

func TestGetByUser(t *testing.T) {
	store := memstore.New()
	svc := newService(store)
	userID := uuid.New()

	_, err := svc.GetByUser(context.Background(), userID)
	assert.ErrorIs(t, err, carddomain.ErrCardNotFound)

	created, err := svc.Apply(context.Background(), userID)
	require.NoError(t, err)

	got, err := svc.GetByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}
