package stats

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zokasta/bank/internal/fixtures/memstore"
	"github.com/zokasta/bank/pkg/dto"
	"github.com/zokasta/bank/pkg/repository"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodRange(t *testing.T) {
	// A Tuesday.
	now := time.Date(2026, time.September, 1, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		period        string
		currentStart  time.Time
		previousStart time.Time
	}{
		{"day", date(2026, time.September, 1), date(2026, time.August, 31)},
		{"week", date(2026, time.August, 31), date(2026, time.August, 24)},
		{"month", date(2026, time.September, 1), date(2026, time.August, 1)},
		{"year", date(2026, time.January, 1), date(2025, time.January, 1)},
		{"all", time.Time{}, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			current, previous, err := PeriodRange(now, tt.period)
			require.NoError(t, err)
			assert.Equal(t, tt.currentStart, current)
			assert.Equal(t, tt.previousStart, previous)
		})
	}
}

func TestPeriodRange_WeekStartsMonday(t *testing.T) {
	// Sunday belongs to the week that started six days earlier.
	sunday := time.Date(2026, time.September, 6, 9, 0, 0, 0, time.UTC)
	current, _, err := PeriodRange(sunday, "week")
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.August, 31), current)

	// Monday starts a fresh week.
	monday := time.Date(2026, time.September, 7, 9, 0, 0, 0, time.UTC)
	current, _, err = PeriodRange(monday, "week")
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.September, 7), current)
}

func TestPeriodRange_Invalid(t *testing.T) {
	_, _, err := PeriodRange(time.Now(), "fortnight")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

// seedRows appends ledger rows directly; the store assigns strictly
// increasing timestamps shortly after the epoch, so a clock pinned near
// the epoch puts them all in the current day.
func seedRows(t *testing.T, store *memstore.Store, amounts []int64, instrument string) {
	t.Helper()
	err := store.Do(context.Background(), func(uow repository.UnitOfWork) error {
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		for _, amount := range amounts {
			if err := txs.Create(context.Background(), dto.TransactionCreate{
				ID:         uuid.New(),
				SenderID:   uuid.New(),
				ReceiverID: uuid.New(),
				Amount:     amount,
				Instrument: instrument,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func newPinnedService(store *memstore.Store) *Service {
	svc := NewService(store, slog.Default())
	svc.now = func() time.Time { return time.Unix(1, 0).UTC() }
	return svc
}

func TestTransactionGrowth(t *testing.T) {
	store := memstore.New()
	seedRows(t, store, []int64{1000, 2500}, "DC")
	seedRows(t, store, []int64{400}, "CC")
	svc := newPinnedService(store)

	growth, err := svc.TransactionGrowth(context.Background(), "day", "", false)
	require.NoError(t, err)
	assert.EqualValues(t, 3900, growth.Current.Units())
	assert.EqualValues(t, 0, growth.Previous.Units())
	assert.InDelta(t, 100, growth.GrowthPercent, 1e-9)

	growth, err = svc.TransactionGrowth(context.Background(), "day", "CC", false)
	require.NoError(t, err)
	assert.EqualValues(t, 400, growth.Current.Units())
}

func TestTransactionGrowth_InvalidPeriod(t *testing.T) {
	svc := newPinnedService(memstore.New())
	_, err := svc.TransactionGrowth(context.Background(), "decade", "", false)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestSixMonthSummary(t *testing.T) {
	store := memstore.New()
	seedRows(t, store, []int64{1000, 500}, "DC")
	svc := newPinnedService(store)

	summary, err := svc.SixMonthSummary(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, summary.Months, 6)
	require.Len(t, summary.Totals, 6)

	// All rows land in the most recent month; earlier buckets are empty.
	assert.Equal(t, "Jan 1970", summary.Months[5])
	assert.EqualValues(t, 1500, summary.Totals[5].Units())
	for i := 0; i < 5; i++ {
		assert.True(t, summary.Totals[i].IsZero())
	}
}

func TestGrowthPercent(t *testing.T) {
	tests := []struct {
		name     string
		current  int64
		previous int64
		want     float64
	}{
		{"growth", 1500, 1000, 50},
		{"decline", 500, 1000, -50},
		{"flat", 1000, 1000, 0},
		{"from nothing", 1000, 0, 100},
		{"still nothing", 0, 0, 0},
		{"to nothing", 0, 1000, -100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, growthPercent(tt.current, tt.previous), 1e-9)
		})
	}
}
