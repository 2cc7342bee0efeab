// Package stats is the read-only reporting layer over the ledger history.
// It consumes transaction rows and never mutates ledger state.
package stats

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/zokasta/bank/pkg/dto"
	"github.com/zokasta/bank/pkg/money"
	"github.com/zokasta/bank/pkg/repository"
)

// ErrInvalidPeriod is returned for an unknown reporting period.
var ErrInvalidPeriod = errors.New("invalid time period, choose from 'day', 'week', 'month', 'year', 'all'")

// Growth compares the current reporting period against the previous one.
type Growth struct {
	Current  money.Money
	Previous money.Money
	// GrowthPercent is the relative change; 100 when the previous period
	// was empty and the current one is not.
	GrowthPercent float64
}

// MonthlySummary is six months of ledger volume for a chart.
type MonthlySummary struct {
	Months []string
	Totals []money.Money
}

// Service computes reporting aggregates.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a stats Service.
func NewService(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger, now: time.Now}
}

// TransactionGrowth reports ledger volume for the period against the one
// before it, optionally narrowed to one instrument or to rolled-back
// transactions only.
func (s *Service) TransactionGrowth(ctx context.Context, period, instrument string, rolledBackOnly bool) (*Growth, error) {
	now := s.now()
	currentStart, previousStart, err := PeriodRange(now, period)
	if err != nil {
		return nil, err
	}

	var current, previous int64
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		current, err = txs.SumAmount(ctx, dto.TransactionFilter{
			Instrument:     instrument,
			From:           currentStart,
			To:             now,
			RolledBackOnly: rolledBackOnly,
		})
		if err != nil {
			return err
		}
		previous, err = txs.SumAmount(ctx, dto.TransactionFilter{
			Instrument:     instrument,
			From:           previousStart,
			To:             currentStart,
			RolledBackOnly: rolledBackOnly,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Growth{
		Current:       money.FromUnits(current),
		Previous:      money.FromUnits(previous),
		GrowthPercent: growthPercent(current, previous),
	}, nil
}

// SixMonthSummary returns ledger volume per month for the last six months,
// optionally narrowed to one instrument.
func (s *Service) SixMonthSummary(ctx context.Context, instrument string) (*MonthlySummary, error) {
	now := s.now()
	summary := &MonthlySummary{}

	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		for i := 5; i >= 0; i-- {
			monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
			monthEnd := monthStart.AddDate(0, 1, 0)
			total, err := txs.SumAmount(ctx, dto.TransactionFilter{
				Instrument: instrument,
				From:       monthStart,
				To:         monthEnd,
			})
			if err != nil {
				return err
			}
			summary.Months = append(summary.Months, monthStart.Format("Jan 2006"))
			summary.Totals = append(summary.Totals, money.FromUnits(total))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// PeriodRange resolves a reporting period name into the start of the
// current period and the start of the previous one, relative to now.
func PeriodRange(now time.Time, period string) (currentStart, previousStart time.Time, err error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case "day":
		currentStart = midnight
		previousStart = currentStart.AddDate(0, 0, -1)
	case "week":
		// Weeks start on Monday.
		offset := (int(now.Weekday()) + 6) % 7
		currentStart = midnight.AddDate(0, 0, -offset)
		previousStart = currentStart.AddDate(0, 0, -7)
	case "month":
		currentStart = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		previousStart = currentStart.AddDate(0, -1, 0)
	case "year":
		currentStart = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		previousStart = currentStart.AddDate(-1, 0, 0)
	case "all":
		currentStart = time.Time{}
		previousStart = time.Time{}
	default:
		err = ErrInvalidPeriod
	}
	return currentStart, previousStart, err
}

func growthPercent(current, previous int64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}
