// Package account provides account provisioning and the read views built
// on the ledger history.
package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zokasta/bank/pkg/config"
	"github.com/zokasta/bank/pkg/dto"
	"github.com/zokasta/bank/pkg/money"
	"github.com/zokasta/bank/pkg/repository"
	cardsvc "github.com/zokasta/bank/pkg/service/card"
)

// Service provides account business operations.
type Service struct {
	uow    repository.UnitOfWork
	gen    *cardsvc.Generator
	cfg    *config.Ledger
	logger *slog.Logger
}

// NewService creates an account Service.
func NewService(uow repository.UnitOfWork, gen *cardsvc.Generator, cfg *config.Ledger, logger *slog.Logger) *Service {
	return &Service{uow: uow, gen: gen, cfg: cfg, logger: logger}
}

// Open provisions the account created at signup: account number derived
// from the phone, a generated debit-card number, CVV and expiration, and a
// payment id of the form handle@domain. Balance starts at zero.
func (s *Service) Open(ctx context.Context, userID uuid.UUID, phone, handle string) (opened *dto.AccountRead, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		debitCard, err := s.gen.Generate(ctx)
		if err != nil {
			return err
		}
		id := uuid.New()
		if err := accounts.Create(ctx, dto.AccountCreate{
			ID:            id,
			UserID:        userID,
			AccountNumber: phone,
			DebitCard:     debitCard,
			PaymentID:     fmt.Sprintf("%s@%s", handle, s.cfg.PaymentDomain),
			CVV:           s.gen.CVV(),
			Expiration:    s.gen.Expiration(time.Now()),
		}); err != nil {
			return err
		}
		opened, err = accounts.Get(ctx, id)
		return err
	})
	if err != nil {
		s.logger.Error("account provisioning failed", "userID", userID, "error", err)
		return nil, err
	}
	s.logger.Info("account opened", "userID", userID, "accountID", opened.ID, "paymentID", opened.PaymentID)
	return opened, nil
}

// Balance returns the user's current account balance.
func (s *Service) Balance(ctx context.Context, userID uuid.UUID) (money.Money, error) {
	var balance money.Money
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		acct, err := accounts.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		balance = money.FromUnits(acct.Balance)
		return nil
	})
	return balance, err
}

// GetByUser returns the user's account read model.
func (s *Service) GetByUser(ctx context.Context, userID uuid.UUID) (*dto.AccountRead, error) {
	var read *dto.AccountRead
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		read, err = accounts.GetByUserID(ctx, userID)
		return err
	})
	return read, err
}

// ToggleFreeze flips the freeze flag on an account. Admin only.
func (s *Service) ToggleFreeze(ctx context.Context, accountID uuid.UUID) (frozen bool, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		acct, err := accounts.Get(ctx, accountID)
		if err != nil {
			return err
		}
		frozen = !acct.Frozen
		return accounts.Update(ctx, accountID, dto.AccountUpdate{Frozen: &frozen})
	})
	return frozen, err
}

// HistoryEntry is one row of the user-facing transaction history.
type HistoryEntry struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Direction  string `json:"status"`
	Amount     string `json:"amount"`
	Timestamp  string `json:"timestamp"`
	RolledBack bool   `json:"is_rolled_back"`
}

const historyTimeFormat = "02 Jan 2006, 15:04:05"

// Direction labels as the original statements show them.
const (
	directionDebit  = "Debit"
	directionCredit = "Credit"
	directionSelf   = "Self Transfer"
)

// History returns the transactions touching the user's account, newest
// first, labeled Debit/Credit from the account's point of view. The
// optional search narrows by counterparty name, direction, amount or
// formatted timestamp.
func (s *Service) History(ctx context.Context, userID uuid.UUID, instrument, search string) ([]HistoryEntry, error) {
	var rows []*dto.TransactionRead
	var accountID uuid.UUID
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		acct, err := accounts.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		accountID = acct.ID
		rows, err = txs.ListByAccount(ctx, accountID, dto.TransactionFilter{Instrument: instrument})
		return err
	})
	if err != nil {
		return nil, err
	}

	search = strings.ToLower(strings.TrimSpace(search))
	entries := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entry := HistoryEntry{
			Amount:     money.FromUnits(row.Amount).String(),
			Timestamp:  row.CreatedAt.Format(historyTimeFormat),
			RolledBack: row.RolledBack,
		}
		switch {
		case row.SenderID == accountID && row.ReceiverID == accountID:
			entry.Direction = directionSelf
			entry.Name = row.SenderName
		case row.SenderID == accountID:
			entry.Direction = directionDebit
			entry.Name = row.ReceiverName
		default:
			entry.Direction = directionCredit
			entry.Name = row.SenderName
		}
		if search != "" && !matchesSearch(entry, search) {
			continue
		}
		entry.Index = len(entries) + 1
		entries = append(entries, entry)
	}
	return entries, nil
}

func matchesSearch(e HistoryEntry, search string) bool {
	return strings.Contains(strings.ToLower(e.Name), search) ||
		strings.Contains(strings.ToLower(e.Direction), search) ||
		strings.Contains(e.Amount, search) ||
		strings.Contains(strings.ToLower(e.Timestamp), search)
}
