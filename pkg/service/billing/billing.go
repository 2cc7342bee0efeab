// Package billing settles a user's outstanding credit-card balance against
// their account, moving the funds to the bank's settlement account.
package billing

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/zokasta/bank/pkg/config"
	"github.com/zokasta/bank/pkg/domain/account"
	"github.com/zokasta/bank/pkg/domain/card"
	"github.com/zokasta/bank/pkg/domain/ledger"
	"github.com/zokasta/bank/pkg/domain/user"
	"github.com/zokasta/bank/pkg/dto"
	"github.com/zokasta/bank/pkg/money"
	"github.com/zokasta/bank/pkg/repository"
)

// Receipt reports a completed bill payment.
type Receipt struct {
	CardID           uuid.UUID
	AccountID        uuid.UUID
	PaidAmount       money.Money
	RemainingBalance money.Money
}

// Service is the billing engine. The settlement account it credits is
// injected through configuration, resolved once at startup.
type Service struct {
	uow    repository.UnitOfWork
	cfg    *config.Ledger
	logger *slog.Logger
}

// NewService creates a billing Service.
func NewService(uow repository.UnitOfWork, cfg *config.Ledger, logger *slog.Logger) *Service {
	return &Service{uow: uow, cfg: cfg, logger: logger}
}

// PayBill settles the user's entire outstanding credit-card balance. The
// card row is locked first and held for the whole operation, so the amount
// owed cannot move between the balance check and the usage decrement; a
// charge landing concurrently waits for the lock and is preserved.
func (s *Service) PayBill(ctx context.Context, userID uuid.UUID, mpin string) (*Receipt, error) {
	logger := s.logger.With("userID", userID)

	var receipt *Receipt
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		cards, err := uow.CardRepository()
		if err != nil {
			return err
		}

		owner, err := users.Get(ctx, userID)
		if err != nil {
			return err
		}
		u := user.User{MPINHash: owner.MPINHash}
		if err := u.CheckMPIN(mpin); err != nil {
			return err
		}

		cc, err := cards.GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if cc.Status != string(card.StatusConfirmed) {
			return card.ErrCardNotConfirmed
		}
		if cc.Used == 0 {
			return card.ErrNoOutstandingBalance
		}
		amount := cc.Used

		acct, err := accounts.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}

		locked, err := lockPair(ctx, accounts, acct.ID, s.cfg.SettlementAccountID)
		if err != nil {
			return err
		}
		lockedAcct, settle := locked[acct.ID], locked[s.cfg.SettlementAccountID]

		if lockedAcct.Balance < amount {
			return account.ErrInsufficientFunds
		}

		newBalance := lockedAcct.Balance - amount
		if err := accounts.Update(ctx, acct.ID, dto.AccountUpdate{Balance: &newBalance}); err != nil {
			return err
		}
		settleBalance := settle.Balance + amount
		if err := accounts.Update(ctx, settle.ID, dto.AccountUpdate{Balance: &settleBalance}); err != nil {
			return err
		}

		// Decrement rather than reset: amount was read under the card lock
		// held since the start, so this lands at zero unless state is
		// corrupted, and never erases a charge.
		used := cc.Used - amount
		if err := cards.Update(ctx, cc.ID, dto.CardUpdate{Used: &used}); err != nil {
			return err
		}

		receipt = &Receipt{
			CardID:           cc.ID,
			AccountID:        acct.ID,
			PaidAmount:       money.FromUnits(amount),
			RemainingBalance: money.FromUnits(newBalance),
		}
		return nil
	})
	if err != nil {
		if isBusinessErr(err) {
			logger.Info("bill payment rejected", "reason", err)
			return nil, err
		}
		logger.Error("bill payment aborted", "error", err)
		return nil, ledger.ErrTransactionFailed
	}
	logger.Info("bill paid",
		"cardID", receipt.CardID,
		"amount", receipt.PaidAmount.String(),
		"settlementAccountID", s.cfg.SettlementAccountID)
	return receipt, nil
}

func isBusinessErr(err error) bool {
	for _, sentinel := range []error{
		ledger.ErrBusy,
		account.ErrAccountNotFound,
		account.ErrInsufficientFunds,
		card.ErrCardNotFound,
		card.ErrCardNotConfirmed,
		card.ErrNoOutstandingBalance,
		user.ErrUserNotFound,
		user.ErrInvalidMPIN,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// lockPair locks the two account rows in ascending id order.
func lockPair(ctx context.Context, accounts repository.AccountRepository, a, b uuid.UUID) (map[uuid.UUID]*dto.AccountRead, error) {
	first, second := a, b
	for i := range first {
		if first[i] != second[i] {
			if first[i] > second[i] {
				first, second = second, first
			}
			break
		}
	}
	locked := make(map[uuid.UUID]*dto.AccountRead, 2)
	for _, id := range []uuid.UUID{first, second} {
		if _, ok := locked[id]; ok {
			continue
		}
		row, err := accounts.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = row
	}
	return locked, nil
}
