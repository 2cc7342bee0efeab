// Package ledger implements the transfer and rollback engines: the only
// code that moves money between accounts and credit-card balances.
//
// Every mutation runs inside a single unit of work holding exclusive row
// locks on each touched Account and CreditCard row. The global lock order,
// shared with the billing engine, is the card row first, then account rows
// in ascending account-id order. The total order makes concurrent
// opposite-direction transfers and bill payments deadlock-free.
package ledger

import (
	"bytes"
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

// Service orchestrates single money movements and their administrative
// reversal.
type Service struct {
	uow    repository.UnitOfWork
	cfg    *config.Ledger
	logger *slog.Logger
}

// NewService creates a ledger Service.
func NewService(uow repository.UnitOfWork, cfg *config.Ledger, logger *slog.Logger) *Service {
	return &Service{uow: uow, cfg: cfg, logger: logger}
}

// TransferInput carries one transfer request.
type TransferInput struct {
	SenderUserID      uuid.UUID
	Amount            money.Money
	ReceiverPaymentID string
	MPIN              string
	Instrument        ledger.Instrument
}

// Transfer moves Amount from the sender's account (or credit line) to the
// account behind ReceiverPaymentID, atomically. On success exactly one
// transaction row exists; on any failure no row differs from its pre-call
// value.
func (s *Service) Transfer(ctx context.Context, in TransferInput) (*ledger.Transaction, error) {
	if !in.Amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	instrument, err := ledger.ParseInstrument(string(in.Instrument))
	if err != nil {
		return nil, err
	}
	in.Instrument = instrument

	logger := s.logger.With(
		"senderUserID", in.SenderUserID,
		"receiver", in.ReceiverPaymentID,
		"amount", in.Amount.String(),
		"instrument", in.Instrument,
	)

	var created *ledger.Transaction
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
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
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}

		sender, err := users.Get(ctx, in.SenderUserID)
		if err != nil {
			return err
		}
		if sender.Banned {
			return user.ErrUserBanned
		}
		u := user.User{MPINHash: sender.MPINHash}
		if err := u.CheckMPIN(in.MPIN); err != nil {
			return err
		}

		senderAcct, err := accounts.GetByUserID(ctx, in.SenderUserID)
		if err != nil {
			return err
		}
		recvAcct, err := accounts.GetByPaymentID(ctx, in.ReceiverPaymentID)
		if err != nil {
			if errors.Is(err, account.ErrAccountNotFound) {
				return ledger.ErrReceiverNotFound
			}
			return err
		}

		// Per-account balance deltas. A self transfer nets out on the
		// balance and only moves credit usage when funded by CC. The card
		// row is locked before the account rows, the order billing uses.
		deltas := map[uuid.UUID]int64{}

		if in.Instrument == ledger.CreditCard {
			cc, err := cards.GetByUserIDForUpdate(ctx, in.SenderUserID)
			if err != nil {
				return err
			}
			entity := card.CreditCard{
				Status: card.Status(cc.Status),
				Frozen: cc.Frozen,
				Limit:  money.FromUnits(cc.Limit),
				Used:   money.FromUnits(cc.Used),
			}
			if err := entity.CanCharge(in.Amount); err != nil {
				return err
			}
			used := cc.Used + in.Amount.Units()
			if err := cards.Update(ctx, cc.ID, dto.CardUpdate{Used: &used}); err != nil {
				return err
			}
		} else {
			deltas[senderAcct.ID] -= in.Amount.Units()
		}
		deltas[recvAcct.ID] += in.Amount.Units()

		locked, err := lockAccounts(ctx, accounts, senderAcct.ID, recvAcct.ID)
		if err != nil {
			return err
		}
		if locked[senderAcct.ID].Frozen || locked[recvAcct.ID].Frozen {
			return account.ErrAccountFrozen
		}

		for id, delta := range deltas {
			balance := locked[id].Balance + delta
			if balance < 0 {
				return account.ErrInsufficientFunds
			}
			if err := accounts.Update(ctx, id, dto.AccountUpdate{Balance: &balance}); err != nil {
				return err
			}
		}

		txID := uuid.New()
		if err := txs.Create(ctx, dto.TransactionCreate{
			ID:         txID,
			SenderID:   senderAcct.ID,
			ReceiverID: recvAcct.ID,
			Amount:     in.Amount.Units(),
			Instrument: string(in.Instrument),
		}); err != nil {
			return err
		}
		row, err := txs.Get(ctx, txID)
		if err != nil {
			return err
		}
		created = mapTransaction(row)
		return nil
	})
	if err != nil {
		return nil, s.surface(logger, "transfer", err)
	}
	logger.Info("transfer committed", "transactionID", created.ID)
	return created, nil
}

// Rollback reverses a committed, not-yet-rolled-back transaction. The
// original row is flagged and a compensating row is appended, so history
// stays append-only. A second rollback of the same transaction fails on
// the flag guard with no balance effect.
func (s *Service) Rollback(ctx context.Context, transactionID uuid.UUID) error {
	logger := s.logger.With("transactionID", transactionID)

	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		cards, err := uow.CardRepository()
		if err != nil {
			return err
		}
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}

		row, err := txs.Get(ctx, transactionID)
		if err != nil {
			return err
		}
		if row.RolledBack {
			return ledger.ErrAlreadyRolledBack
		}
		if row.ReversesID != nil {
			// Reversal rows are terminal; rolling one back would double-pay.
			return ledger.ErrAlreadyRolledBack
		}

		// Card row first, then the account rows, keeping the lock order of
		// the transfer and billing paths.
		if row.Instrument == string(ledger.CreditCard) {
			senderAcct, err := accounts.Get(ctx, row.SenderID)
			if err != nil {
				return err
			}
			cc, err := cards.GetByUserIDForUpdate(ctx, senderAcct.UserID)
			if err != nil {
				return err
			}
			used := cc.Used - row.Amount
			if used < 0 {
				// The card was already settled below this charge; clamp
				// rather than drive usage negative.
				logger.Warn("rollback clamped credit usage at zero",
					"cardID", cc.ID, "used", cc.Used, "amount", row.Amount)
				used = 0
			}
			if err := cards.Update(ctx, cc.ID, dto.CardUpdate{Used: &used}); err != nil {
				return err
			}
		}

		locked, err := lockAccounts(ctx, accounts, row.SenderID, row.ReceiverID)
		if err != nil {
			return err
		}

		// Undo the transfer's balance movement exactly. A debit transfer
		// moved sender to receiver. A credit transfer only credited the
		// receiver with the debit landing on the card, so a CC self
		// transfer gives the credited amount back while a DC self transfer
		// moved nothing and reverses nothing.
		deltas := map[uuid.UUID]int64{}
		switch {
		case row.SenderID != row.ReceiverID:
			deltas[row.SenderID] += row.Amount
			deltas[row.ReceiverID] -= row.Amount
		case row.Instrument == string(ledger.CreditCard):
			deltas[row.ReceiverID] -= row.Amount
		}

		if locked[row.ReceiverID].Balance+deltas[row.ReceiverID] < 0 {
			return ledger.ErrReceiverBalanceInsufficient
		}

		for id, delta := range deltas {
			balance := locked[id].Balance + delta
			if balance < 0 {
				return ledger.ErrReceiverBalanceInsufficient
			}
			if err := accounts.Update(ctx, id, dto.AccountUpdate{Balance: &balance}); err != nil {
				return err
			}
		}

		if err := txs.MarkRolledBack(ctx, transactionID); err != nil {
			return err
		}
		reverses := transactionID
		return txs.Create(ctx, dto.TransactionCreate{
			ID:         uuid.New(),
			SenderID:   row.ReceiverID,
			ReceiverID: row.SenderID,
			Amount:     row.Amount,
			Instrument: row.Instrument,
			ReversesID: &reverses,
		})
	})
	if err != nil {
		return s.surface(logger, "rollback", err)
	}
	logger.Info("transaction rolled back")
	return nil
}

// History returns the transactions touching an account, newest first.
func (s *Service) History(ctx context.Context, accountID uuid.UUID, filter dto.TransactionFilter) ([]*dto.TransactionRead, error) {
	var rows []*dto.TransactionRead
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		rows, err = txs.ListByAccount(ctx, accountID, filter)
		return err
	})
	return rows, err
}

// ListAll returns every transaction matching the filter, newest first.
// Admin reporting only.
func (s *Service) ListAll(ctx context.Context, filter dto.TransactionFilter) ([]*dto.TransactionRead, error) {
	var rows []*dto.TransactionRead
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		rows, err = txs.List(ctx, filter)
		return err
	})
	return rows, err
}

// Delete removes a transaction row outright. Admin only, and it loses
// audit history; prefer Rollback.
func (s *Service) Delete(ctx context.Context, transactionID uuid.UUID) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		return txs.Delete(ctx, transactionID)
	})
}

// surface separates business failures, which pass through typed, from
// unexpected storage failures, which are logged with their cause and
// replaced by the generic ErrTransactionFailed.
func (s *Service) surface(logger *slog.Logger, op string, err error) error {
	if isBusinessErr(err) {
		logger.Info(op+" rejected", "reason", err)
		return err
	}
	logger.Error(op+" aborted", "error", err)
	return ledger.ErrTransactionFailed
}

func isBusinessErr(err error) bool {
	for _, sentinel := range []error{
		ledger.ErrInvalidAmount,
		ledger.ErrInvalidInstrument,
		ledger.ErrReceiverNotFound,
		ledger.ErrAlreadyRolledBack,
		ledger.ErrReceiverBalanceInsufficient,
		ledger.ErrBusy,
		account.ErrAccountNotFound,
		account.ErrAccountFrozen,
		account.ErrInsufficientFunds,
		card.ErrCardNotFound,
		card.ErrCardFrozen,
		card.ErrCardNotConfirmed,
		card.ErrInsufficientCredit,
		user.ErrUserNotFound,
		user.ErrInvalidMPIN,
		user.ErrUserBanned,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// lockAccounts takes FOR UPDATE locks on the given account ids in
// ascending id order and returns the locked rows. Duplicate ids are locked
// once.
func lockAccounts(ctx context.Context, accounts repository.AccountRepository, ids ...uuid.UUID) (map[uuid.UUID]*dto.AccountRead, error) {
	ordered := make([]uuid.UUID, 0, len(ids))
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			ordered = append(ordered, id)
		}
	}
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if bytes.Compare(ordered[j][:], ordered[i][:]) < 0 {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}
	locked := make(map[uuid.UUID]*dto.AccountRead, len(ordered))
	for _, id := range ordered {
		row, err := accounts.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = row
	}
	return locked, nil
}

func mapTransaction(row *dto.TransactionRead) *ledger.Transaction {
	return &ledger.Transaction{
		ID:         row.ID,
		SenderID:   row.SenderID,
		ReceiverID: row.ReceiverID,
		Amount:     money.FromUnits(row.Amount),
		Instrument: ledger.Instrument(row.Instrument),
		RolledBack: row.RolledBack,
		ReversesID: row.ReversesID,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
