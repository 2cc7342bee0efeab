// Package initializer builds the application dependency graph at startup.
package initializer

import (
	"context"
	"fmt"

	"github.com/zokasta/bank/infra"
	infra_repository "github.com/zokasta/bank/infra/repository"
	"github.com/zokasta/bank/infra/repository/account"
	"github.com/zokasta/bank/infra/repository/card"
	"github.com/zokasta/bank/infra/repository/transaction"
	"github.com/zokasta/bank/infra/repository/user"
	"github.com/zokasta/bank/pkg/app"
	"github.com/zokasta/bank/pkg/config"
)

// InitializeDependencies initializes all the application dependencies.
func InitializeDependencies(cfg *config.App) (*app.Deps, error) {
	deps := &app.Deps{}
	logger := setupLogger(cfg.Log)
	deps.Logger = logger

	db, err := infra.NewDBConnection(*cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, err
	}

	if err := db.AutoMigrate(
		&user.User{},
		&account.Account{},
		&card.CreditCard{},
		&transaction.Transaction{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	deps.Uow = infra_repository.NewUoW(db, cfg.Ledger.LockTimeout)
	deps.CardNumberIndex = infra_repository.NewCardNumberIndex(db)

	// The settlement account must exist before billing can run.
	if accounts, err := deps.Uow.AccountRepository(); err == nil {
		if _, err := accounts.Get(context.Background(), cfg.Ledger.SettlementAccountID); err != nil {
			logger.Warn("settlement account not found; bill payments will fail until it is created",
				"settlementAccountID", cfg.Ledger.SettlementAccountID)
		}
	}

	return deps, nil
}
