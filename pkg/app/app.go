// Package app assembles the services from their shared dependencies.
package app

import (
	"log/slog"

	"github.com/zokasta/bank/pkg/config"
	"github.com/zokasta/bank/pkg/repository"
	accountsvc "github.com/zokasta/bank/pkg/service/account"
	authsvc "github.com/zokasta/bank/pkg/service/auth"
	billingsvc "github.com/zokasta/bank/pkg/service/billing"
	cardsvc "github.com/zokasta/bank/pkg/service/card"
	ledgersvc "github.com/zokasta/bank/pkg/service/ledger"
	statssvc "github.com/zokasta/bank/pkg/service/stats"
)

// Deps contains the shared dependencies the services are built from.
type Deps struct {
	Uow             repository.UnitOfWork
	CardNumberIndex repository.CardNumberIndex
	Logger          *slog.Logger
}

// App holds the wired service layer.
type App struct {
	Deps   *Deps
	Config *config.App

	AuthService    *authsvc.Service
	AccountService *accountsvc.Service
	CardService    *cardsvc.Service
	LedgerService  *ledgersvc.Service
	BillingService *billingsvc.Service
	StatsService   *statssvc.Service
}

// New wires every service from the shared dependencies.
func New(deps *Deps, cfg *config.App) *App {
	gen := cardsvc.NewGenerator(cfg.Ledger, deps.CardNumberIndex, deps.Logger)
	accounts := accountsvc.NewService(deps.Uow, gen, cfg.Ledger, deps.Logger)
	return &App{
		Deps:           deps,
		Config:         cfg,
		AuthService:    authsvc.NewService(deps.Uow, accounts, cfg.Jwt, deps.Logger),
		AccountService: accounts,
		CardService:    cardsvc.NewService(deps.Uow, gen, cfg.Ledger, deps.Logger),
		LedgerService:  ledgersvc.NewService(deps.Uow, cfg.Ledger, deps.Logger),
		BillingService: billingsvc.NewService(deps.Uow, cfg.Ledger, deps.Logger),
		StatsService:   statssvc.NewService(deps.Uow, deps.Logger),
	}
}
