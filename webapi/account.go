package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/zokasta/bank/pkg/app"
	"github.com/zokasta/bank/pkg/middleware"
	accountsvc "github.com/zokasta/bank/pkg/service/account"
)

// AccountRoutes registers the account endpoints.
func AccountRoutes(router fiber.Router, a *app.App) {
	jwt := middleware.JwtProtected(a.Config.Jwt)
	router.Get("/account", jwt, GetAccount(a.AccountService))
	router.Get("/account/balance", jwt, GetBalance(a.AccountService))
	router.Get("/account/transactions", jwt, GetHistory(a.AccountService))
	router.Post("/admin/account/:id/freeze", jwt, middleware.AdminOnly(), FreezeAccount(a.AccountService))
}

// GetAccount returns the caller's account details.
func GetAccount(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		acct, err := svc.GetByUser(c.UserContext(), userID)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Account", fiber.Map{
			"account_number": acct.AccountNumber,
			"payment_id":     acct.PaymentID,
			"debit_card":     acct.DebitCard,
			"expiration":     acct.Expiration,
			"balance":        acct.Balance,
			"is_frozen":      acct.Frozen,
		})
	}
}

// GetBalance returns the caller's current balance.
func GetBalance(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		balance, err := svc.Balance(c.UserContext(), userID)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Balance", fiber.Map{"balance": balance.String()})
	}
}

// GetHistory returns the caller's transaction history, optionally narrowed
// by instrument (?type=DC|CC) and free-text search (?search=).
func GetHistory(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		entries, err := svc.History(c.UserContext(), userID, c.Query("type"), c.Query("search"))
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Transactions", entries)
	}
}

// FreezeAccount toggles the freeze flag on any account. Admin only.
func FreezeAccount(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account id", err.Error())
		}
		frozen, err := svc.ToggleFreeze(c.UserContext(), accountID)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Freeze toggled", fiber.Map{"is_frozen": frozen})
	}
}
