package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/zokasta/bank/pkg/app"
	ledgerdomain "github.com/zokasta/bank/pkg/domain/ledger"
	"github.com/zokasta/bank/pkg/dto"
	"github.com/zokasta/bank/pkg/middleware"
	"github.com/zokasta/bank/pkg/money"
	ledgersvc "github.com/zokasta/bank/pkg/service/ledger"
)

// TransferInput is the transfer request body. Amount is a decimal string
// like "40.00"; Type selects the funding instrument.
type TransferInput struct {
	Amount string `json:"amount" validate:"required"`
	UpiID  string `json:"upi_id" validate:"required"`
	MPIN   string `json:"mpin" validate:"required,numeric,len=4"`
	Type   string `json:"type" validate:"required,oneof=DC CC dc cc"`
}

// TransactionRoutes registers the transfer and admin ledger endpoints.
func TransactionRoutes(router fiber.Router, a *app.App) {
	jwt := middleware.JwtProtected(a.Config.Jwt)
	router.Post("/transaction", jwt, CreateTransaction(a.LedgerService))
	router.Get("/admin/transactions", jwt, middleware.AdminOnly(), ListTransactions(a.LedgerService))
	router.Post("/admin/transaction/:id/rollback", jwt, middleware.AdminOnly(), RollbackTransaction(a.LedgerService))
	router.Delete("/admin/transaction/:id", jwt, middleware.AdminOnly(), DeleteTransaction(a.LedgerService))
}

// CreateTransaction moves money from the caller to the payment id in the
// request.
func CreateTransaction(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		input, err := BindAndValidate[TransferInput](c)
		if err != nil {
			return nil
		}
		amount, err := money.Parse(input.Amount)
		if err != nil {
			return DomainErrorJSON(c, ledgerdomain.ErrInvalidAmount)
		}
		instrument, err := ledgerdomain.ParseInstrument(input.Type)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		tx, err := svc.Transfer(c.UserContext(), ledgersvc.TransferInput{
			SenderUserID:      userID,
			Amount:            amount,
			ReceiverPaymentID: input.UpiID,
			MPIN:              input.MPIN,
			Instrument:        instrument,
		})
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Transaction completed", fiber.Map{
			"transaction_id": tx.ID,
			"amount":         tx.Amount.String(),
			"type":           tx.Instrument,
		})
	}
}

// ListTransactions returns every ledger row, optionally filtered by
// instrument (?type=) or rolled-back rows only (?rolled_back=true).
func ListTransactions(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.ListAll(c.UserContext(), dto.TransactionFilter{
			Instrument:     c.Query("type"),
			RolledBackOnly: c.QueryBool("rolled_back"),
		})
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Transactions", rows)
	}
}

// RollbackTransaction reverses a committed transaction. Admin only.
func RollbackTransaction(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid transaction id", err.Error())
		}
		if err := svc.Rollback(c.UserContext(), id); err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Transaction rolled back", nil)
	}
}

// DeleteTransaction removes a ledger row outright. Admin only.
func DeleteTransaction(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid transaction id", err.Error())
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Transaction deleted", nil)
	}
}
