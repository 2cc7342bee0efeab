package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/zokasta/bank/pkg/app"
	carddomain "github.com/zokasta/bank/pkg/domain/card"
	"github.com/zokasta/bank/pkg/middleware"
	billingsvc "github.com/zokasta/bank/pkg/service/billing"
	cardsvc "github.com/zokasta/bank/pkg/service/card"
)

// CardStatusInput sets an application's status.
type CardStatusInput struct {
	Status string `json:"status" validate:"required,oneof=pending confirm rejected"`
}

// PayBillInput authorizes a bill payment.
type PayBillInput struct {
	MPIN string `json:"mpin" validate:"required,numeric,len=4"`
}

// CardRoutes registers the credit-card endpoints.
func CardRoutes(router fiber.Router, a *app.App) {
	jwt := middleware.JwtProtected(a.Config.Jwt)
	router.Post("/credit-card/apply", jwt, ApplyCard(a.CardService))
	router.Get("/credit-card", jwt, GetCard(a.CardService))
	router.Post("/credit-card/pay-bill", jwt, PayBill(a.BillingService))
	router.Post("/admin/credit-card/:id/status", jwt, middleware.AdminOnly(), SetCardStatus(a.CardService))
	router.Post("/admin/credit-card/:id/freeze", jwt, middleware.AdminOnly(), FreezeCard(a.CardService))
}

// ApplyCard files a credit-card application for the caller.
func ApplyCard(svc *cardsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		created, err := svc.Apply(c.UserContext(), userID)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Application submitted", fiber.Map{
			"card_id":    created.ID,
			"status":     created.Status,
			"limit":      created.Limit,
			"expiration": created.Expiration,
		})
	}
}

// GetCard returns the caller's credit card.
func GetCard(svc *cardsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		cc, err := svc.GetByUser(c.UserContext(), userID)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Credit card", fiber.Map{
			"card_id":     cc.ID,
			"card_number": cc.CardNumber,
			"expiration":  cc.Expiration,
			"status":      cc.Status,
			"is_frozen":   cc.Frozen,
			"limit":       cc.Limit,
			"used":        cc.Used,
		})
	}
}

// PayBill settles the caller's outstanding credit-card balance.
func PayBill(svc *billingsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		input, err := BindAndValidate[PayBillInput](c)
		if err != nil {
			return nil
		}
		receipt, err := svc.PayBill(c.UserContext(), userID, input.MPIN)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Bill paid", fiber.Map{
			"paid_amount":       receipt.PaidAmount.String(),
			"remaining_balance": receipt.RemainingBalance.String(),
		})
	}
}

// SetCardStatus confirms or rejects an application. Admin only.
func SetCardStatus(svc *cardsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cardID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid card id", err.Error())
		}
		input, err := BindAndValidate[CardStatusInput](c)
		if err != nil {
			return nil
		}
		if err := svc.SetStatus(c.UserContext(), cardID, carddomain.Status(input.Status)); err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Status updated", fiber.Map{"status": input.Status})
	}
}

// FreezeCard toggles the freeze flag on a card. Admin only.
func FreezeCard(svc *cardsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cardID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid card id", err.Error())
		}
		frozen, err := svc.ToggleFreeze(c.UserContext(), cardID)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Freeze toggled", fiber.Map{"is_frozen": frozen})
	}
}
