package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zokasta/bank/pkg/app"
	authsvc "github.com/zokasta/bank/pkg/service/auth"
)

// RegisterInput is the signup request body.
type RegisterInput struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,numeric,min=10,max=15"`
	MPIN  string `json:"mpin" validate:"required,numeric,len=4"`
}

// LoginInput is the login request body.
type LoginInput struct {
	Email string `json:"email" validate:"required,email"`
	MPIN  string `json:"mpin" validate:"required,numeric,len=4"`
}

// AuthRoutes registers the public auth endpoints.
func AuthRoutes(router fiber.Router, a *app.App) {
	router.Post("/register", Register(a.AuthService))
	router.Post("/login", Login(a.AuthService))
}

// Register creates the user and the account provisioned with them.
func Register(svc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := BindAndValidate[RegisterInput](c)
		if err != nil {
			return nil
		}
		out, err := svc.Register(c.UserContext(), authsvc.RegisterInput{
			Name:  input.Name,
			Email: input.Email,
			Phone: input.Phone,
			MPIN:  input.MPIN,
		})
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Account created", fiber.Map{
			"user_id":        out.User.ID,
			"account_number": out.Account.AccountNumber,
			"payment_id":     out.Account.PaymentID,
			"debit_card":     out.Account.DebitCard,
			"expiration":     out.Account.Expiration,
		})
	}
}

// Login authenticates and returns a JWT.
func Login(svc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := BindAndValidate[LoginInput](c)
		if err != nil {
			return nil
		}
		token, err := svc.Login(c.UserContext(), input.Email, input.MPIN)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Success login", fiber.Map{"token": token})
	}
}
