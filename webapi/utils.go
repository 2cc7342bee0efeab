package webapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/zokasta/bank/pkg/domain/account"
	"github.com/zokasta/bank/pkg/domain/card"
	"github.com/zokasta/bank/pkg/domain/ledger"
	"github.com/zokasta/bank/pkg/domain/user"
	"github.com/zokasta/bank/pkg/service/auth"
	"github.com/zokasta/bank/pkg/service/stats"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`     // A URI reference that identifies the problem type
	Title    string `json:"title"`              // Short, human-readable summary
	Status   int    `json:"status"`             // HTTP status code
	Detail   string `json:"detail,omitempty"`   // Human-readable explanation
	Instance string `json:"instance,omitempty"` // URI reference that identifies the specific occurrence
	Errors   any    `json:"errors,omitempty"`   // Optional: additional error details
}

// SuccessResponseJSON writes the standard success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Status: status, Message: message, Data: data})
}

// ErrorResponseJSON returns a response following RFC 9457 Problem Details.
func ErrorResponseJSON(c *fiber.Ctx, status int, title string, detail any) error {
	pd := ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
	}
	if detail != nil {
		if s, ok := detail.(string); ok {
			pd.Detail = s
		} else {
			pd.Errors = detail
		}
	}
	pd.Instance = c.OriginalURL()
	c.Set(fiber.HeaderContentType, "application/problem+json")

	return c.Status(status).JSON(pd)
}

// DomainErrorJSON maps a service error to its status code and writes the
// problem-details body.
func DomainErrorJSON(c *fiber.Ctx, err error) error {
	return ErrorResponseJSON(c, ErrorToStatusCode(err), err.Error(), nil)
}

// ErrorToStatusCode maps domain errors to appropriate HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, account.ErrAccountNotFound),
		errors.Is(err, card.ErrCardNotFound),
		errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, ledger.ErrReceiverNotFound),
		errors.Is(err, ledger.ErrAlreadyRolledBack):
		return fiber.StatusNotFound
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidInstrument),
		errors.Is(err, card.ErrInvalidStatus),
		errors.Is(err, stats.ErrInvalidPeriod):
		return fiber.StatusBadRequest
	case errors.Is(err, user.ErrInvalidMPIN),
		errors.Is(err, auth.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, user.ErrUserBanned),
		errors.Is(err, account.ErrAccountFrozen),
		errors.Is(err, card.ErrCardFrozen),
		errors.Is(err, card.ErrCardNotConfirmed):
		return fiber.StatusForbidden
	case errors.Is(err, account.ErrInsufficientFunds),
		errors.Is(err, card.ErrInsufficientCredit),
		errors.Is(err, card.ErrNoOutstandingBalance),
		errors.Is(err, ledger.ErrReceiverBalanceInsufficient):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, card.ErrCardAlreadyExists),
		errors.Is(err, ledger.ErrBusy):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body and validates it using
// go-playground/validator. On failure it writes the error response and
// returns the error so the handler can bail out.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
		return nil, err
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed", err.Error())
		return nil, err
	}
	return &input, nil
}
