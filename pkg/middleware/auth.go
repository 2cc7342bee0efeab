// Package middleware provides the auth middleware shared by the routes.
package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/zokasta/bank/pkg/config"
	"github.com/zokasta/bank/pkg/domain/user"
	"github.com/zokasta/bank/pkg/service/auth"
)

// JwtProtected rejects requests without a valid bearer token. The verified
// token lands in c.Locals("user") for the handlers.
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{Key: []byte(cfg.Secret)},
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT"})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT"})
}

// AdminOnly allows only tokens carrying the admin role. Must run after
// JwtProtected.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"status": "error", "message": "Missing token"})
		}
		role, err := auth.CurrentRole(token)
		if err != nil || role != user.RoleAdmin {
			return c.Status(fiber.StatusForbidden).
				JSON(fiber.Map{"status": "error", "message": "Admin access required"})
		}
		return c.Next()
	}
}

// CurrentUserID extracts the authenticated user id set by JwtProtected.
func CurrentUserID(c *fiber.Ctx) (id uuid.UUID, err error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, auth.ErrInvalidToken
	}
	return auth.CurrentUserID(token)
}
