// Package auth issues and inspects the JWTs that protect the API, and
// handles the signup path that provisions a user with their account.
// OTP delivery and profile management live in external collaborators.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/zokasta/bank/pkg/config"
	"github.com/zokasta/bank/pkg/domain/user"
	"github.com/zokasta/bank/pkg/dto"
	"github.com/zokasta/bank/pkg/repository"
	accountsvc "github.com/zokasta/bank/pkg/service/account"
)

// ErrInvalidToken is returned when JWT claims cannot be read back.
var ErrInvalidToken = errors.New("invalid token")

// Service provides registration and login.
type Service struct {
	uow      repository.UnitOfWork
	accounts *accountsvc.Service
	jwtCfg   *config.Jwt
	logger   *slog.Logger
}

// NewService creates an auth Service.
func NewService(uow repository.UnitOfWork, accounts *accountsvc.Service, jwtCfg *config.Jwt, logger *slog.Logger) *Service {
	return &Service{uow: uow, accounts: accounts, jwtCfg: jwtCfg, logger: logger}
}

// RegisterInput carries a signup request.
type RegisterInput struct {
	Name  string
	Email string
	Phone string
	MPIN  string
}

// RegisterOutput is what signup returns: the stored user and the account
// provisioned for them.
type RegisterOutput struct {
	User    *dto.UserRead
	Account *dto.AccountRead
}

// Register creates the user and provisions their account in one step. The
// payment handle is the local part of the email.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	handle := strings.SplitN(in.Email, "@", 2)[0]

	u, err := user.New(in.Name, in.Email, in.Phone, handle, in.MPIN)
	if err != nil {
		return nil, err
	}

	var created *dto.UserRead
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		if err := users.Create(ctx, dto.UserCreate{
			ID:       u.ID,
			Name:     u.Name,
			Email:    u.Email,
			Phone:    u.Phone,
			Handle:   u.Handle,
			MPINHash: u.MPINHash,
			Role:     string(u.Role),
		}); err != nil {
			return err
		}
		created, err = users.Get(ctx, u.ID)
		return err
	})
	if err != nil {
		s.logger.Error("registration failed", "email", in.Email, "error", err)
		return nil, err
	}

	acct, err := s.accounts.Open(ctx, u.ID, in.Phone, handle)
	if err != nil {
		return nil, err
	}
	return &RegisterOutput{User: created, Account: acct}, nil
}

// Login verifies the MPIN and returns a signed JWT.
func (s *Service) Login(ctx context.Context, email, mpin string) (string, error) {
	var read *dto.UserRead
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		read, err = users.GetByEmail(ctx, email)
		return err
	})
	if err != nil {
		return "", err
	}
	if read.Banned {
		return "", user.ErrUserBanned
	}
	u := user.User{MPINHash: read.MPINHash}
	if err := u.CheckMPIN(mpin); err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": read.ID.String(),
		"role":    read.Role,
		"exp":     time.Now().Add(s.jwtCfg.Expiry).Unix(),
	})
	return token.SignedString([]byte(s.jwtCfg.Secret))
}

// CurrentUserID extracts the authenticated user id from a verified token.
func CurrentUserID(token *jwt.Token) (uuid.UUID, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

// CurrentRole extracts the role claim from a verified token.
func CurrentRole(token *jwt.Token) (user.Role, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	raw, ok := claims["role"].(string)
	if !ok {
		return "", ErrInvalidToken
	}
	return user.Role(raw), nil
}
