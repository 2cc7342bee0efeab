// Package card manages the credit-card lifecycle: application, admin
// confirmation, freezing, and the card number generator shared with account
// provisioning.
package card

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/zokasta/bank/pkg/config"
	"github.com/zokasta/bank/pkg/domain/card"
	"github.com/zokasta/bank/pkg/dto"
	"github.com/zokasta/bank/pkg/repository"
)

// Service provides credit-card business operations.
type Service struct {
	uow    repository.UnitOfWork
	gen    *Generator
	cfg    *config.Ledger
	logger *slog.Logger
}

// NewService creates a card Service.
func NewService(uow repository.UnitOfWork, gen *Generator, cfg *config.Ledger, logger *slog.Logger) *Service {
	return &Service{uow: uow, gen: gen, cfg: cfg, logger: logger}
}

// Apply files a credit-card application for the user. Each user may hold at
// most one card; a second application fails with ErrCardAlreadyExists. The
// card starts in pending status with the configured default limit and
// nothing used.
func (s *Service) Apply(ctx context.Context, userID uuid.UUID) (created *dto.CardRead, err error) {
	logger := s.logger.With("userID", userID)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CardRepository()
		if err != nil {
			return err
		}
		exists, err := repo.ExistsByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if exists {
			return card.ErrCardAlreadyExists
		}
		number, err := s.gen.Generate(ctx)
		if err != nil {
			return err
		}
		id := uuid.New()
		if err := repo.Create(ctx, dto.CardCreate{
			ID:         id,
			UserID:     userID,
			CardNumber: number,
			Expiration: s.gen.Expiration(time.Now()),
			CVV:        s.gen.CVV(),
			Status:     string(card.StatusPending),
			Limit:      s.cfg.DefaultCreditLimit,
		}); err != nil {
			return err
		}
		created, err = repo.Get(ctx, id)
		return err
	})
	if err != nil {
		logger.Error("credit card application failed", "error", err)
		return nil, err
	}
	logger.Info("credit card application created", "cardID", created.ID)
	return created, nil
}

// GetByUser returns the user's card, or card.ErrCardNotFound.
func (s *Service) GetByUser(ctx context.Context, userID uuid.UUID) (*dto.CardRead, error) {
	var read *dto.CardRead
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CardRepository()
		if err != nil {
			return err
		}
		read, err = repo.GetByUserID(ctx, userID)
		return err
	})
	return read, err
}

// SetStatus transitions an application to confirm or rejected. Admin only;
// the transport layer enforces the role.
func (s *Service) SetStatus(ctx context.Context, cardID uuid.UUID, status card.Status) error {
	if !status.Valid() {
		return card.ErrInvalidStatus
	}
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CardRepository()
		if err != nil {
			return err
		}
		if _, err := repo.Get(ctx, cardID); err != nil {
			return err
		}
		st := string(status)
		return repo.Update(ctx, cardID, dto.CardUpdate{Status: &st})
	})
}

// ToggleFreeze flips the freeze flag on a card.
func (s *Service) ToggleFreeze(ctx context.Context, cardID uuid.UUID) (frozen bool, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CardRepository()
		if err != nil {
			return err
		}
		read, err := repo.Get(ctx, cardID)
		if err != nil {
			return err
		}
		frozen = !read.Frozen
		return repo.Update(ctx, cardID, dto.CardUpdate{Frozen: &frozen})
	})
	return frozen, err
}
