package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/zokasta/bank/infra/repository/dberr"
	accountdomain "github.com/zokasta/bank/pkg/domain/account"
	"github.com/zokasta/bank/pkg/dto"
	"github.com/zokasta/bank/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db *gorm.DB
}

// New creates an account repository bound to the given session.
func New(db *gorm.DB) repository.AccountRepository {
	return &repo{db: db}
}

func (r *repo) Get(ctx context.Context, id uuid.UUID) (*dto.AccountRead, error) {
	var acct Account
	if err := r.db.WithContext(ctx).First(&acct, "id = ?", id).Error; err != nil {
		return nil, dberr.Map(err, accountdomain.ErrAccountNotFound)
	}
	return mapModelToDTO(&acct), nil
}

// GetForUpdate takes an exclusive row lock held until the surrounding
// transaction ends.
func (r *repo) GetForUpdate(ctx context.Context, id uuid.UUID) (*dto.AccountRead, error) {
	var acct Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&acct, "id = ?", id).Error
	if err != nil {
		return nil, dberr.Map(err, accountdomain.ErrAccountNotFound)
	}
	return mapModelToDTO(&acct), nil
}

func (r *repo) GetByUserID(ctx context.Context, userID uuid.UUID) (*dto.AccountRead, error) {
	var acct Account
	if err := r.db.WithContext(ctx).First(&acct, "user_id = ?", userID).Error; err != nil {
		return nil, dberr.Map(err, accountdomain.ErrAccountNotFound)
	}
	return mapModelToDTO(&acct), nil
}

func (r *repo) GetByPaymentID(ctx context.Context, paymentID string) (*dto.AccountRead, error) {
	var acct Account
	if err := r.db.WithContext(ctx).First(&acct, "payment_id = ?", paymentID).Error; err != nil {
		return nil, dberr.Map(err, accountdomain.ErrAccountNotFound)
	}
	return mapModelToDTO(&acct), nil
}

func (r *repo) Create(ctx context.Context, create dto.AccountCreate) error {
	acct := Account{
		ID:            create.ID,
		UserID:        create.UserID,
		AccountNumber: create.AccountNumber,
		DebitCard:     create.DebitCard,
		PaymentID:     create.PaymentID,
		CVV:           create.CVV,
		Expiration:    create.Expiration,
	}
	return dberr.Map(r.db.WithContext(ctx).Create(&acct).Error, accountdomain.ErrAccountNotFound)
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, update dto.AccountUpdate) error {
	updates := make(map[string]any)
	if update.Balance != nil {
		updates["balance"] = *update.Balance
	}
	if update.Frozen != nil {
		updates["frozen"] = *update.Frozen
	}
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&Account{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return dberr.Map(res.Error, accountdomain.ErrAccountNotFound)
	}
	if res.RowsAffected == 0 {
		return accountdomain.ErrAccountNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Account{}, "id = ?", id)
	if res.Error != nil {
		return dberr.Map(res.Error, accountdomain.ErrAccountNotFound)
	}
	if res.RowsAffected == 0 {
		return accountdomain.ErrAccountNotFound
	}
	return nil
}

func mapModelToDTO(acct *Account) *dto.AccountRead {
	return &dto.AccountRead{
		ID:            acct.ID,
		UserID:        acct.UserID,
		AccountNumber: acct.AccountNumber,
		DebitCard:     acct.DebitCard,
		PaymentID:     acct.PaymentID,
		Balance:       acct.Balance,
		Frozen:        acct.Frozen,
		CVV:           acct.CVV,
		Expiration:    acct.Expiration,
		CreatedAt:     acct.CreatedAt,
		UpdatedAt:     acct.UpdatedAt,
	}
}
