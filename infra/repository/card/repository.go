package card

import (
	"context"

	"github.com/google/uuid"
	"github.com/zokasta/bank/infra/repository/dberr"
	carddomain "github.com/zokasta/bank/pkg/domain/card"
	"github.com/zokasta/bank/pkg/dto"
	"github.com/zokasta/bank/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db *gorm.DB
}

// New creates a credit-card repository bound to the given session.
func New(db *gorm.DB) repository.CardRepository {
	return &repo{db: db}
}

func (r *repo) Get(ctx context.Context, id uuid.UUID) (*dto.CardRead, error) {
	var cc CreditCard
	if err := r.db.WithContext(ctx).First(&cc, "id = ?", id).Error; err != nil {
		return nil, dberr.Map(err, carddomain.ErrCardNotFound)
	}
	return mapModelToDTO(&cc), nil
}

func (r *repo) GetByUserID(ctx context.Context, userID uuid.UUID) (*dto.CardRead, error) {
	var cc CreditCard
	if err := r.db.WithContext(ctx).First(&cc, "user_id = ?", userID).Error; err != nil {
		return nil, dberr.Map(err, carddomain.ErrCardNotFound)
	}
	return mapModelToDTO(&cc), nil
}

// GetByUserIDForUpdate takes an exclusive row lock held until the
// surrounding transaction ends.
func (r *repo) GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*dto.CardRead, error) {
	var cc CreditCard
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&cc, "user_id = ?", userID).Error
	if err != nil {
		return nil, dberr.Map(err, carddomain.ErrCardNotFound)
	}
	return mapModelToDTO(&cc), nil
}

func (r *repo) ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&CreditCard{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return false, dberr.Map(err, carddomain.ErrCardNotFound)
	}
	return count > 0, nil
}

func (r *repo) Create(ctx context.Context, create dto.CardCreate) error {
	cc := CreditCard{
		ID:         create.ID,
		UserID:     create.UserID,
		CardNumber: create.CardNumber,
		Expiration: create.Expiration,
		CVV:        create.CVV,
		Status:     create.Status,
		Limit:      create.Limit,
	}
	if err := r.db.WithContext(ctx).Create(&cc).Error; err != nil {
		// The one-card-per-user unique index backstops the existence
		// check under concurrent applications.
		if dberr.IsUniqueViolation(err) {
			return carddomain.ErrCardAlreadyExists
		}
		return dberr.Map(err, carddomain.ErrCardNotFound)
	}
	return nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, update dto.CardUpdate) error {
	updates := make(map[string]any)
	if update.Used != nil {
		updates["used"] = *update.Used
	}
	if update.Status != nil {
		updates["status"] = *update.Status
	}
	if update.Frozen != nil {
		updates["frozen"] = *update.Frozen
	}
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&CreditCard{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return dberr.Map(res.Error, carddomain.ErrCardNotFound)
	}
	if res.RowsAffected == 0 {
		return carddomain.ErrCardNotFound
	}
	return nil
}

func mapModelToDTO(cc *CreditCard) *dto.CardRead {
	return &dto.CardRead{
		ID:         cc.ID,
		UserID:     cc.UserID,
		CardNumber: cc.CardNumber,
		Expiration: cc.Expiration,
		CVV:        cc.CVV,
		Status:     cc.Status,
		Frozen:     cc.Frozen,
		Limit:      cc.Limit,
		Used:       cc.Used,
		CreatedAt:  cc.CreatedAt,
		UpdatedAt:  cc.UpdatedAt,
	}
}
