package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/zokasta/bank/infra/repository/dberr"
	userdomain "github.com/zokasta/bank/pkg/domain/user"
	"github.com/zokasta/bank/pkg/dto"
	"github.com/zokasta/bank/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

// New creates a user repository bound to the given session.
func New(db *gorm.DB) repository.UserRepository {
	return &repo{db: db}
}

func (r *repo) Get(ctx context.Context, id uuid.UUID) (*dto.UserRead, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, dberr.Map(err, userdomain.ErrUserNotFound)
	}
	return mapModelToDTO(&u), nil
}

func (r *repo) GetByEmail(ctx context.Context, email string) (*dto.UserRead, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, dberr.Map(err, userdomain.ErrUserNotFound)
	}
	return mapModelToDTO(&u), nil
}

func (r *repo) Create(ctx context.Context, create dto.UserCreate) error {
	u := User{
		ID:       create.ID,
		Name:     create.Name,
		Email:    create.Email,
		Phone:    create.Phone,
		Handle:   create.Handle,
		MPINHash: create.MPINHash,
		Role:     create.Role,
	}
	return dberr.Map(r.db.WithContext(ctx).Create(&u).Error, userdomain.ErrUserNotFound)
}

func mapModelToDTO(u *User) *dto.UserRead {
	return &dto.UserRead{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Handle:    u.Handle,
		MPINHash:  u.MPINHash,
		Role:      u.Role,
		Banned:    u.Banned,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
