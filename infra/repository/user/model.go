package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user record in the database. The MPIN is stored only
// as a bcrypt hash.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex"`
	Phone     string    `gorm:"type:varchar(20);uniqueIndex"`
	Handle    string    `gorm:"type:varchar(50);uniqueIndex"`
	MPINHash  []byte    `gorm:"column:mpin_hash;not null"`
	Role      string    `gorm:"type:varchar(8);not null;default:'user'"`
	Banned    bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}
