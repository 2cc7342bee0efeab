package account

import (
	"time"

	"github.com/google/uuid"
)

// Account represents an account record in the database. The unique index
// on UserID enforces one account per user at the storage level.
type Account struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID        uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	AccountNumber string    `gorm:"type:varchar(20);uniqueIndex"`
	DebitCard     string    `gorm:"type:varchar(19);uniqueIndex"`
	PaymentID     string    `gorm:"type:varchar(64);uniqueIndex"`
	Balance       int64     `gorm:"not null;default:0"`
	Frozen        bool      `gorm:"not null;default:false"`
	CVV           string    `gorm:"type:varchar(4)"`
	Expiration    string    `gorm:"type:varchar(5)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}
