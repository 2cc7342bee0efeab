package card

import (
	"time"

	"github.com/google/uuid"
)

// CreditCard represents a credit-card record in the database. The unique
// index on UserID enforces one card per user; "limit" is reserved in SQL,
// hence the credit_limit column.
type CreditCard struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	CardNumber string    `gorm:"type:varchar(19);uniqueIndex"`
	Expiration string    `gorm:"type:varchar(5)"`
	CVV        string    `gorm:"type:varchar(4)"`
	Status     string    `gorm:"type:varchar(16);not null;default:'pending'"`
	Frozen     bool      `gorm:"not null;default:false"`
	Limit      int64     `gorm:"column:credit_limit;not null;default:0"`
	Used       int64     `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for the CreditCard model.
func (CreditCard) TableName() string {
	return "credit_cards"
}
