package transaction

import (
	"time"

	"github.com/google/uuid"
)

// Transaction represents one immutable ledger row. Reversals are new rows
// pointing back through ReversesID; nothing is ever updated except the
// one-way rolled_back flag.
type Transaction struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	SenderID   uuid.UUID  `gorm:"type:uuid;index"`
	ReceiverID uuid.UUID  `gorm:"type:uuid;index"`
	Amount     int64      `gorm:"not null"`
	Instrument string     `gorm:"type:varchar(2);not null"`
	RolledBack bool       `gorm:"not null;default:false"`
	ReversesID *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string {
	return "transactions"
}

// row is the join shape the read queries scan into: the ledger row plus
// the counterparty names resolved through accounts and users.
type row struct {
	Transaction
	SenderName   string
	ReceiverName string
}
