package dto

import (
	"time"

	"github.com/google/uuid"
)

// TransactionCreate is the input for appending one ledger row.
type TransactionCreate struct {
	ID         uuid.UUID
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Amount     int64
	Instrument string
	ReversesID *uuid.UUID
}

// TransactionRead is the read model of a ledger row, joined with the
// counterparty names the history views need.
type TransactionRead struct {
	ID           uuid.UUID
	SenderID     uuid.UUID
	ReceiverID   uuid.UUID
	SenderName   string
	ReceiverName string
	Amount       int64
	Instrument   string
	RolledBack   bool
	ReversesID   *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TransactionFilter narrows history and statistics queries. Zero values
// mean "no constraint".
type TransactionFilter struct {
	Instrument     string
	From           time.Time
	To             time.Time
	RolledBackOnly bool
}
