package dto

import (
	"time"

	"github.com/google/uuid"
)

// CardCreate is the input for a new credit-card application.
type CardCreate struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	CardNumber string
	Expiration string
	CVV        string
	Status     string
	Limit      int64
}

// CardUpdate is a partial update; nil fields are left untouched.
type CardUpdate struct {
	Used   *int64
	Status *string
	Frozen *bool
}

// CardRead is the read model of a credit-card row. Limit and Used are in
// the smallest currency unit.
type CardRead struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	CardNumber string
	Expiration string
	CVV        string
	Status     string
	Frozen     bool
	Limit      int64
	Used       int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
