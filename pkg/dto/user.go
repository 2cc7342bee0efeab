package dto

import (
	"time"

	"github.com/google/uuid"
)

// UserCreate is the input for registering a user.
type UserCreate struct {
	ID       uuid.UUID
	Name     string
	Email    string
	Phone    string
	Handle   string
	MPINHash []byte
	Role     string
}

// UserRead is the read model of a user row.
type UserRead struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Handle    string
	MPINHash  []byte
	Role      string
	Banned    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
