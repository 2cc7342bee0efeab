package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUserNotFound is returned when a user cannot be found.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidMPIN is returned when a supplied MPIN does not match the
	// stored hash.
	ErrInvalidMPIN = errors.New("invalid MPIN")

	// ErrUserBanned is returned when a banned user attempts a ledger
	// operation.
	ErrUserBanned = errors.New("user is banned")
)

// Role distinguishes ordinary customers from back-office administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the owner of an Account and at most one CreditCard. The MPIN,
// a short numeric secret authorizing money movements, is stored only as a
// bcrypt hash.
type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Handle    string // local part of the payment id, e.g. "amir" in amir@zokasta
	MPINHash  []byte
	Role      Role
	Banned    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a User with a freshly hashed MPIN.
func New(name, email, phone, handle, mpin string) (*User, error) {
	hash, err := HashMPIN(mpin)
	if err != nil {
		return nil, err
	}
	return &User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Handle:    handle,
		MPINHash:  hash,
		Role:      RoleUser,
		CreatedAt: time.Now(),
	}, nil
}

// HashMPIN derives the stored bcrypt hash for an MPIN.
func HashMPIN(mpin string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(mpin), bcrypt.DefaultCost)
}

// CheckMPIN compares a candidate MPIN against the stored hash.
// It returns ErrInvalidMPIN on mismatch.
func (u *User) CheckMPIN(mpin string) error {
	if err := bcrypt.CompareHashAndPassword(u.MPINHash, []byte(mpin)); err != nil {
		return ErrInvalidMPIN
	}
	return nil
}
