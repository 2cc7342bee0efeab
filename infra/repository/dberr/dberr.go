// Package dberr converts storage errors to domain errors so
// infrastructure concerns stay out of the service layer.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/zokasta/bank/pkg/domain/ledger"
	"gorm.io/gorm"
)

// Postgres error codes mapped below.
const (
	pgLockNotAvailable = "55P03"
	pgUniqueViolation  = "23505"
)

// Map converts err to a domain error. A missing row becomes notFound; a
// lock timeout set by the unit of work becomes ledger.ErrBusy. Unmapped
// errors pass through for the service layer to classify.
func Map(err, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
		return ledger.ErrBusy
	}
	return err
}

// IsUniqueViolation reports whether err is a unique-index violation,
// either as gorm classifies it or straight from the driver.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
