// Package dberr translates store errors into apperror values at the
// repository boundary.
package dberr

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"letrus_backend/internals/helpers/apperror"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgSerialization       = "40001"
	pgDeadlock            = "40P01"
	pgQueryCanceled       = "57014"
)

// IsUniqueViolation reports a duplicate key error, with or without
// gorm's TranslateError enabled.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Translate maps err onto the apperror taxonomy. notFound is used for
// gorm.ErrRecordNotFound so callers can name the missing resource.
func Translate(err error, notFound *apperror.Error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.From(err); ok {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if notFound == nil {
			notFound = apperror.ErrNotFound
		}
		return notFound.Wrap(err)
	}
	if IsUniqueViolation(err) {
		return apperror.ErrConflict.Wrap(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return apperror.ErrValidation.With("referenced record does not exist").Wrap(err)
		case pgSerialization, pgDeadlock, pgQueryCanceled:
			return apperror.ErrUnavailable.Wrap(err)
		}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.As(err, &netErr) ||
		pgconn.Timeout(err) {
		return apperror.ErrUnavailable.Wrap(err)
	}
	return err
}
