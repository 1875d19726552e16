package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/railzwaylabs/pricecalc/internal/apperror"
	"gorm.io/gorm"
)

var ErrDuplicate = apperror.New(apperror.KindConflict, "duplicate", "the record already exists")

// Classify turns a raw store error into an *apperror.Error. Errors that are
// already typed pass through untouched. Unique violations become conflicts.
// Postgres errors outside the retryable classes (constraint, schema and
// syntax errors) are internal; everything else is a retryable store failure.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Wrap(ErrDuplicate, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return apperror.Wrap(ErrDuplicate, err)
		}
		if !IsRetryable(pgErr) {
			return apperror.Wrap(apperror.ErrInternal, err)
		}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return apperror.Wrap(apperror.ErrStore, err)
}

// IsRetryable reports whether a postgres error belongs to a class that is
// worth retrying by the user: connection exceptions, transaction rollbacks,
// insufficient resources and operator intervention.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || len(pgErr.Code) < 2 {
		return apperror.IsKind(err, apperror.KindTransient)
	}
	switch pgErr.Code[:2] {
	case "08", "40", "53", "57":
		return true
	default:
		return false
	}
}
