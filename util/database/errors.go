package database

import (
	"context"
	"errors"

	"equiprental/util/apperr"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Err maps a storage error onto the service error codes. Coded errors pass
// through unchanged; anything unrecognised is treated as transient.
func Err(err error, detail string) error {
	if err == nil {
		return nil
	}
	if apperr.Code(err) != "" {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Wrap(apperr.ErrNotFound, err, detail)
	case IsDuplicate(err):
		return apperr.Wrap(apperr.ErrDuplicate, err, detail)
	case errors.Is(err, context.Canceled):
		return err
	}
	return apperr.Wrap(apperr.ErrTransient, err, detail)
}

func IsDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
