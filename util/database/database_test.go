package database

import (
	"context"
	"errors"
	"testing"

	"equiprental/model"
	"equiprental/util/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestErrMapping(t *testing.T) {
	require.NoError(t, Err(nil, "x"))
	require.Equal(t, apperr.ErrNotFound, apperr.Code(Err(gorm.ErrRecordNotFound, "quote")))
	require.Equal(t, apperr.ErrDuplicate, apperr.Code(Err(gorm.ErrDuplicatedKey, "user")))
	require.Equal(t, apperr.ErrDuplicate, apperr.Code(Err(&pgconn.PgError{Code: pgerrcode.UniqueViolation}, "user")))
	require.Equal(t, apperr.ErrTransient, apperr.Code(Err(errors.New("conn reset"), "quote")))

	coded := apperr.New(apperr.ErrEmptyQuote)
	require.Equal(t, coded, Err(coded, "x"))
}

func TestOpenMemoryMigrates(t *testing.T) {
	db, err := OpenMemory(uuid.NewString())
	require.NoError(t, err)

	require.True(t, db.Migrator().HasTable(&model.Equipment{}))
	require.True(t, db.Migrator().HasTable(&model.Quote{}))
	require.True(t, db.Migrator().HasTable(&model.ReservationItem{}))

	u := model.User{Name: "a", Email: "a@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)
	dup := model.User{Name: "b", Email: "a@example.com", PasswordHash: "x"}
	require.True(t, IsDuplicate(db.Create(&dup).Error))
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), "oracle", "")
	require.Error(t, err)
}
