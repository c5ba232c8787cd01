package database

import (
	"errors"
	"fmt"
	"testing"

	"anonboard/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	t.Run("record not found", func(t *testing.T) {
		err := Translate(gorm.ErrRecordNotFound, "post not found", "")
		assert.True(t, errors.Is(err, errs.ErrNotFound))
		assert.Equal(t, "post not found", err.Error())
	})

	t.Run("unique violation from pgx", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_reports_reporter_target"}
		err := Translate(fmt.Errorf("insert: %w", pgErr), "", "already reported")
		assert.True(t, errors.Is(err, errs.ErrAlreadyExists))
	})

	t.Run("malformed uuid is not found", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}
		err := Translate(fmt.Errorf("select: %w", pgErr), "comment not found", "")
		assert.True(t, errors.Is(err, errs.ErrNotFound))
		assert.Equal(t, "comment not found", err.Error())
	})

	t.Run("other pg error passes through", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "40001"}
		err := Translate(pgErr, "", "")
		assert.Nil(t, errs.Kind(err))
	})

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, Translate(nil, "", ""))
	})
}

func TestMustAffect(t *testing.T) {
	t.Run("no rows", func(t *testing.T) {
		err := MustAffect(&gorm.DB{RowsAffected: 0}, "report not found")
		assert.True(t, errors.Is(err, errs.ErrNotFound))
	})

	t.Run("malformed uuid", func(t *testing.T) {
		err := MustAffect(&gorm.DB{Error: &pgconn.PgError{Code: "22P02"}}, "report not found")
		assert.True(t, errors.Is(err, errs.ErrNotFound))
	})

	t.Run("other errors pass through", func(t *testing.T) {
		boom := errors.New("connection reset")
		assert.Equal(t, boom, MustAffect(&gorm.DB{Error: boom}, "report not found"))
	})

	t.Run("hit", func(t *testing.T) {
		assert.NoError(t, MustAffect(&gorm.DB{RowsAffected: 1}, "report not found"))
	})
}
