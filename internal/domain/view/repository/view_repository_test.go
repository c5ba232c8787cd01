package repository

import (
	"context"
	"regexp"
	"testing"

	"anonboard/pkg/database/dbtest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestInsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	insert := regexp.QuoteMeta(`INSERT INTO "post_views"`) + `.*` + regexp.QuoteMeta(`ON CONFLICT ("viewer_id","post_id") DO NOTHING`)

	t.Run("first view inserts", func(t *testing.T) {
		db, mock := dbtest.NewMockDB(t)
		mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := NewViewRepository(db).InsertIfAbsent(ctx, "u1", "p1")
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("repeat view hits the unique constraint", func(t *testing.T) {
		db, mock := dbtest.NewMockDB(t)
		mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := NewViewRepository(db).InsertIfAbsent(ctx, "u1", "p1")
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}
