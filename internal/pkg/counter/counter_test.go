package counter

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"anonboard/pkg/database/dbtest"
	"anonboard/pkg/errs"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestIncrement(t *testing.T) {
	ctx := context.Background()

	t.Run("atomic relative update", func(t *testing.T) {
		db, mock := dbtest.NewMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "view_count"=view_count + $1 WHERE id = $2 AND view_count + $3 >= 0`)).
			WithArgs(1, "p1", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewPropagator(db).Increment(ctx, PostViewCount, "p1", 1)
		assert.NoError(t, err)
	})

	t.Run("negative delta floors at zero", func(t *testing.T) {
		db, mock := dbtest.NewMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "comments" SET "reply_count"=reply_count + $1`)).
			WithArgs(-1, "c1", -1).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "comments" SET "reply_count"=GREATEST(reply_count + $1, 0) WHERE id = $2`)).
			WithArgs(-1, "c1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewPropagator(db).Increment(ctx, CommentReplyCount, "c1", -1)
		assert.NoError(t, err)
	})

	t.Run("missing row", func(t *testing.T) {
		db, mock := dbtest.NewMockDB(t)
		mock.ExpectExec(`UPDATE "posts" SET "comment_count"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`GREATEST`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewPropagator(db).Increment(ctx, PostCommentCount, "missing", 2)
		assert.True(t, errors.Is(err, errs.ErrNotFound))
	})

	t.Run("signed tally may go negative", func(t *testing.T) {
		db, mock := dbtest.NewMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "comments" SET "vote_count"=vote_count + $1 WHERE id = $2`)).
			WithArgs(-2, "c1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPropagator(db).Increment(ctx, CommentVoteCount, "c1", -2))
	})

	t.Run("signed tally on missing row", func(t *testing.T) {
		db, mock := dbtest.NewMockDB(t)
		mock.ExpectExec(`UPDATE "comments" SET "vote_count"`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewPropagator(db).Increment(ctx, CommentVoteCount, "missing", 1)
		assert.True(t, errors.Is(err, errs.ErrNotFound))
	})

	t.Run("zero delta is a no-op", func(t *testing.T) {
		db, _ := dbtest.NewMockDB(t)
		assert.NoError(t, NewPropagator(db).Increment(ctx, PostShareCount, "p1", 0))
	})

	t.Run("database error is returned", func(t *testing.T) {
		db, mock := dbtest.NewMockDB(t)
		mock.ExpectExec(`UPDATE "posts"`).WillReturnError(errors.New("connection reset"))

		err := NewPropagator(db).Increment(ctx, PostCommentCount, "p1", 1)
		assert.EqualError(t, err, "connection reset")
	})
}
