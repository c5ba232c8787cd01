package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db := sqlx.NewDb(sqlDB, "pgx")

	t.Run("single round trip", func(t *testing.T) {
		mock.ExpectQuery(`SELECT\s+\(SELECT count\(\*\) FROM users\) AS total_users`).
			WillReturnRows(sqlmock.NewRows([]string{
				"total_users", "live_posts", "live_comments", "banned_users", "pending_reports", "resolved_reports",
			}).AddRow(120, 45, 300, 2, 7, 31))

		stats, err := NewStatsRepository(db).Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Stats{TotalUsers: 120, LivePosts: 45, LiveComments: 300, BannedUsers: 2, PendingReports: 7, ResolvedReports: 31}, *stats)
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("canceling statement due to statement timeout"))

		_, err := NewStatsRepository(db).Stats(context.Background())
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
