package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Stats 管理后台概览
type Stats struct {
	TotalUsers      int64 `db:"total_users" json:"totalUsers"`
	LivePosts       int64 `db:"live_posts" json:"totalPosts"`
	LiveComments    int64 `db:"live_comments" json:"totalComments"`
	BannedUsers     int64 `db:"banned_users" json:"bannedUsers"`
	PendingReports  int64 `db:"pending_reports" json:"pendingReports"`
	ResolvedReports int64 `db:"resolved_reports" json:"resolvedReports"`
}

type StatsRepository interface {
	Stats(ctx context.Context) (*Stats, error)
}

type statsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) StatsRepository {
	return &statsRepository{db: db}
}

const statsQuery = `
SELECT
	(SELECT count(*) FROM users) AS total_users,
	(SELECT count(*) FROM posts WHERE is_deleted = false) AS live_posts,
	(SELECT count(*) FROM comments WHERE is_deleted = false) AS live_comments,
	(SELECT count(*) FROM users WHERE is_banned = true) AS banned_users,
	(SELECT count(*) FROM reports WHERE status = 'pending') AS pending_reports,
	(SELECT count(*) FROM reports WHERE status = 'resolved') AS resolved_reports`

func (r *statsRepository) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := r.db.GetContext(ctx, &s, statsQuery); err != nil {
		return nil, err
	}
	return &s, nil
}
