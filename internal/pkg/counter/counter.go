package counter

import (
	"context"

	"anonboard/pkg/database"
	"anonboard/pkg/errs"
	"anonboard/pkg/logger"
	"anonboard/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Field 一个可累加的冗余计数字段
type Field struct {
	Table  string
	Column string
	// Signed 允许为负（投票合计），不做下限截断
	Signed bool
}

// 系统中所有冗余计数字段，计数只允许通过这些字段增减
var (
	PostViewCount     = Field{Table: "posts", Column: "view_count"}
	PostShareCount    = Field{Table: "posts", Column: "share_count"}
	PostCommentCount  = Field{Table: "posts", Column: "comment_count"}
	CommentReplyCount = Field{Table: "comments", Column: "reply_count"}
	CommentVoteCount  = Field{Table: "comments", Column: "vote_count", Signed: true}
	UserTotalPosts    = Field{Table: "users", Column: "total_posts"}
)

// Propagator 对单条记录的计数字段做原子增量更新
type Propagator interface {
	// Increment 原子地把 delta 加到 id 对应记录的 f 字段上，非 Signed 字段结果不会小于 0
	Increment(ctx context.Context, f Field, id string, delta int) error
}

type gormPropagator struct {
	db *gorm.DB
}

// NewPropagator 创建基于数据库原子更新的计数器
func NewPropagator(db *gorm.DB) Propagator {
	return &gormPropagator{db: db}
}

func (p *gormPropagator) Increment(ctx context.Context, f Field, id string, delta int) error {
	if delta == 0 {
		return nil
	}
	col := f.Column

	if f.Signed {
		res := database.Conn(ctx, p.db).Table(f.Table).
			Where("id = ?", id).
			UpdateColumn(col, gorm.Expr(col+" + ?", delta))
		return database.MustAffect(res, f.Table+" not found")
	}

	// UPDATE ... SET col = col + delta WHERE id = ? AND col + delta >= 0
	res := database.Conn(ctx, p.db).Table(f.Table).
		Where("id = ? AND "+col+" + ? >= 0", id, delta).
		UpdateColumn(col, gorm.Expr(col+" + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// 条件不满足：记录不存在，或计数已经不一致，此时截断到 0
	res = database.Conn(ctx, p.db).Table(f.Table).
		Where("id = ?", id).
		UpdateColumn(col, gorm.Expr("GREATEST("+col+" + ?, 0)", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFound(f.Table + " not found")
	}

	logger.Log.Warn("counter clamped at zero",
		zap.String("table", f.Table),
		zap.String("field", col),
		zap.String("id", id),
		zap.Int("delta", delta),
	)
	metrics.GetGlobalCollector().RecordCounterClamped(f.Table, col)
	return nil
}
