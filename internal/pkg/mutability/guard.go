package mutability

import (
	"time"

	"anonboard/pkg/errs"
)

// Editable 受编辑时限约束的内容（帖子、评论）
type Editable interface {
	GetAuthorID() string
	GetEditDeadline() time.Time
}

// Guard 计算并校验内容的编辑截止时间
// 截止时间在创建时写入，之后任何操作都不会延长或重置
type Guard struct {
	window time.Duration
	now    func() time.Time
}

// NewGuard 创建编辑时限校验器，window 为发布后可编辑时长
func NewGuard(window time.Duration) *Guard {
	return &Guard{window: window, now: time.Now}
}

// WithClock 替换时钟，便于测试
func (g *Guard) WithClock(now func() time.Time) *Guard {
	return &Guard{window: g.window, now: now}
}

// Now 当前时间（UTC）
func (g *Guard) Now() time.Time {
	return g.now().UTC()
}

// Deadline 创建时间对应的编辑截止时间
func (g *Guard) Deadline(createdAt time.Time) time.Time {
	return createdAt.Add(g.window)
}

// CanEdit 作者本人且在截止时间之前
func (g *Guard) CanEdit(item Editable, requestorID string, now time.Time) bool {
	return requestorID != "" && requestorID == item.GetAuthorID() && now.Before(item.GetEditDeadline())
}

// TimeRemaining 剩余可编辑秒数，不小于 0
func (g *Guard) TimeRemaining(item Editable, now time.Time) int64 {
	left := item.GetEditDeadline().Sub(now)
	if left <= 0 {
		return 0
	}
	return int64(left / time.Second)
}

// CheckEdit 在当前时间校验编辑权限
func (g *Guard) CheckEdit(item Editable, requestorID string) error {
	if requestorID != item.GetAuthorID() {
		return errs.Forbidden("only the author can edit this content")
	}
	if !g.CanEdit(item, requestorID, g.Now()) {
		return errs.Forbidden("edit window has expired")
	}
	return nil
}
