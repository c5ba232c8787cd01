package service

import (
	"context"

	"anonboard/internal/domain/view/repository"
	"anonboard/internal/pkg/counter"
	"anonboard/pkg/database"
	"anonboard/pkg/logger"
	"anonboard/pkg/metrics"

	"go.uber.org/zap"
)

// ViewLedger 每个用户对每个帖子只计一次浏览
type ViewLedger interface {
	// RecordViewIfNew 本次调用新增了浏览记录并使浏览数 +1 时返回 true
	RecordViewIfNew(ctx context.Context, viewerID, postID string) (bool, error)
}

type viewLedger struct {
	repo    repository.ViewRepository
	counter counter.Propagator
	tx      database.Transactor
}

func NewViewLedger(repo repository.ViewRepository, c counter.Propagator, tx database.Transactor) ViewLedger {
	return &viewLedger{repo: repo, counter: c, tx: tx}
}

func (l *viewLedger) RecordViewIfNew(ctx context.Context, viewerID, postID string) (bool, error) {
	if viewerID == "" {
		return false, nil
	}

	var recorded bool
	// 插入与计数在同一事务内，计数失败时浏览记录一并回滚
	err := l.tx.Do(ctx, func(ctx context.Context) error {
		inserted, err := l.repo.InsertIfAbsent(ctx, viewerID, postID)
		if err != nil || !inserted {
			return err
		}
		if err := l.counter.Increment(ctx, counter.PostViewCount, postID, 1); err != nil {
			return err
		}
		recorded = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if recorded {
		metrics.GetGlobalCollector().RecordView()
		logger.Log.Debug("unique view recorded", zap.String("post_id", postID), zap.String("viewer_id", viewerID))
	}
	return recorded, nil
}
