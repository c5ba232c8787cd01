package service

import (
	"context"

	"anonboard/internal/domain/moderation/repository"
	reportmodel "anonboard/internal/domain/report/model"
	"anonboard/pkg/errs"
	"anonboard/pkg/logger"
	"anonboard/pkg/metrics"

	"go.uber.org/zap"
)

// Remover 管理员删除内容：标记删除并修正上级计数，重复删除不重复修正
type Remover interface {
	Remove(ctx context.Context, id string) error
}

// ReportResolver 批量处理目标上的待处理举报
type ReportResolver interface {
	ResolvePendingForTarget(ctx context.Context, targetType, targetID, adminID string) (int64, error)
}

type ModerationService interface {
	// RemoveContent 删除帖子或评论，并处理相关举报
	RemoveContent(ctx context.Context, targetType, targetID, adminID string) error
	Stats(ctx context.Context) (*repository.Stats, error)
}

type moderationService struct {
	posts    Remover
	comments Remover
	reports  ReportResolver
	stats    repository.StatsRepository
}

func NewModerationService(posts, comments Remover, reports ReportResolver, stats repository.StatsRepository) ModerationService {
	return &moderationService{posts: posts, comments: comments, reports: reports, stats: stats}
}

func (s *moderationService) RemoveContent(ctx context.Context, targetType, targetID, adminID string) error {
	var remover Remover
	switch targetType {
	case reportmodel.TargetPost:
		remover = s.posts
	case reportmodel.TargetComment:
		remover = s.comments
	default:
		return errs.InvalidArgument("target type must be POST or COMMENT")
	}

	// 先隐藏内容，再处理举报；举报处理失败时内容已隐藏，重试是安全的
	if err := remover.Remove(ctx, targetID); err != nil {
		return err
	}

	resolved, err := s.reports.ResolvePendingForTarget(ctx, targetType, targetID, adminID)
	if err != nil {
		logger.Log.Error("resolve reports after removal failed",
			zap.String("target_type", targetType),
			zap.String("target_id", targetID),
			zap.Error(err),
		)
		return err
	}

	metrics.GetGlobalCollector().RecordRemoval(targetType)
	logger.Log.Info("content removed by admin",
		zap.String("target_type", targetType),
		zap.String("target_id", targetID),
		zap.String("admin_id", adminID),
		zap.Int64("reports_resolved", resolved),
	)
	return nil
}

func (s *moderationService) Stats(ctx context.Context) (*repository.Stats, error) {
	return s.stats.Stats(ctx)
}
