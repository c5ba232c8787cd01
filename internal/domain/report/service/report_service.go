package service

import (
	"context"
	"time"
	"unicode/utf8"

	commentmodel "anonboard/internal/domain/comment/model"
	postmodel "anonboard/internal/domain/post/model"
	"anonboard/internal/domain/report/model"
	"anonboard/internal/domain/report/repository"
	userservice "anonboard/internal/domain/user/service"
	"anonboard/pkg/errs"
	"anonboard/pkg/logger"
	"anonboard/pkg/metrics"
	"anonboard/pkg/utils"

	"go.uber.org/zap"
)

// DescriptionMax 举报说明长度上限
const DescriptionMax = 1000

// PostFinder 读取被举报的帖子
type PostFinder interface {
	GetByID(ctx context.Context, id string) (*postmodel.Post, error)
}

// CommentFinder 读取被举报的评论
type CommentFinder interface {
	GetByID(ctx context.Context, id string) (*commentmodel.Comment, error)
}

// SubmitInput 举报参数
type SubmitInput struct {
	TargetType  string
	TargetID    string
	Reason      model.Reason
	Description string
}

type ReportRegistry interface {
	Submit(ctx context.Context, reporterID string, in SubmitInput) (*model.Report, error)
	ResolveOne(ctx context.Context, reportID, adminID, notes string, status model.Status) (*model.Report, error)
	List(ctx context.Context, status model.Status, offset, limit int) ([]model.Report, int64, error)
	CountPending(ctx context.Context) (int64, error)
	// ResolvePendingForTarget 内容被管理员删除后批量处理其待处理举报
	ResolvePendingForTarget(ctx context.Context, targetType, targetID, adminID string) (int64, error)
}

type reportRegistry struct {
	repo     repository.ReportRepository
	posts    PostFinder
	comments CommentFinder
	identity userservice.IdentityService
	now      func() time.Time
}

func NewReportRegistry(
	repo repository.ReportRepository,
	posts PostFinder,
	comments CommentFinder,
	identity userservice.IdentityService,
) ReportRegistry {
	return &reportRegistry{
		repo:     repo,
		posts:    posts,
		comments: comments,
		identity: identity,
		now:      time.Now,
	}
}

// snapshot 读取目标当前内容与作者名，已删除视为不存在
func (s *reportRegistry) snapshot(ctx context.Context, targetType, targetID string) (string, string, error) {
	switch targetType {
	case model.TargetPost:
		post, err := s.posts.GetByID(ctx, targetID)
		if err != nil {
			return "", "", err
		}
		if post.IsDeleted {
			return "", "", errs.NotFound("post not found")
		}
		return post.Snapshot(), post.AuthorName, nil
	default:
		comment, err := s.comments.GetByID(ctx, targetID)
		if err != nil {
			return "", "", err
		}
		if comment.IsDeleted {
			return "", "", errs.NotFound("comment not found")
		}
		return comment.Content, comment.AuthorName, nil
	}
}

func (s *reportRegistry) Submit(ctx context.Context, reporterID string, in SubmitInput) (*model.Report, error) {
	if _, err := s.identity.EnsureCanWrite(ctx, reporterID); err != nil {
		return nil, err
	}
	if !model.ValidTarget(in.TargetType) {
		return nil, errs.InvalidArgument("target type must be POST or COMMENT")
	}
	if !model.ValidReason(in.Reason) {
		return nil, errs.Newf(errs.ErrInvalidArgument, "unknown reason %q", in.Reason)
	}
	description := utils.SanitizeText(in.Description)
	if utf8.RuneCountInString(description) > DescriptionMax {
		return nil, errs.Newf(errs.ErrInvalidArgument, "description must be at most %d characters", DescriptionMax)
	}

	content, authorName, err := s.snapshot(ctx, in.TargetType, in.TargetID)
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		ReporterID:       reporterID,
		TargetType:       in.TargetType,
		TargetID:         in.TargetID,
		Reason:           in.Reason,
		Description:      description,
		Status:           model.StatusPending,
		ContentSnapshot:  content,
		TargetAuthorName: authorName,
	}
	// 唯一约束保证同一用户对同一目标只有一条
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	metrics.GetGlobalCollector().RecordReport(in.TargetType)
	logger.Log.Info("report submitted",
		zap.String("report_id", report.ID),
		zap.String("target_type", in.TargetType),
		zap.String("target_id", in.TargetID),
		zap.String("reason", string(in.Reason)),
	)
	return report, nil
}

func (s *reportRegistry) ResolveOne(ctx context.Context, reportID, adminID, notes string, status model.Status) (*model.Report, error) {
	if !model.ValidStatus(status) || status == model.StatusPending {
		return nil, errs.InvalidArgument("status must be reviewed, resolved or dismissed")
	}
	report, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	notes = utils.SanitizeText(notes)
	if err := s.repo.Review(ctx, reportID, status, adminID, notes, now); err != nil {
		return nil, err
	}

	report.Status = status
	report.ReviewerID = &adminID
	report.ReviewNotes = notes
	report.ReviewedAt = &now
	return report, nil
}

func (s *reportRegistry) List(ctx context.Context, status model.Status, offset, limit int) ([]model.Report, int64, error) {
	if status != "" && !model.ValidStatus(status) {
		return nil, 0, errs.Newf(errs.ErrInvalidArgument, "unknown status %q", status)
	}
	return s.repo.List(ctx, status, offset, limit)
}

func (s *reportRegistry) CountPending(ctx context.Context) (int64, error) {
	return s.repo.CountByStatus(ctx, model.StatusPending)
}

func (s *reportRegistry) ResolvePendingForTarget(ctx context.Context, targetType, targetID, adminID string) (int64, error) {
	return s.repo.ResolvePending(ctx, targetType, targetID, adminID, model.RemovalNote, s.now().UTC())
}
