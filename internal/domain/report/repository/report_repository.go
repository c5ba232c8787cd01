package repository

import (
	"context"
	"time"

	"anonboard/internal/domain/report/model"
	"anonboard/pkg/database"

	"gorm.io/gorm"
)

type ReportRepository interface {
	// Create 同一用户重复举报同一目标时返回 AlreadyExists
	Create(ctx context.Context, report *model.Report) error
	GetByID(ctx context.Context, id string) (*model.Report, error)
	// List status 为空时返回全部，按创建时间倒序
	List(ctx context.Context, status model.Status, offset, limit int) ([]model.Report, int64, error)
	CountByStatus(ctx context.Context, status model.Status) (int64, error)
	Review(ctx context.Context, id string, status model.Status, reviewerID, notes string, at time.Time) error
	// ResolvePending 把目标上所有待处理举报置为已处理，返回影响行数
	ResolvePending(ctx context.Context, targetType, targetID, reviewerID, notes string, at time.Time) (int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *model.Report) error {
	err := database.Conn(ctx, r.db).Create(report).Error
	return database.Translate(err, "", "you have already reported this content")
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*model.Report, error) {
	var report model.Report
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&report).Error; err != nil {
		return nil, database.Translate(err, "report not found", "")
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, status model.Status, offset, limit int) ([]model.Report, int64, error) {
	var reports []model.Report
	var total int64

	query := database.Conn(ctx, r.db).Model(&model.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *reportRepository) CountByStatus(ctx context.Context, status model.Status) (int64, error) {
	var n int64
	err := database.Conn(ctx, r.db).Model(&model.Report{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

func (r *reportRepository) Review(ctx context.Context, id string, status model.Status, reviewerID, notes string, at time.Time) error {
	res := database.Conn(ctx, r.db).Model(&model.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"reviewer_id":  reviewerID,
			"review_notes": notes,
			"reviewed_at":  at,
		})
	return database.MustAffect(res, "report not found")
}

func (r *reportRepository) ResolvePending(ctx context.Context, targetType, targetID, reviewerID, notes string, at time.Time) (int64, error) {
	res := database.Conn(ctx, r.db).Model(&model.Report{}).
		Where("target_type = ? AND target_id = ? AND status = ?", targetType, targetID, model.StatusPending).
		Updates(map[string]interface{}{
			"status":       model.StatusResolved,
			"reviewer_id":  reviewerID,
			"review_notes": notes,
			"reviewed_at":  at,
		})
	return res.RowsAffected, res.Error
}
