package repository

import (
	"context"

	"anonboard/internal/domain/notification/model"
	"anonboard/pkg/database"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, offset, limit int) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return database.Conn(ctx, r.db).Create(n).Error
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, offset, limit int) ([]model.Notification, int64, error) {
	var list []model.Notification
	var total int64

	query := database.Conn(ctx, r.db).Model(&model.Notification{}).Where("recipient_id = ?", recipientID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// MarkRead 只能标记自己的通知，别人的通知视为不存在
func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	res := database.Conn(ctx, r.db).Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true)
	return database.MustAffect(res, "notification not found")
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res := database.Conn(ctx, r.db).Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var n int64
	err := database.Conn(ctx, r.db).Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&n).Error
	return n, err
}
