package service

import (
	"context"
	"time"

	"anonboard/internal/domain/notification/model"
	"anonboard/internal/domain/notification/repository"
	usermodel "anonboard/internal/domain/user/model"
	"anonboard/internal/pkg/config"
	"anonboard/internal/pkg/worker"
	"anonboard/pkg/logger"
	"anonboard/pkg/metrics"

	"go.uber.org/zap"
)

// Notifier 通知投递入口，尽力而为，不返回错误
type Notifier interface {
	Notify(recipientID string, kind model.Kind, message, link string, actor *usermodel.Requestor)
}

type NotificationService interface {
	Notifier
	List(ctx context.Context, userID string, offset, limit int) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	Start()
	Stop()
	Shutdown(ctx context.Context) int
}

type notificationService struct {
	repo repository.NotificationRepository
	pool *worker.WorkerPool[*model.Notification]
}

// 单条通知写库超时
const deliverTimeout = 5 * time.Second

func NewNotificationService(repo repository.NotificationRepository, cfg config.WorkerConfig) NotificationService {
	s := &notificationService{repo: repo}
	s.pool = worker.NewWorkerPool(s.deliver, cfg.Workers, cfg.QueueSize, cfg.MaxRetry).
		OnDrop(func(n *model.Notification, err error) {
			metrics.GetGlobalCollector().RecordNotificationDropped()
			logger.Log.Warn("notification dropped",
				zap.String("recipient_id", n.RecipientID),
				zap.String("type", string(n.Type)),
				zap.Error(err),
			)
		})
	return s
}

func (s *notificationService) Start() { s.pool.Start() }

func (s *notificationService) Stop() { s.pool.Stop() }

// Shutdown 投递完队列中的通知后停止，返回超时放弃的条数
func (s *notificationService) Shutdown(ctx context.Context) int { return s.pool.Shutdown(ctx) }

func (s *notificationService) deliver(ctx context.Context, n *model.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, deliverTimeout)
	defer cancel()
	// 重试时沿用同一个 ID，避免 BeforeCreate 之后重复写入
	err := s.repo.Create(ctx, n)
	metrics.GetGlobalCollector().UpdateNotificationQueue(s.pool.Len())
	return err
}

// Notify 作者本人操作自己的内容时不通知
func (s *notificationService) Notify(recipientID string, kind model.Kind, message, link string, actor *usermodel.Requestor) {
	if recipientID == "" || actor == nil || actor.UserID == recipientID {
		return
	}
	s.pool.AddTask(&model.Notification{
		RecipientID: recipientID,
		Type:        kind,
		Message:     message,
		Link:        link,
		ActorName:   actor.DisplayName,
		ActorAvatar: actor.Avatar,
	})
}

func (s *notificationService) List(ctx context.Context, userID string, offset, limit int) ([]model.Notification, int64, error) {
	return s.repo.ListByRecipient(ctx, userID, offset, limit)
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
