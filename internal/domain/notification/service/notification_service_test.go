package service

import (
	"context"
	"testing"
	"time"

	"anonboard/internal/domain/notification/model"
	usermodel "anonboard/internal/domain/user/model"
	"anonboard/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, offset, limit int) ([]model.Notification, int64, error) {
	args := m.Called(ctx, recipientID, offset, limit)
	return args.Get(0).([]model.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	args := m.Called(ctx, id, recipientID)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

var testWorkers = config.WorkerConfig{Workers: 1, QueueSize: 10, MaxRetry: 0}

func TestNotify(t *testing.T) {
	actor := &usermodel.Requestor{UserID: "actor", DisplayName: "Curious_7KQ2", Avatar: "avatar_03"}

	t.Run("delivers to recipient", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		delivered := make(chan *model.Notification, 1)
		repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			delivered <- args.Get(1).(*model.Notification)
		}).Return(nil)

		s := NewNotificationService(repo, testWorkers)
		s.Start()
		defer s.Stop()

		s.Notify("author", model.KindPostComment, "commented on your post: hello", "/post/p1", actor)

		select {
		case n := <-delivered:
			assert.Equal(t, "author", n.RecipientID)
			assert.Equal(t, model.KindPostComment, n.Type)
			assert.Equal(t, "Curious_7KQ2", n.ActorName)
			assert.Equal(t, "/post/p1", n.Link)
		case <-time.After(time.Second):
			t.Fatal("notification not delivered")
		}
	})

	t.Run("skips self notification", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		s := NewNotificationService(repo, testWorkers)
		s.Start()
		defer s.Stop()

		s.Notify("actor", model.KindCommentReply, "replied to your comment", "/post/p1", actor)
		time.Sleep(20 * time.Millisecond)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestShutdownDeliversQueued(t *testing.T) {
	actor := &usermodel.Requestor{UserID: "actor", DisplayName: "Curious_7KQ2"}
	repo := new(MockNotificationRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	s := NewNotificationService(repo, testWorkers)
	// 先入队再启动，确保关闭时队列非空
	for i := 0; i < 5; i++ {
		s.Notify("author", model.KindPostComment, "commented on your post", "/post/p1", actor)
	}
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Equal(t, 0, s.Shutdown(ctx))
	repo.AssertNumberOfCalls(t, "Create", 5)
}

func TestMarkAllRead(t *testing.T) {
	repo := new(MockNotificationRepository)
	repo.On("MarkAllRead", mock.Anything, "u1").Return(int64(3), nil)

	n, err := NewNotificationService(repo, testWorkers).MarkAllRead(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
