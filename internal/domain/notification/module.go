package notification

import (
	"errors"

	"anonboard/internal/domain/notification/handler"
	"anonboard/internal/domain/notification/service"
	"anonboard/internal/pkg/middleware"
	"anonboard/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// NotificationModule 通知模块，投递服务由 main 创建并放入 ModuleContext
type NotificationModule struct{}

func init() {
	registry.Register(&NotificationModule{})
}

func (m *NotificationModule) Name() string {
	return "notification"
}

func (m *NotificationModule) Priority() int {
	return 5
}

func (m *NotificationModule) Init(ctx *registry.ModuleContext) error {
	s, ok := ctx.Notifier.(service.NotificationService)
	if !ok {
		return errors.New("notification service is not configured")
	}
	setupRoutes(ctx.Router, handler.NewNotificationHandler(s))
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.NotificationHandler) {
	g := r.Group("/notifications")
	g.Use(middleware.AuthMiddleware())
	{
		g.GET("", h.List)
		g.GET("/unread-count", h.UnreadCount)
		g.PUT("/:id/read", h.MarkRead)
		g.PUT("/read-all", h.MarkAllRead)
	}
}
