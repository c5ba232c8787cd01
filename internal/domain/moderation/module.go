package moderation

import (
	"anonboard/internal/domain/comment"
	"anonboard/internal/domain/moderation/handler"
	"anonboard/internal/domain/moderation/repository"
	"anonboard/internal/domain/moderation/service"
	"anonboard/internal/domain/post"
	"anonboard/internal/domain/report"
	"anonboard/internal/pkg/middleware"
	"anonboard/internal/pkg/registry"

	"github.com/jmoiron/sqlx"
)

// ModerationModule 管理后台：删除内容、处理举报、概览
type ModerationModule struct{}

func init() {
	registry.Register(&ModerationModule{})
}

func (m *ModerationModule) Name() string {
	return "moderation"
}

func (m *ModerationModule) Priority() int {
	return 50
}

func (m *ModerationModule) Init(ctx *registry.ModuleContext) error {
	sqlDB, err := ctx.DB.DB()
	if err != nil {
		return err
	}
	// 统计查询走 sqlx，与 gorm 共用连接池
	stats := repository.NewStatsRepository(sqlx.NewDb(sqlDB, "pgx"))

	reports := report.NewRegistry(ctx)
	svc := service.NewModerationService(post.NewService(ctx), comment.NewService(ctx), reports, stats)
	h := handler.NewModerationHandler(svc, reports)

	admin := ctx.Router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/stats", h.Stats)
		admin.DELETE("/posts/:id", h.RemovePost)
		admin.DELETE("/comments/:id", h.RemoveComment)
		admin.GET("/reports", h.ListReports)
		admin.GET("/reports/pending-count", h.PendingCount)
		admin.PUT("/reports/:id", h.ResolveReport)
	}
	return nil
}
