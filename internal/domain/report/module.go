package report

import (
	commentrepo "anonboard/internal/domain/comment/repository"
	postrepo "anonboard/internal/domain/post/repository"
	"anonboard/internal/domain/report/handler"
	"anonboard/internal/domain/report/repository"
	"anonboard/internal/domain/report/service"
	userrepo "anonboard/internal/domain/user/repository"
	userservice "anonboard/internal/domain/user/service"
	"anonboard/internal/pkg/middleware"
	"anonboard/internal/pkg/registry"
)

// ReportModule 用户举报
type ReportModule struct{}

func init() {
	registry.Register(&ReportModule{})
}

func (m *ReportModule) Name() string {
	return "report"
}

func (m *ReportModule) Priority() int {
	return 40
}

// NewRegistry 组装举报服务，供管理模块复用
func NewRegistry(ctx *registry.ModuleContext) service.ReportRegistry {
	return service.NewReportRegistry(
		repository.NewReportRepository(ctx.DB),
		postrepo.NewPostRepository(ctx.DB),
		commentrepo.NewCommentRepository(ctx.DB),
		userservice.NewIdentityService(userrepo.NewUserRepository(ctx.DB)),
	)
}

func (m *ReportModule) Init(ctx *registry.ModuleContext) error {
	h := handler.NewReportHandler(NewRegistry(ctx))

	rl := ctx.Config.RateLimit
	group := ctx.Router.Group("/reports")
	group.Use(middleware.AuthMiddleware(), middleware.UserThrottle(ctx.Redis, "report", rl.ReportPerWindow, rl.Window))
	{
		group.POST("", h.SubmitReport)
	}
	return nil
}
