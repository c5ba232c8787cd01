package user

import (
	"anonboard/internal/domain/user/handler"
	"anonboard/internal/domain/user/repository"
	"anonboard/internal/domain/user/service"
	"anonboard/internal/pkg/middleware"
	"anonboard/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// UserModule 用户模块
type UserModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	// 用户模块优先级最高，因为其他模块可能依赖它
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	userRepo := repository.NewUserRepository(ctx.DB)
	userService := service.NewIdentityService(userRepo)
	userHandler := handler.NewUserHandler(userService)

	// 2. 路由注册
	setupRoutes(ctx.Router, userHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.UserHandler) {
	// 公开路由
	r.POST("/auth/guest", h.GuestLogin)

	// 受保护的路由
	userGroup := r.Group("/users")
	userGroup.Use(middleware.AuthMiddleware())
	{
		userGroup.GET("/me", h.Me)
	}

	admin := r.Group("/admin/users")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("", h.ListUsers)
		admin.POST("/:id/ban", h.BanUser)
		admin.POST("/:id/unban", h.UnbanUser)
		admin.POST("/:id/promote", h.PromoteUser)
		admin.PUT("/:id/type", h.UpdateUserType)
	}
}
