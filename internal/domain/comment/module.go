package comment

import (
	"anonboard/internal/domain/comment/handler"
	"anonboard/internal/domain/comment/repository"
	"anonboard/internal/domain/comment/service"
	postrepo "anonboard/internal/domain/post/repository"
	userrepo "anonboard/internal/domain/user/repository"
	userservice "anonboard/internal/domain/user/service"
	voterepo "anonboard/internal/domain/vote/repository"
	"anonboard/internal/pkg/middleware"
	"anonboard/internal/pkg/mutability"
	"anonboard/internal/pkg/registry"
)

// CommentModule 评论模块
type CommentModule struct{}

func init() {
	registry.Register(&CommentModule{})
}

func (m *CommentModule) Name() string {
	return "comment"
}

func (m *CommentModule) Priority() int {
	return 20
}

// NewService 组装评论服务，供其他模块复用
func NewService(ctx *registry.ModuleContext) service.CommentService {
	return service.NewCommentService(
		repository.NewCommentRepository(ctx.DB),
		postrepo.NewPostRepository(ctx.DB),
		voterepo.NewVoteRepository(ctx.DB),
		userservice.NewIdentityService(userrepo.NewUserRepository(ctx.DB)),
		ctx.Counter,
		ctx.Transactor,
		mutability.NewGuard(ctx.Config.Content.CommentEditWindow),
		ctx.Notifier,
	)
}

func (m *CommentModule) Init(ctx *registry.ModuleContext) error {
	h := handler.NewCommentHandler(NewService(ctx))
	setupRoutes(ctx, h)
	return nil
}

func setupRoutes(ctx *registry.ModuleContext, h *handler.CommentHandler) {
	r := ctx.Router
	rl := ctx.Config.RateLimit
	throttle := middleware.UserThrottle(ctx.Redis, "comment", rl.CommentPerWindow, rl.Window)

	public := r.Group("")
	public.Use(middleware.OptionalAuthMiddleware())
	{
		public.GET("/posts/:id/comments", h.ListComments)
		public.GET("/comments/:id/replies", h.ListReplies)
	}

	auth := r.Group("")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.POST("/posts/:id/comments", throttle, h.CreateComment)
		auth.PUT("/comments/:id", h.EditComment)
		auth.DELETE("/comments/:id", h.DeleteComment)
	}
}
