package post

import (
	"anonboard/internal/domain/post/handler"
	"anonboard/internal/domain/post/repository"
	"anonboard/internal/domain/post/service"
	userrepo "anonboard/internal/domain/user/repository"
	userservice "anonboard/internal/domain/user/service"
	viewrepo "anonboard/internal/domain/view/repository"
	viewservice "anonboard/internal/domain/view/service"
	"anonboard/internal/pkg/middleware"
	"anonboard/internal/pkg/mutability"
	"anonboard/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// PostModule 帖子模块
type PostModule struct{}

func init() {
	registry.Register(&PostModule{})
}

func (m *PostModule) Name() string {
	return "post"
}

func (m *PostModule) Priority() int {
	return 10
}

// NewService 组装帖子服务，供其他模块复用
func NewService(ctx *registry.ModuleContext) service.PostService {
	content := ctx.Config.Content
	identity := userservice.NewIdentityService(userrepo.NewUserRepository(ctx.DB))
	views := viewservice.NewViewLedger(viewrepo.NewViewRepository(ctx.DB), ctx.Counter, ctx.Transactor)
	return service.NewPostService(
		repository.NewPostRepository(ctx.DB),
		views,
		identity,
		ctx.Counter,
		ctx.Transactor,
		mutability.NewGuard(content.PostEditWindow),
		ctx.BlobStore,
		service.Limits{MaxTags: content.MaxTags, FreePostLimit: content.FreePostLimit},
	)
}

func (m *PostModule) Init(ctx *registry.ModuleContext) error {
	h := handler.NewPostHandler(NewService(ctx))
	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.PostHandler) {
	public := r.Group("/posts")
	public.Use(middleware.OptionalAuthMiddleware())
	{
		public.GET("", h.ListPosts)
		public.GET("/search", h.SearchPosts)
		public.GET("/:id", h.GetPost)
		public.POST("/:id/share", h.SharePost)
	}

	auth := r.Group("/posts")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.GET("/mine", h.MyPosts)
		auth.POST("", h.CreatePost)
		auth.PUT("/:id", h.EditPost)
		auth.DELETE("/:id", h.DeletePost)
	}
}
