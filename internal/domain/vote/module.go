package vote

import (
	commentrepo "anonboard/internal/domain/comment/repository"
	userrepo "anonboard/internal/domain/user/repository"
	userservice "anonboard/internal/domain/user/service"
	"anonboard/internal/domain/vote/handler"
	"anonboard/internal/domain/vote/repository"
	"anonboard/internal/domain/vote/service"
	"anonboard/internal/pkg/middleware"
	"anonboard/internal/pkg/registry"
)

// VoteModule 评论投票
type VoteModule struct{}

func init() {
	registry.Register(&VoteModule{})
}

func (m *VoteModule) Name() string {
	return "vote"
}

func (m *VoteModule) Priority() int {
	return 30
}

func (m *VoteModule) Init(ctx *registry.ModuleContext) error {
	ledger := service.NewVoteLedger(
		repository.NewVoteRepository(ctx.DB),
		commentrepo.NewCommentRepository(ctx.DB),
		userservice.NewIdentityService(userrepo.NewUserRepository(ctx.DB)),
		ctx.Counter,
		ctx.Transactor,
	)
	h := handler.NewVoteHandler(ledger)

	rl := ctx.Config.RateLimit
	group := ctx.Router.Group("/comments")
	group.Use(middleware.AuthMiddleware(), middleware.UserThrottle(ctx.Redis, "vote", rl.VotePerWindow, rl.Window))
	{
		group.POST("/:id/vote", h.Vote)
		group.DELETE("/:id/vote", h.Unvote)
	}
	return nil
}
