package service

import (
	"context"
	"unicode/utf8"

	"anonboard/internal/domain/comment/model"
	"anonboard/internal/domain/comment/repository"
	notifmodel "anonboard/internal/domain/notification/model"
	notifservice "anonboard/internal/domain/notification/service"
	postmodel "anonboard/internal/domain/post/model"
	userservice "anonboard/internal/domain/user/service"
	votemodel "anonboard/internal/domain/vote/model"
	"anonboard/internal/pkg/counter"
	"anonboard/internal/pkg/mutability"
	"anonboard/pkg/database"
	"anonboard/pkg/errs"
	"anonboard/pkg/logger"
	"anonboard/pkg/utils"

	"go.uber.org/zap"
)

// 评论长度限制（按字符）
const (
	ContentMin = 1
	ContentMax = 5000
)

// PostFinder 读取帖子
type PostFinder interface {
	GetByID(ctx context.Context, id string) (*postmodel.Post, error)
}

// VoteLookup 查询查看者对一批目标的投票
type VoteLookup interface {
	FindValues(ctx context.Context, voterID, targetType string, targetIDs []string) (map[string]int, error)
}

type CommentService interface {
	CreateComment(ctx context.Context, postID, authorID, content string, parentID *string) (*model.CommentResponse, error)
	ListComments(ctx context.Context, postID, sort string, offset, limit int, viewerID string) ([]model.CommentResponse, int64, error)
	ListReplies(ctx context.Context, commentID, viewerID string) ([]model.CommentResponse, error)
	EditComment(ctx context.Context, id, requestorID, content string) (*model.CommentResponse, error)
	DeleteComment(ctx context.Context, id, requestorID string) error
	// Remove 管理员删除，不校验作者
	Remove(ctx context.Context, id string) error
}

type commentService struct {
	repo     repository.CommentRepository
	posts    PostFinder
	votes    VoteLookup
	identity userservice.IdentityService
	counter  counter.Propagator
	tx       database.Transactor
	guard    *mutability.Guard
	notifier notifservice.Notifier
}

func NewCommentService(
	repo repository.CommentRepository,
	posts PostFinder,
	votes VoteLookup,
	identity userservice.IdentityService,
	c counter.Propagator,
	tx database.Transactor,
	guard *mutability.Guard,
	notifier notifservice.Notifier,
) CommentService {
	return &commentService{
		repo:     repo,
		posts:    posts,
		votes:    votes,
		identity: identity,
		counter:  c,
		tx:       tx,
		guard:    guard,
		notifier: notifier,
	}
}

func checkContent(content string) error {
	n := utf8.RuneCountInString(content)
	if n < ContentMin || n > ContentMax {
		return errs.Newf(errs.ErrInvalidArgument, "content must be between %d and %d characters", ContentMin, ContentMax)
	}
	return nil
}

func (s *commentService) livePost(ctx context.Context, id string) (*postmodel.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.IsDeleted {
		return nil, errs.NotFound("post not found")
	}
	return post, nil
}

// load 读取未删除的评论
func (s *commentService) load(ctx context.Context, id string) (*model.Comment, error) {
	comment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.IsDeleted {
		return nil, errs.NotFound("comment not found")
	}
	return comment, nil
}

func (s *commentService) CreateComment(ctx context.Context, postID, authorID, content string, parentID *string) (*model.CommentResponse, error) {
	author, err := s.identity.EnsureCanWrite(ctx, authorID)
	if err != nil {
		return nil, err
	}

	content = utils.SanitizeText(content)
	if err := checkContent(content); err != nil {
		return nil, err
	}

	post, err := s.livePost(ctx, postID)
	if err != nil {
		return nil, err
	}

	var parent *model.Comment
	if parentID != nil && *parentID != "" {
		parent, err = s.repo.GetByID(ctx, *parentID)
		if err != nil || parent.IsDeleted {
			return nil, errs.NotFound("parent comment not found")
		}
		if parent.PostID != postID {
			return nil, errs.InvalidArgument("parent comment belongs to another post")
		}
		if parent.IsReply() {
			return nil, errs.Forbidden("only single-level replies are allowed")
		}
	} else {
		parentID = nil
	}

	now := s.guard.Now()
	comment := &model.Comment{
		PostID:        postID,
		ParentID:      parentID,
		AuthorID:      author.UserID,
		AuthorName:    author.DisplayName,
		AuthorAvatar:  author.Avatar,
		Content:       content,
		EditableUntil: s.guard.Deadline(now),
	}
	comment.CreatedAt = now

	// 评论与上级计数同一事务提交
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, comment); err != nil {
			return err
		}
		if parent != nil {
			return s.counter.Increment(ctx, counter.CommentReplyCount, parent.ID, 1)
		}
		return s.counter.Increment(ctx, counter.PostCommentCount, postID, 1)
	})
	if err != nil {
		return nil, err
	}

	if parent != nil {
		s.notifier.Notify(parent.AuthorID, notifmodel.KindCommentReply,
			"replied to your comment", "/post/"+postID, author)
	} else {
		s.notifier.Notify(post.AuthorID, notifmodel.KindPostComment,
			"commented on your post: "+utils.Truncate(post.Title, 30), "/post/"+postID, author)
	}

	logger.Log.Info("comment created",
		zap.String("comment_id", comment.ID),
		zap.String("post_id", postID),
		zap.Bool("reply", parent != nil),
	)
	return s.toResponse(comment, authorID, nil), nil
}

func (s *commentService) ListComments(ctx context.Context, postID, sort string, offset, limit int, viewerID string) ([]model.CommentResponse, int64, error) {
	if _, err := s.livePost(ctx, postID); err != nil {
		return nil, 0, err
	}
	if sort != model.SortTop {
		sort = model.SortLatest
	}
	comments, total, err := s.repo.ListTopLevel(ctx, postID, sort, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	list, err := s.withViewer(ctx, comments, viewerID)
	return list, total, err
}

func (s *commentService) ListReplies(ctx context.Context, commentID, viewerID string) ([]model.CommentResponse, error) {
	if _, err := s.load(ctx, commentID); err != nil {
		return nil, err
	}
	replies, err := s.repo.ListReplies(ctx, commentID)
	if err != nil {
		return nil, err
	}
	return s.withViewer(ctx, replies, viewerID)
}

// withViewer 附加查看者的投票与编辑状态
func (s *commentService) withViewer(ctx context.Context, comments []model.Comment, viewerID string) ([]model.CommentResponse, error) {
	var votes map[string]int
	if viewerID != "" && len(comments) > 0 {
		ids := make([]string, 0, len(comments))
		for _, c := range comments {
			ids = append(ids, c.ID)
		}
		var err error
		votes, err = s.votes.FindValues(ctx, viewerID, votemodel.TargetComment, ids)
		if err != nil {
			return nil, err
		}
	}

	list := make([]model.CommentResponse, 0, len(comments))
	for i := range comments {
		var userVote *int
		if v, ok := votes[comments[i].ID]; ok {
			userVote = &v
		}
		list = append(list, *s.toResponse(&comments[i], viewerID, userVote))
	}
	return list, nil
}

func (s *commentService) EditComment(ctx context.Context, id, requestorID, content string) (*model.CommentResponse, error) {
	if _, err := s.identity.EnsureCanWrite(ctx, requestorID); err != nil {
		return nil, err
	}
	comment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CheckEdit(comment, requestorID); err != nil {
		return nil, err
	}

	content = utils.SanitizeText(content)
	if err := checkContent(content); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}

	comment.Content = content
	comment.IsEdited = true
	return s.toResponse(comment, requestorID, nil), nil
}

func (s *commentService) DeleteComment(ctx context.Context, id, requestorID string) error {
	if _, err := s.identity.EnsureCanWrite(ctx, requestorID); err != nil {
		return err
	}
	comment, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if comment.AuthorID != requestorID {
		return errs.Forbidden("you can only delete your own comments")
	}
	return s.retract(ctx, comment)
}

func (s *commentService) Remove(ctx context.Context, id string) error {
	comment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.retract(ctx, comment)
}

// retract 标记删除并回退上级计数，只有真正完成删除的一方才回退
func (s *commentService) retract(ctx context.Context, comment *model.Comment) error {
	return s.tx.Do(ctx, func(ctx context.Context) error {
		flipped, err := s.repo.MarkDeleted(ctx, comment.ID)
		if err != nil || !flipped {
			return err
		}
		if comment.IsReply() {
			return s.counter.Increment(ctx, counter.CommentReplyCount, *comment.ParentID, -1)
		}
		return s.counter.Increment(ctx, counter.PostCommentCount, comment.PostID, -1)
	})
}

func (s *commentService) toResponse(comment *model.Comment, viewerID string, userVote *int) *model.CommentResponse {
	now := s.guard.Now()
	canEdit := s.guard.CanEdit(comment, viewerID, now)
	var remaining int64
	if canEdit {
		remaining = s.guard.TimeRemaining(comment, now)
	}
	return &model.CommentResponse{
		Comment:                  comment,
		UserVote:                 userVote,
		IsAuthor:                 viewerID != "" && comment.AuthorID == viewerID,
		CanEdit:                  canEdit,
		EditTimeRemainingSeconds: remaining,
	}
}
