package service

import (
	"context"
	"unicode/utf8"

	"anonboard/internal/domain/post/model"
	"anonboard/internal/domain/post/repository"
	usermodel "anonboard/internal/domain/user/model"
	userservice "anonboard/internal/domain/user/service"
	viewservice "anonboard/internal/domain/view/service"
	"anonboard/internal/pkg/counter"
	"anonboard/internal/pkg/mutability"
	"anonboard/internal/pkg/uploader"
	"anonboard/pkg/database"
	"anonboard/pkg/errs"
	"anonboard/pkg/logger"
	"anonboard/pkg/utils"

	"go.uber.org/zap"
)

// 标题与正文长度限制（按字符）
const (
	TitleMin   = 5
	TitleMax   = 300
	ContentMin = 10
	ContentMax = 10000
)

// Image 随帖子上传的图片
type Image struct {
	Data        []byte
	ContentType string
}

// CreatePostInput 发帖参数
type CreatePostInput struct {
	Title   string
	Content string
	Tags    []string
	Image   *Image
}

type PostService interface {
	CreatePost(ctx context.Context, authorID string, in CreatePostInput) (*model.PostResponse, error)
	GetPost(ctx context.Context, id, viewerID string) (*model.PostResponse, error)
	ListPosts(ctx context.Context, q model.ListQuery, offset, limit int, viewerID string) ([]model.PostResponse, int64, error)
	SharePost(ctx context.Context, id string) error
	EditPost(ctx context.Context, id, requestorID, content string) (*model.PostResponse, error)
	DeletePost(ctx context.Context, id, requestorID string) error
	// Remove 管理员删除，不校验作者
	Remove(ctx context.Context, id string) error
}

// Limits 发帖规则
type Limits struct {
	MaxTags       int
	FreePostLimit int // 免费用户累计发帖上限，0 不限
}

type postService struct {
	repo     repository.PostRepository
	views    viewservice.ViewLedger
	identity userservice.IdentityService
	counter  counter.Propagator
	tx       database.Transactor
	guard    *mutability.Guard
	blobs    uploader.BlobStore
	limits   Limits
}

func NewPostService(
	repo repository.PostRepository,
	views viewservice.ViewLedger,
	identity userservice.IdentityService,
	c counter.Propagator,
	tx database.Transactor,
	guard *mutability.Guard,
	blobs uploader.BlobStore,
	limits Limits,
) PostService {
	return &postService{
		repo:     repo,
		views:    views,
		identity: identity,
		counter:  c,
		tx:       tx,
		guard:    guard,
		blobs:    blobs,
		limits:   limits,
	}
}

func checkLength(field string, s string, min, max int) error {
	n := utf8.RuneCountInString(s)
	if n < min || n > max {
		return errs.Newf(errs.ErrInvalidArgument, "%s must be between %d and %d characters", field, min, max)
	}
	return nil
}

// checkQuota 免费用户累计发帖数达到上限时拒绝
func (s *postService) checkQuota(author *usermodel.Requestor) error {
	if author.PostsRemaining(s.limits.FreePostLimit) == 0 {
		return errs.Newf(errs.ErrForbidden,
			"free users can only create %d posts, upgrade to premium for unlimited posts", s.limits.FreePostLimit)
	}
	return nil
}

func (s *postService) CreatePost(ctx context.Context, authorID string, in CreatePostInput) (*model.PostResponse, error) {
	author, err := s.identity.EnsureCanWrite(ctx, authorID)
	if err != nil {
		return nil, err
	}
	// 上传图片前先粗检一次额度
	if err := s.checkQuota(author); err != nil {
		return nil, err
	}

	title := utils.SanitizeText(in.Title)
	content := utils.SanitizeText(in.Content)
	if err := checkLength("title", title, TitleMin, TitleMax); err != nil {
		return nil, err
	}
	if err := checkLength("content", content, ContentMin, ContentMax); err != nil {
		return nil, err
	}

	var imageURL string
	if in.Image != nil {
		if s.blobs == nil {
			return nil, errs.InvalidArgument("image upload is not enabled")
		}
		imageURL, err = s.blobs.Store(ctx, in.Image.Data, in.Image.ContentType)
		if err != nil {
			return nil, err
		}
	}

	now := s.guard.Now()
	post := &model.Post{
		AuthorID:      author.UserID,
		AuthorName:    author.DisplayName,
		AuthorAvatar:  author.Avatar,
		Title:         title,
		Content:       content,
		ImageURL:      imageURL,
		Tags:          utils.NormalizeTags(in.Tags, s.limits.MaxTags),
		EditableUntil: s.guard.Deadline(now),
	}
	post.CreatedAt = now

	// 锁住作者行，额度检查、建帖与累计计数在同一事务内完成
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		locked, err := s.identity.LockForPosting(ctx, authorID)
		if err != nil {
			return err
		}
		if err := s.checkQuota(locked); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, post); err != nil {
			return err
		}
		return s.counter.Increment(ctx, counter.UserTotalPosts, authorID, 1)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("post created", zap.String("post_id", post.ID), zap.Strings("tags", post.Tags))
	return s.toResponse(post, authorID), nil
}

// load 读取未删除的帖子
func (s *postService) load(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.IsDeleted {
		return nil, errs.NotFound("post not found")
	}
	return post, nil
}

func (s *postService) GetPost(ctx context.Context, id, viewerID string) (*model.PostResponse, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	recorded, err := s.views.RecordViewIfNew(ctx, viewerID, id)
	if err != nil {
		// 浏览计数失败不影响阅读
		logger.Log.Warn("record view failed", zap.String("post_id", id), zap.Error(err))
	}
	if recorded {
		post.ViewCount++
	}
	return s.toResponse(post, viewerID), nil
}

func (s *postService) ListPosts(ctx context.Context, q model.ListQuery, offset, limit int, viewerID string) ([]model.PostResponse, int64, error) {
	q.Tag = utils.NormalizeTag(q.Tag)
	if q.Sort != model.SortTrending {
		q.Sort = model.SortLatest
	}

	posts, total, err := s.repo.List(ctx, q, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	list := make([]model.PostResponse, 0, len(posts))
	for i := range posts {
		list = append(list, *s.toResponse(&posts[i], viewerID))
	}
	return list, total, nil
}

func (s *postService) SharePost(ctx context.Context, id string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	return s.counter.Increment(ctx, counter.PostShareCount, id, 1)
}

func (s *postService) EditPost(ctx context.Context, id, requestorID, content string) (*model.PostResponse, error) {
	if _, err := s.identity.EnsureCanWrite(ctx, requestorID); err != nil {
		return nil, err
	}
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CheckEdit(post, requestorID); err != nil {
		return nil, err
	}

	content = utils.SanitizeText(content)
	if err := checkLength("content", content, ContentMin, ContentMax); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}

	post.Content = content
	post.IsEdited = true
	return s.toResponse(post, requestorID), nil
}

func (s *postService) DeletePost(ctx context.Context, id, requestorID string) error {
	if _, err := s.identity.EnsureCanWrite(ctx, requestorID); err != nil {
		return err
	}
	post, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != requestorID {
		return errs.Forbidden("you can only delete your own posts")
	}
	// 删除不受编辑时限限制
	_, err = s.repo.MarkDeleted(ctx, id)
	return err
}

func (s *postService) Remove(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	// 帖子没有上级聚合，无需修正计数
	_, err := s.repo.MarkDeleted(ctx, id)
	return err
}

func (s *postService) toResponse(post *model.Post, viewerID string) *model.PostResponse {
	now := s.guard.Now()
	canEdit := s.guard.CanEdit(post, viewerID, now)
	var remaining int64
	if canEdit {
		remaining = s.guard.TimeRemaining(post, now)
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	return &model.PostResponse{
		Post:                     post,
		IsAuthor:                 viewerID != "" && post.AuthorID == viewerID,
		CanEdit:                  canEdit,
		EditTimeRemainingSeconds: remaining,
	}
}
