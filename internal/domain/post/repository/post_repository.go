package repository

import (
	"context"

	"anonboard/internal/domain/post/model"
	"anonboard/pkg/database"
	"anonboard/pkg/utils"

	"gorm.io/gorm"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	// GetByID 包含已删除的帖子，由调用方判断
	GetByID(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context, q model.ListQuery, offset, limit int) ([]model.Post, int64, error)
	UpdateContent(ctx context.Context, id, content string) error
	// MarkDeleted 仅当帖子尚未删除时置删除标记，返回本次是否真正删除
	MarkDeleted(ctx context.Context, id string) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return database.Conn(ctx, r.db).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, database.Translate(err, "post not found", "")
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, q model.ListQuery, offset, limit int) ([]model.Post, int64, error) {
	var posts []model.Post
	var total int64

	query := database.Conn(ctx, r.db).Model(&model.Post{}).Where("is_deleted = ?", false)
	if q.Tag != "" {
		query = query.Where("? = ANY(tags)", q.Tag)
	}
	if q.AuthorID != "" {
		query = query.Where("author_id = ?", q.AuthorID)
	}
	if q.Keyword != "" {
		pattern := utils.LikePattern(q.Keyword)
		query = query.Where("(title ILIKE ? OR content ILIKE ? OR array_to_string(tags, ' ') ILIKE ?)", pattern, pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if q.Sort == model.SortTrending {
		query = query.Order("view_count desc").Order("share_count desc")
	}
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) UpdateContent(ctx context.Context, id, content string) error {
	res := database.Conn(ctx, r.db).Model(&model.Post{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{"content": content, "is_edited": true})
	return database.MustAffect(res, "post not found")
}

func (r *postRepository) MarkDeleted(ctx context.Context, id string) (bool, error) {
	res := database.Conn(ctx, r.db).Model(&model.Post{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	return res.RowsAffected == 1, res.Error
}
