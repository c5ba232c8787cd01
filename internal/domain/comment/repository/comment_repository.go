package repository

import (
	"context"

	"anonboard/internal/domain/comment/model"
	"anonboard/pkg/database"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	// GetByID 包含已删除的评论，由调用方判断
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	// ListTopLevel 帖子下未删除的一级评论
	ListTopLevel(ctx context.Context, postID, sort string, offset, limit int) ([]model.Comment, int64, error)
	// ListReplies 未删除的回复，按时间正序
	ListReplies(ctx context.Context, parentID string) ([]model.Comment, error)
	UpdateContent(ctx context.Context, id, content string) error
	// MarkDeleted 仅当评论尚未删除时置删除标记，返回本次是否真正删除
	MarkDeleted(ctx context.Context, id string) (bool, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return database.Conn(ctx, r.db).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var comment model.Comment
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, database.Translate(err, "comment not found", "")
	}
	return &comment, nil
}

func (r *commentRepository) ListTopLevel(ctx context.Context, postID, sort string, offset, limit int) ([]model.Comment, int64, error) {
	var comments []model.Comment
	var total int64

	query := database.Conn(ctx, r.db).Model(&model.Comment{}).
		Where("post_id = ? AND parent_id IS NULL AND is_deleted = ?", postID, false)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if sort == model.SortTop {
		query = query.Order("vote_count desc")
	}
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&comments).Error; err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *commentRepository) ListReplies(ctx context.Context, parentID string) ([]model.Comment, error) {
	var replies []model.Comment
	err := database.Conn(ctx, r.db).
		Where("parent_id = ? AND is_deleted = ?", parentID, false).
		Order("created_at asc").
		Find(&replies).Error
	return replies, err
}

func (r *commentRepository) UpdateContent(ctx context.Context, id, content string) error {
	res := database.Conn(ctx, r.db).Model(&model.Comment{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{"content": content, "is_edited": true})
	return database.MustAffect(res, "comment not found")
}

func (r *commentRepository) MarkDeleted(ctx context.Context, id string) (bool, error) {
	res := database.Conn(ctx, r.db).Model(&model.Comment{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	return res.RowsAffected == 1, res.Error
}
