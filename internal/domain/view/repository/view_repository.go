package repository

import (
	"context"

	"anonboard/internal/domain/view/model"
	"anonboard/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ViewRepository interface {
	// InsertIfAbsent 依赖 (viewer_id, post_id) 唯一约束，返回是否插入了新记录
	InsertIfAbsent(ctx context.Context, viewerID, postID string) (bool, error)
}

type viewRepository struct {
	db *gorm.DB
}

func NewViewRepository(db *gorm.DB) ViewRepository {
	return &viewRepository{db: db}
}

func (r *viewRepository) InsertIfAbsent(ctx context.Context, viewerID, postID string) (bool, error) {
	v := &model.PostView{ViewerID: viewerID, PostID: postID}
	// INSERT ... ON CONFLICT (viewer_id, post_id) DO NOTHING
	res := database.Conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "viewer_id"}, {Name: "post_id"}},
		DoNothing: true,
	}).Create(v)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
