package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostView 每个 (viewer, post) 只有一条，作为浏览数 +1 的闸门
type PostView struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	ViewerID  string    `gorm:"type:uuid;not null;uniqueIndex:uq_post_views_viewer_post,priority:1" json:"viewerId"`
	PostID    string    `gorm:"type:uuid;not null;uniqueIndex:uq_post_views_viewer_post,priority:2" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (PostView) TableName() string {
	return "post_views"
}

func (v *PostView) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}
