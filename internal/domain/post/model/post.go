package model

import (
	"time"

	baseModel "anonboard/pkg/model"

	"github.com/lib/pq"
)

// 列表排序方式
const (
	SortLatest   = "latest"
	SortTrending = "trending"
)

// Post 帖子，计数字段只通过 counter 包做增量更新
type Post struct {
	baseModel.BaseModel
	AuthorID      string         `gorm:"type:uuid;index;not null" json:"-"`
	AuthorName    string         `gorm:"size:64" json:"authorAnonymousName"`
	AuthorAvatar  string         `gorm:"size:64" json:"authorAvatar"`
	Title         string         `gorm:"size:300;not null" json:"title"`
	Content       string         `gorm:"type:text;not null" json:"content"`
	ImageURL      string         `gorm:"size:512" json:"imageUrl,omitempty"`
	Tags          pq.StringArray `gorm:"type:text[]" json:"tags"`
	ViewCount     int            `gorm:"default:0" json:"viewCount"`
	ShareCount    int            `gorm:"default:0" json:"shareCount"`
	CommentCount  int            `gorm:"default:0" json:"commentCount"`
	IsEdited      bool           `gorm:"default:false" json:"isEdited"`
	EditableUntil time.Time      `gorm:"not null" json:"editableUntil"`
	IsDeleted     bool           `gorm:"default:false;index" json:"-"`
}

func (p *Post) GetAuthorID() string        { return p.AuthorID }
func (p *Post) GetEditDeadline() time.Time { return p.EditableUntil }

// Snapshot 举报时保存的内容快照
func (p *Post) Snapshot() string {
	return p.Title + "\n\n" + p.Content
}

// PostResponse 带当前查看者视角字段的帖子
type PostResponse struct {
	*Post
	IsAuthor                 bool  `json:"isAuthor"`
	CanEdit                  bool  `json:"canEdit"`
	EditTimeRemainingSeconds int64 `json:"editTimeRemainingSeconds"`
}

// ListQuery 帖子列表筛选条件
type ListQuery struct {
	Tag      string
	Sort     string
	AuthorID string
	Keyword  string
}
