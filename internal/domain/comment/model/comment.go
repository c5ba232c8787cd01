package model

import (
	"time"

	baseModel "anonboard/pkg/model"
)

// 评论排序方式
const (
	SortTop    = "top"
	SortLatest = "latest"
)

// Comment 评论，ParentID 为空表示一级评论，只允许一层回复
type Comment struct {
	baseModel.BaseModel
	PostID        string    `gorm:"type:uuid;not null;index" json:"postId"`
	ParentID      *string   `gorm:"type:uuid;index" json:"parentId"`
	AuthorID      string    `gorm:"type:uuid;not null;index" json:"-"`
	AuthorName    string    `gorm:"size:64" json:"authorAnonymousName"`
	AuthorAvatar  string    `gorm:"size:64" json:"authorAvatar"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	VoteCount     int       `gorm:"default:0" json:"voteCount"`
	ReplyCount    int       `gorm:"default:0" json:"replyCount"`
	IsEdited      bool      `gorm:"default:false" json:"isEdited"`
	EditableUntil time.Time `gorm:"not null" json:"editableUntil"`
	IsDeleted     bool      `gorm:"default:false" json:"-"`
}

func (c *Comment) GetAuthorID() string        { return c.AuthorID }
func (c *Comment) GetEditDeadline() time.Time { return c.EditableUntil }

// IsReply 是否为回复
func (c *Comment) IsReply() bool {
	return c.ParentID != nil && *c.ParentID != ""
}

// CommentResponse 带查看者视角字段的评论
type CommentResponse struct {
	*Comment
	UserVote                 *int  `json:"userVote"`
	IsAuthor                 bool  `json:"isAuthor"`
	CanEdit                  bool  `json:"canEdit"`
	EditTimeRemainingSeconds int64 `json:"editTimeRemainingSeconds"`
}
