package model

import (
	baseModel "anonboard/pkg/model"
)

// Kind 通知类型
type Kind string

const (
	KindPostComment  Kind = "POST_COMMENT"
	KindCommentReply Kind = "COMMENT_REPLY"
	KindSystem       Kind = "SYSTEM"
)

// Notification 站内通知，客户端轮询拉取
type Notification struct {
	baseModel.BaseModel
	RecipientID string `gorm:"type:uuid;index:idx_notifications_recipient_created,priority:1;not null" json:"recipientId"`
	Type        Kind   `gorm:"size:32;not null" json:"type"`
	Message     string `gorm:"size:255;not null" json:"message"`
	Link        string `gorm:"size:255" json:"link"`
	ActorName   string `gorm:"size:64" json:"actorAnonymousName"`
	ActorAvatar string `gorm:"size:64" json:"actorAvatar"`
	IsRead      bool   `gorm:"default:false" json:"isRead"`
}
