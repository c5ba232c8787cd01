package model

import (
	"time"

	baseModel "anonboard/pkg/model"
)

const (
	RoleUser  = 0
	RoleAdmin = 1
)

// UserType 账号等级，免费用户发帖数受限
type UserType string

const (
	TypeFree    UserType = "FREE"
	TypePremium UserType = "PREMIUM"
)

// ValidUserType 是否为已知等级
func ValidUserType(t UserType) bool {
	return t == TypeFree || t == TypePremium
}

// User 匿名用户，对外只暴露匿名昵称和头像
type User struct {
	baseModel.BaseModel
	AnonymousName string     `gorm:"size:64;uniqueIndex;not null" json:"anonymousName"`
	Avatar        string     `gorm:"size:64;default:'avatar_01'" json:"avatar"`
	Role          int        `gorm:"default:0" json:"role"`
	UserType      UserType   `gorm:"size:16;not null;default:FREE" json:"userType"`
	TotalPosts    int        `gorm:"default:0" json:"totalPosts"` // 累计发帖数，删帖不回退
	IsBanned      bool       `gorm:"default:false" json:"isBanned"`
	BanReason     string     `json:"banReason,omitempty"`
	BannedUntil   *time.Time `json:"bannedUntil,omitempty"` // nil 表示永久封禁
}

// BanExpired 临时封禁是否已到期
func (u *User) BanExpired(now time.Time) bool {
	return u.IsBanned && u.BannedUntil != nil && !now.Before(*u.BannedUntil)
}

// Requestor 一次请求的发起人
type Requestor struct {
	UserID      string     `json:"userId"`
	DisplayName string     `json:"displayName"`
	Avatar      string     `json:"avatar"`
	IsAdmin     bool       `json:"isAdmin"`
	IsBanned    bool       `json:"isBanned"`
	BannedUntil *time.Time `json:"bannedUntil,omitempty"`
	IsPremium   bool       `json:"isPremium"`
	TotalPosts  int        `json:"totalPosts"`
}

// PostsRemaining 免费额度剩余发帖数，高级用户或不限额时返回 -1
func (r *Requestor) PostsRemaining(limit int) int {
	if r.IsPremium || limit <= 0 {
		return -1
	}
	return max(0, limit-r.TotalPosts)
}

// ToRequestor 转换为请求发起人
func (u *User) ToRequestor() *Requestor {
	return &Requestor{
		UserID:      u.ID,
		DisplayName: u.AnonymousName,
		Avatar:      u.Avatar,
		IsAdmin:     u.Role == RoleAdmin,
		IsBanned:    u.IsBanned,
		BannedUntil: u.BannedUntil,
		IsPremium:   u.UserType == TypePremium,
		TotalPosts:  u.TotalPosts,
	}
}
