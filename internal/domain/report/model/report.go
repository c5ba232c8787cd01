package model

import (
	"time"

	baseModel "anonboard/pkg/model"
)

// 举报目标类型
const (
	TargetPost    = "POST"
	TargetComment = "COMMENT"
)

// Reason 举报原因
type Reason string

const (
	ReasonSpam            Reason = "SPAM"
	ReasonAbuse           Reason = "ABUSE"
	ReasonFakeInformation Reason = "FAKE_INFORMATION"
	ReasonHarassment      Reason = "HARASSMENT"
	ReasonOther           Reason = "OTHER"
)

// Status 处理状态
type Status string

const (
	StatusPending   Status = "pending"
	StatusReviewed  Status = "reviewed"
	StatusResolved  Status = "resolved"
	StatusDismissed Status = "dismissed"
)

// RemovalNote 管理员删除内容时批量处理举报的备注
const RemovalNote = "Content removed by admin"

// Report 举报记录，ContentSnapshot 在举报时固定，之后不随原内容变化
type Report struct {
	baseModel.BaseModel
	ReporterID       string     `gorm:"type:uuid;not null;uniqueIndex:uq_reports_reporter_target,priority:1" json:"reporterId"`
	TargetType       string     `gorm:"size:16;not null;uniqueIndex:uq_reports_reporter_target,priority:2;index:idx_reports_target,priority:1" json:"targetType"`
	TargetID         string     `gorm:"type:uuid;not null;uniqueIndex:uq_reports_reporter_target,priority:3;index:idx_reports_target,priority:2" json:"targetId"`
	Reason           Reason     `gorm:"size:32;not null" json:"reason"`
	Description      string     `gorm:"type:text" json:"description"`
	Status           Status     `gorm:"size:16;not null;default:pending;index" json:"status"`
	ContentSnapshot  string     `gorm:"type:text" json:"contentSnapshot"`
	TargetAuthorName string     `gorm:"size:64" json:"targetAuthorName"`
	ReviewerID       *string    `gorm:"type:uuid" json:"reviewerId"`
	ReviewNotes      string     `gorm:"type:text" json:"reviewNotes"`
	ReviewedAt       *time.Time `json:"reviewedAt"`
}

// ValidReason 是否为已知原因
func ValidReason(r Reason) bool {
	switch r {
	case ReasonSpam, ReasonAbuse, ReasonFakeInformation, ReasonHarassment, ReasonOther:
		return true
	}
	return false
}

// ValidStatus 是否为已知状态
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusReviewed, StatusResolved, StatusDismissed:
		return true
	}
	return false
}

// ValidTarget 是否为可举报的目标类型
func ValidTarget(t string) bool {
	return t == TargetPost || t == TargetComment
}
