package model

import (
	baseModel "anonboard/pkg/model"
)

// TargetComment 目前只有评论可以投票
const TargetComment = "COMMENT"

// 投票取值
const (
	Up   = 1
	Down = -1
)

// Vote 投票记录，同一用户对同一目标最多一条
type Vote struct {
	baseModel.BaseModel
	VoterID    string `gorm:"type:uuid;not null;uniqueIndex:uq_votes_voter_target,priority:1" json:"-"`
	TargetType string `gorm:"size:16;not null;uniqueIndex:uq_votes_voter_target,priority:2" json:"targetType"`
	TargetID   string `gorm:"type:uuid;not null;uniqueIndex:uq_votes_voter_target,priority:3;index" json:"targetId"`
	Value      int    `gorm:"not null" json:"value"`
}

// Outcome 一次投票请求的结果
type Outcome string

const (
	OutcomeAdded   Outcome = "ADDED"
	OutcomeChanged Outcome = "CHANGED"
	OutcomeRemoved Outcome = "REMOVED"
)

// Result 投票结果，CurrentVote 为空表示当前未投票
type Result struct {
	Outcome     Outcome `json:"outcome"`
	CurrentVote *int    `json:"currentVote"`
	VoteCount   int     `json:"voteCount"`
}

// ValidValue 是否为合法取值
func ValidValue(v int) bool {
	return v == Up || v == Down
}
