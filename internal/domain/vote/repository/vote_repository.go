package repository

import (
	"context"
	"errors"

	"anonboard/internal/domain/vote/model"
	"anonboard/pkg/database"
	"anonboard/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoteRepository interface {
	// FindForUpdate 锁定已有投票，不存在时返回 nil, nil
	FindForUpdate(ctx context.Context, voterID, targetType, targetID string) (*model.Vote, error)
	// Create 违反唯一约束时返回 Conflict
	Create(ctx context.Context, vote *model.Vote) error
	UpdateValue(ctx context.Context, id string, value int) error
	Delete(ctx context.Context, id string) error
	// FindValues 查询投票者对一批目标的投票值
	FindValues(ctx context.Context, voterID, targetType string, targetIDs []string) (map[string]int, error)
}

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) FindForUpdate(ctx context.Context, voterID, targetType, targetID string) (*model.Vote, error) {
	var vote model.Vote
	err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("voter_id = ? AND target_type = ? AND target_id = ?", voterID, targetType, targetID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Translate(err, "comment not found", "")
	}
	return &vote, nil
}

func (r *voteRepository) Create(ctx context.Context, vote *model.Vote) error {
	err := database.Conn(ctx, r.db).Create(vote).Error
	if database.IsUniqueViolation(err) {
		return errs.Conflict("vote already exists")
	}
	return err
}

func (r *voteRepository) UpdateValue(ctx context.Context, id string, value int) error {
	res := database.Conn(ctx, r.db).Model(&model.Vote{}).Where("id = ?", id).Update("value", value)
	return database.MustAffect(res, "vote not found")
}

func (r *voteRepository) Delete(ctx context.Context, id string) error {
	res := database.Conn(ctx, r.db).Where("id = ?", id).Delete(&model.Vote{})
	return database.MustAffect(res, "vote not found")
}

func (r *voteRepository) FindValues(ctx context.Context, voterID, targetType string, targetIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(targetIDs))
	if len(targetIDs) == 0 {
		return out, nil
	}
	var votes []model.Vote
	err := database.Conn(ctx, r.db).
		Select("target_id", "value").
		Where("voter_id = ? AND target_type = ? AND target_id IN ?", voterID, targetType, targetIDs).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	for _, v := range votes {
		out[v.TargetID] = v.Value
	}
	return out, nil
}
