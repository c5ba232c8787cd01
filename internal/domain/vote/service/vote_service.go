package service

import (
	"context"
	"errors"

	commentmodel "anonboard/internal/domain/comment/model"
	userservice "anonboard/internal/domain/user/service"
	"anonboard/internal/domain/vote/model"
	"anonboard/internal/domain/vote/repository"
	"anonboard/internal/pkg/counter"
	"anonboard/pkg/database"
	"anonboard/pkg/errs"
	"anonboard/pkg/logger"
	"anonboard/pkg/metrics"

	"go.uber.org/zap"
)

// CommentFinder 读取投票目标
type CommentFinder interface {
	GetByID(ctx context.Context, id string) (*commentmodel.Comment, error)
}

// VoteLedger 一人一票，重复投相同值为撤销，投相反值为改票
type VoteLedger interface {
	Vote(ctx context.Context, commentID, voterID string, value int) (*model.Result, error)
	Unvote(ctx context.Context, commentID, voterID string) error
}

type voteLedger struct {
	repo     repository.VoteRepository
	comments CommentFinder
	identity userservice.IdentityService
	counter  counter.Propagator
	tx       database.Transactor
}

// 并发插入失败后按已有投票重试的次数
const conflictRetries = 1

func NewVoteLedger(
	repo repository.VoteRepository,
	comments CommentFinder,
	identity userservice.IdentityService,
	c counter.Propagator,
	tx database.Transactor,
) VoteLedger {
	return &voteLedger{repo: repo, comments: comments, identity: identity, counter: c, tx: tx}
}

// liveTarget 目标必须存在且未删除
func (l *voteLedger) liveTarget(ctx context.Context, commentID string) (*commentmodel.Comment, error) {
	comment, err := l.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.IsDeleted {
		return nil, errs.NotFound("comment not found")
	}
	return comment, nil
}

func (l *voteLedger) Vote(ctx context.Context, commentID, voterID string, value int) (*model.Result, error) {
	if _, err := l.identity.EnsureCanWrite(ctx, voterID); err != nil {
		return nil, err
	}
	comment, err := l.liveTarget(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !model.ValidValue(value) {
		return nil, errs.InvalidArgument("vote value must be 1 or -1")
	}

	var result *model.Result
	var delta int
	for attempt := 0; ; attempt++ {
		result, delta, err = l.apply(ctx, commentID, voterID, value)
		// 唯一约束冲突说明并发请求已经插入，重新读取后走已有投票分支
		if errors.Is(err, errs.ErrConflict) && attempt < conflictRetries {
			logger.Log.Info("vote insert conflict, retrying",
				zap.String("comment_id", commentID),
				zap.String("voter_id", voterID),
			)
			continue
		}
		break
	}
	if err != nil {
		return nil, err
	}

	metrics.GetGlobalCollector().RecordVote(string(result.Outcome))
	logger.Log.Debug("vote applied",
		zap.String("comment_id", commentID),
		zap.String("voter_id", voterID),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("delta", delta),
	)

	// 返回最新合计；读取失败时用进入时的值加上本次增量
	result.VoteCount = comment.VoteCount + delta
	if fresh, err := l.comments.GetByID(ctx, commentID); err == nil {
		result.VoteCount = fresh.VoteCount
	}
	return result, nil
}

// apply 在单个事务内完成状态迁移与计数增量
func (l *voteLedger) apply(ctx context.Context, commentID, voterID string, value int) (*model.Result, int, error) {
	var result model.Result
	var delta int

	err := l.tx.Do(ctx, func(ctx context.Context) error {
		existing, err := l.repo.FindForUpdate(ctx, voterID, model.TargetComment, commentID)
		if err != nil {
			return err
		}

		switch {
		case existing == nil:
			vote := &model.Vote{VoterID: voterID, TargetType: model.TargetComment, TargetID: commentID, Value: value}
			if err := l.repo.Create(ctx, vote); err != nil {
				return err
			}
			delta = value
			result = model.Result{Outcome: model.OutcomeAdded, CurrentVote: &value}
		case existing.Value == value:
			if err := l.repo.Delete(ctx, existing.ID); err != nil {
				return err
			}
			delta = -value
			result = model.Result{Outcome: model.OutcomeRemoved}
		default:
			if err := l.repo.UpdateValue(ctx, existing.ID, value); err != nil {
				return err
			}
			delta = value - existing.Value
			result = model.Result{Outcome: model.OutcomeChanged, CurrentVote: &value}
		}

		return l.counter.Increment(ctx, counter.CommentVoteCount, commentID, delta)
	})
	if err != nil {
		return nil, 0, err
	}
	return &result, delta, nil
}

func (l *voteLedger) Unvote(ctx context.Context, commentID, voterID string) error {
	if _, err := l.identity.EnsureCanWrite(ctx, voterID); err != nil {
		return err
	}

	removed := false
	err := l.tx.Do(ctx, func(ctx context.Context) error {
		existing, err := l.repo.FindForUpdate(ctx, voterID, model.TargetComment, commentID)
		if err != nil || existing == nil {
			return err
		}
		if err := l.repo.Delete(ctx, existing.ID); err != nil {
			return err
		}
		removed = true
		return l.counter.Increment(ctx, counter.CommentVoteCount, commentID, -existing.Value)
	})
	if err != nil {
		return err
	}
	if removed {
		metrics.GetGlobalCollector().RecordVote(string(model.OutcomeRemoved))
	}
	return nil
}
