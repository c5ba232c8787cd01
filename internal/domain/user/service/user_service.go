package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"anonboard/internal/domain/user/model"
	"anonboard/internal/domain/user/repository"
	"anonboard/pkg/errs"
	"anonboard/pkg/logger"

	"go.uber.org/zap"
)

// IdentityService 用户身份与封禁
type IdentityService interface {
	// ResolveRequestor 解析请求发起人，过期的临时封禁在此解除
	ResolveRequestor(ctx context.Context, userID string) (*model.Requestor, error)
	// EnsureCanWrite 所有写操作入口先调用，被封禁返回 Forbidden
	EnsureCanWrite(ctx context.Context, userID string) (*model.Requestor, error)
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)

	RegisterGuest(ctx context.Context, avatar string) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]model.User, int64, error)
	Ban(ctx context.Context, adminID, userID, reason string, durationDays int) error
	Unban(ctx context.Context, userID string) error
	PromoteToAdmin(ctx context.Context, userID string) error
	UpdateUserType(ctx context.Context, userID string, t model.UserType) error
	// LockForPosting 需在事务内调用，锁定作者行直到事务结束，用于发帖额度检查
	LockForPosting(ctx context.Context, userID string) (*model.Requestor, error)
}

type identityService struct {
	repo repository.UserRepository
	now  func() time.Time
}

func NewIdentityService(repo repository.UserRepository) IdentityService {
	return &identityService{repo: repo, now: time.Now}
}

func (s *identityService) ResolveRequestor(ctx context.Context, userID string) (*model.Requestor, error) {
	if userID == "" {
		return nil, errs.Forbidden("login required")
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.BanExpired(s.now()) {
		if err := s.repo.Unban(ctx, user.ID); err != nil {
			return nil, err
		}
		logger.Log.Info("temporary ban expired", zap.String("user_id", user.ID))
		user.IsBanned = false
		user.BanReason = ""
		user.BannedUntil = nil
	}
	return user.ToRequestor(), nil
}

func (s *identityService) EnsureCanWrite(ctx context.Context, userID string) (*model.Requestor, error) {
	r, err := s.ResolveRequestor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if r.IsBanned {
		return nil, errs.Forbidden("your account is banned")
	}
	return r, nil
}

func (s *identityService) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	users, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.AnonymousName
	}
	return names, nil
}

func (s *identityService) RegisterGuest(ctx context.Context, avatar string) (*model.User, error) {
	if avatar == "" {
		avatar = "avatar_01"
	}
	// 昵称冲突时换一个重试
	for attempt := 0; attempt < 5; attempt++ {
		suffix := 4
		if attempt >= 3 {
			suffix = 6
		}
		user := &model.User{AnonymousName: AnonymousName(suffix), Avatar: avatar}
		err := s.repo.Create(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, errs.ErrAlreadyExists) {
			return nil, err
		}
	}
	return nil, errs.Conflict("could not allocate an anonymous name, try again")
}

func (s *identityService) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *identityService) ListUsers(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	return s.repo.GetList(ctx, offset, limit)
}

func (s *identityService) Ban(ctx context.Context, adminID, userID, reason string, durationDays int) error {
	if adminID == userID {
		return errs.Forbidden("cannot ban yourself")
	}
	if durationDays < 0 {
		return errs.InvalidArgument("durationDays must not be negative")
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == model.RoleAdmin {
		return errs.Forbidden("cannot ban an admin")
	}

	var until *time.Time
	if durationDays > 0 {
		t := s.now().UTC().Add(time.Duration(durationDays) * 24 * time.Hour)
		until = &t
	}
	if err := s.repo.Ban(ctx, userID, strings.TrimSpace(reason), until); err != nil {
		return err
	}
	logger.Log.Info("user banned",
		zap.String("user_id", userID),
		zap.String("admin_id", adminID),
		zap.Int("days", durationDays),
	)
	return nil
}

func (s *identityService) Unban(ctx context.Context, userID string) error {
	return s.repo.Unban(ctx, userID)
}

func (s *identityService) PromoteToAdmin(ctx context.Context, userID string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == model.RoleAdmin {
		return nil
	}
	if user.IsBanned {
		return errs.Forbidden("cannot promote a banned user")
	}
	if err := s.repo.SetRole(ctx, userID, model.RoleAdmin); err != nil {
		return err
	}
	logger.Log.Info("user promoted to admin", zap.String("user_id", userID))
	return nil
}

func (s *identityService) UpdateUserType(ctx context.Context, userID string, t model.UserType) error {
	if !model.ValidUserType(t) {
		return errs.Newf(errs.ErrInvalidArgument, "unknown user type %q", t)
	}
	if err := s.repo.SetUserType(ctx, userID, t); err != nil {
		return err
	}
	logger.Log.Info("user type updated", zap.String("user_id", userID), zap.String("user_type", string(t)))
	return nil
}

func (s *identityService) LockForPosting(ctx context.Context, userID string) (*model.Requestor, error) {
	user, err := s.repo.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToRequestor(), nil
}

var namePrefixes = []string{
	"Anonymous", "Student", "User", "Scholar",
	"Learner", "Campus", "Anon", "Unknown",
	"Thinker", "Seeker", "Reader", "Curious",
}

// 去掉容易混淆的 0/O/1/I
const nameChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// AnonymousName 生成 Prefix_XXXX 形式的匿名昵称
func AnonymousName(suffixLen int) string {
	var sb strings.Builder
	sb.WriteString(namePrefixes[rand.IntN(len(namePrefixes))])
	sb.WriteByte('_')
	for i := 0; i < suffixLen; i++ {
		sb.WriteByte(nameChars[rand.IntN(len(nameChars))])
	}
	return sb.String()
}
