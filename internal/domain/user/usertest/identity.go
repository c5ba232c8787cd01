// Package usertest 提供身份服务的内存实现，供其他领域的测试使用
package usertest

import (
	"context"
	"sync"

	"anonboard/internal/domain/user/model"
	"anonboard/pkg/errs"
)

// Identity 内存身份服务
type Identity struct {
	mu    sync.Mutex
	users map[string]*model.Requestor
}

func NewIdentity() *Identity {
	return &Identity{users: make(map[string]*model.Requestor)}
}

// Add 添加用户，返回自身便于链式调用
func (f *Identity) Add(id, name string) *Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = &model.Requestor{UserID: id, DisplayName: name, Avatar: "avatar_01"}
	return f
}

// AddAdmin 添加管理员
func (f *Identity) AddAdmin(id string) *Identity {
	f.Add(id, "Admin_"+id)
	f.users[id].IsAdmin = true
	return f
}

// SetBanned 设置封禁状态
func (f *Identity) SetBanned(id string, banned bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id].IsBanned = banned
}

// SetTotalPosts 设置累计发帖数
func (f *Identity) SetTotalPosts(id string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id].TotalPosts = n
}

// SetPremium 设置高级用户
func (f *Identity) SetPremium(id string, premium bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id].IsPremium = premium
}

func (f *Identity) ResolveRequestor(ctx context.Context, userID string) (*model.Requestor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if userID == "" {
		return nil, errs.Forbidden("login required")
	}
	r, ok := f.users[userID]
	if !ok {
		return nil, errs.NotFound("user not found")
	}
	cp := *r
	return &cp, nil
}

func (f *Identity) EnsureCanWrite(ctx context.Context, userID string) (*model.Requestor, error) {
	r, err := f.ResolveRequestor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if r.IsBanned {
		return nil, errs.Forbidden("your account is banned")
	}
	return r, nil
}

func (f *Identity) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if r, ok := f.users[id]; ok {
			out[id] = r.DisplayName
		}
	}
	return out, nil
}

func (f *Identity) RegisterGuest(ctx context.Context, avatar string) (*model.User, error) {
	return nil, errs.InvalidArgument("not supported")
}

func (f *Identity) GetUser(ctx context.Context, id string) (*model.User, error) {
	r, err := f.ResolveRequestor(ctx, id)
	if err != nil {
		return nil, err
	}
	u := &model.User{AnonymousName: r.DisplayName, Avatar: r.Avatar, IsBanned: r.IsBanned, TotalPosts: r.TotalPosts, UserType: model.TypeFree}
	u.ID = r.UserID
	if r.IsAdmin {
		u.Role = model.RoleAdmin
	}
	if r.IsPremium {
		u.UserType = model.TypePremium
	}
	return u, nil
}

func (f *Identity) ListUsers(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	return nil, 0, nil
}

func (f *Identity) Ban(ctx context.Context, adminID, userID, reason string, durationDays int) error {
	f.SetBanned(userID, true)
	return nil
}

func (f *Identity) Unban(ctx context.Context, userID string) error {
	f.SetBanned(userID, false)
	return nil
}

func (f *Identity) PromoteToAdmin(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.users[userID]
	if !ok {
		return errs.NotFound("user not found")
	}
	if r.IsBanned {
		return errs.Forbidden("cannot promote a banned user")
	}
	r.IsAdmin = true
	return nil
}

func (f *Identity) UpdateUserType(ctx context.Context, userID string, t model.UserType) error {
	if !model.ValidUserType(t) {
		return errs.InvalidArgument("unknown user type")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.users[userID]
	if !ok {
		return errs.NotFound("user not found")
	}
	r.IsPremium = t == model.TypePremium
	return nil
}

// LockForPosting 内存实现不加锁，直接返回当前状态
func (f *Identity) LockForPosting(ctx context.Context, userID string) (*model.Requestor, error) {
	return f.ResolveRequestor(ctx, userID)
}
