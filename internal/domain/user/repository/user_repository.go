package repository

import (
	"context"
	"time"

	"anonboard/internal/domain/user/model"
	"anonboard/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetForUpdate 在当前事务内锁定用户行
	GetForUpdate(ctx context.Context, id string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]model.User, error)
	GetList(ctx context.Context, offset, limit int) ([]model.User, int64, error)
	Ban(ctx context.Context, id, reason string, until *time.Time) error
	Unban(ctx context.Context, id string) error
	SetRole(ctx context.Context, id string, role int) error
	SetUserType(ctx context.Context, id string, t model.UserType) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	err := database.Conn(ctx, r.db).Create(user).Error
	return database.Translate(err, "user not found", "anonymous name already taken")
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, database.Translate(err, "user not found", "")
	}
	return &user, nil
}

func (r *userRepository) GetForUpdate(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, database.Translate(err, "user not found", "")
	}
	return &user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := database.Conn(ctx, r.db).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *userRepository) GetList(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := database.Conn(ctx, r.db).Model(&model.User{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) Ban(ctx context.Context, id, reason string, until *time.Time) error {
	res := database.Conn(ctx, r.db).Model(&model.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_banned": true, "ban_reason": reason, "banned_until": until})
	return database.MustAffect(res, "user not found")
}

func (r *userRepository) Unban(ctx context.Context, id string) error {
	res := database.Conn(ctx, r.db).Model(&model.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_banned": false, "ban_reason": "", "banned_until": nil})
	return database.MustAffect(res, "user not found")
}

func (r *userRepository) SetRole(ctx context.Context, id string, role int) error {
	res := database.Conn(ctx, r.db).Model(&model.User{}).Where("id = ?", id).Update("role", role)
	return database.MustAffect(res, "user not found")
}

func (r *userRepository) SetUserType(ctx context.Context, id string, t model.UserType) error {
	res := database.Conn(ctx, r.db).Model(&model.User{}).Where("id = ?", id).Update("user_type", t)
	return database.MustAffect(res, "user not found")
}
