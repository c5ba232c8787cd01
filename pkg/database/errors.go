package database

import (
	"errors"

	"anonboard/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres 错误码
const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02" // 例如非法的 uuid 字面量
)

// IsUniqueViolation 判断是否违反唯一约束
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// IsInvalidInput 参数无法转换为列类型，按记录不存在处理
func IsInvalidInput(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}

func notFoundMsg(msg string) string {
	if msg == "" {
		return "resource not found"
	}
	return msg
}

// Translate 将 gorm/pgx 错误映射为业务错误分类
// msg 为资源不存在或重复时返回给调用方的描述
func Translate(err error, notFound, duplicate string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound), IsInvalidInput(err):
		return errs.NotFound(notFoundMsg(notFound))
	case IsUniqueViolation(err):
		return errs.AlreadyExists(duplicate)
	default:
		return err
	}
}

// MustAffect 更新/删除语句没有命中任何记录时返回 NotFound
func MustAffect(res *gorm.DB, notFound string) error {
	if IsInvalidInput(res.Error) {
		return errs.NotFound(notFoundMsg(notFound))
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFound(notFound)
	}
	return nil
}
