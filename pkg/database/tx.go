package database

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// Transactor 在一个数据库事务中执行 fn
// fn 内通过 ctx 传递事务，仓储层用 Conn 取出当前连接
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor 创建基于 gorm 的事务执行器
func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	// 已在事务中则直接复用，不开启嵌套事务
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Conn 返回 ctx 中的事务连接，没有事务时返回 db
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
