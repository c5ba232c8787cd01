// Package memstore 内存版计数器与事务执行器，供各领域服务的单元测试使用
package memstore

import (
	"context"
	"sync"

	"anonboard/internal/pkg/counter"
	"anonboard/pkg/errs"
)

// Counter 线程安全的内存计数器，语义与数据库实现一致：不存在返回 NotFound，结果不小于 0
type Counter struct {
	mu      sync.Mutex
	values  map[counter.Field]map[string]int
	Clamped int
}

func NewCounter() *Counter {
	return &Counter{values: make(map[counter.Field]map[string]int)}
}

// Seed 登记一条记录的初始计数
func (c *Counter) Seed(f counter.Field, id string, v int) *Counter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values[f] == nil {
		c.values[f] = make(map[string]int)
	}
	c.values[f][id] = v
	return c
}

func (c *Counter) Increment(ctx context.Context, f counter.Field, id string, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[f][id]
	if !ok {
		return errs.NotFound(f.Table + " not found")
	}
	v += delta
	if v < 0 && !f.Signed {
		v = 0
		c.Clamped++
	}
	c.values[f][id] = v
	return nil
}

// Get 读取当前计数
func (c *Counter) Get(f counter.Field, id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[f][id]
}

// Transactor 直接执行 fn，不提供回滚
type Transactor struct{}

func (Transactor) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
