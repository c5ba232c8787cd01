package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"anonboard/pkg/logger"

	"go.uber.org/zap"
)

// Task 队列中的任务及其已重试次数
type Task[T any] struct {
	Payload T
	Retry   int
}

// ProcessFunc 处理单个任务，返回错误时按重试策略重新入队
type ProcessFunc[T any] func(ctx context.Context, payload T) error

// DropFunc 任务被最终丢弃时回调（队列满或超过重试次数）
type DropFunc[T any] func(payload T, err error)

// WorkerPool 固定数量 worker 的异步任务池，尽力投递
type WorkerPool[T any] struct {
	TaskQueue  chan Task[T]
	RetryQueue chan Task[T] // 重试队列
	WorkerNum  int
	MaxRetry   int // 最大重试次数
	Backoff    time.Duration

	process ProcessFunc[T]
	onDrop  DropFunc[T]

	// pending 已入队且尚未处理完或丢弃的任务数，含重试队列与正在处理的任务
	pending atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorkerPool 创建任务池，bufferSize 为主队列容量
func NewWorkerPool[T any](process ProcessFunc[T], workerNum, bufferSize, maxRetry int) *WorkerPool[T] {
	if workerNum <= 0 {
		workerNum = 1
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool[T]{
		TaskQueue:  make(chan Task[T], bufferSize),
		RetryQueue: make(chan Task[T], bufferSize/2+1),
		WorkerNum:  workerNum,
		MaxRetry:   maxRetry,
		Backoff:    time.Second,
		process:    process,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// OnDrop 设置丢弃回调
func (p *WorkerPool[T]) OnDrop(fn DropFunc[T]) *WorkerPool[T] {
	p.onDrop = fn
	return p
}

func (p *WorkerPool[T]) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	// 启动重试处理协程
	p.wg.Add(1)
	go p.retryWorker()
	logger.Log.Info("worker pool started", zap.Int("workers", p.WorkerNum))
}

// Stop 立即停止所有 worker，未处理的任务被放弃
func (p *WorkerPool[T]) Stop() {
	p.cancel()
	p.wg.Wait()
}

// Shutdown 等待已入队的任务处理完（含重试）后停止，ctx 到期则放弃剩余任务
// 返回被放弃的任务数；调用前应先停止 AddTask 的调用方
func (p *WorkerPool[T]) Shutdown(ctx context.Context) int {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for p.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			left := int(p.pending.Load())
			logger.Log.Warn("worker pool shutdown timed out", zap.Int("abandoned", left))
			p.Stop()
			return left
		case <-ticker.C:
		}
	}
	p.Stop()
	return 0
}

// Pending 尚未完成的任务数
func (p *WorkerPool[T]) Pending() int {
	return int(p.pending.Load())
}

// Len 主队列中待处理任务数
func (p *WorkerPool[T]) Len() int {
	return len(p.TaskQueue)
}

func (p *WorkerPool[T]) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task := <-p.TaskQueue:
			p.handle(id, task)
		}
	}
}

func (p *WorkerPool[T]) handle(id int, task Task[T]) {
	err := p.process(p.ctx, task.Payload)
	if err == nil {
		p.pending.Add(-1)
		return
	}
	logger.Log.Warn("task failed", zap.Int("worker", id), zap.Int("retry", task.Retry), zap.Error(err))

	// 未达到最大重试次数，加入重试队列
	if task.Retry >= p.MaxRetry {
		p.drop(task, err)
		return
	}
	task.Retry++
	select {
	case p.RetryQueue <- task:
	default:
		p.drop(task, err)
	}
}

func (p *WorkerPool[T]) retryWorker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task := <-p.RetryQueue:
			// 延迟重试，避免立即重试
			select {
			case <-p.ctx.Done():
				return
			case <-time.After(time.Duration(task.Retry) * p.Backoff):
			}

			select {
			case p.TaskQueue <- task:
			default:
				p.drop(task, nil)
			}
		}
	}
}

// drop 任务离开队列且不再处理
func (p *WorkerPool[T]) drop(task Task[T], err error) {
	p.pending.Add(-1)
	logger.Log.Error("task dropped", zap.Int("retry", task.Retry), zap.Error(err))
	if p.onDrop != nil {
		p.onDrop(task.Payload, err)
	}
}

// AddTask 非阻塞入队，队列满时直接丢弃，返回是否入队成功
func (p *WorkerPool[T]) AddTask(payload T) bool {
	p.pending.Add(1)
	select {
	case p.TaskQueue <- Task[T]{Payload: payload}:
		return true
	default:
		p.drop(Task[T]{Payload: payload}, nil)
		return false
	}
}
