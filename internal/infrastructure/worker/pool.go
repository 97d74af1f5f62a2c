// Package worker 提供异步任务 Worker Pool
// 用于不应阻塞主流程的尽力而为任务：在线通知、生命周期事件
package worker

import (
	"sync"

	"go.uber.org/zap"
)

// Runner 异步任务提交接口
type Runner interface {
	Submit(action func())
}

// Pool 固定数量 Worker 消费缓冲通道
type Pool struct {
	taskChan  chan func()
	workerNum int
	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewPool 创建并启动 Worker Pool
func NewPool(workerNum, bufferSize int) *Pool {
	if workerNum <= 0 {
		workerNum = 1
	}
	if bufferSize < 0 {
		bufferSize = 0
	}
	p := &Pool{
		taskChan:  make(chan func(), bufferSize),
		workerNum: workerNum,
	}
	p.wg.Add(workerNum)
	for i := 0; i < workerNum; i++ {
		go p.startWorker()
	}
	zap.L().Info("worker pool started", zap.Int("workers", workerNum), zap.Int("buffer", bufferSize))
	return p
}

// startWorker panic 后重启自身
func (p *Pool) startWorker() {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("worker panic", zap.Any("recover", rec))
			go p.startWorker()
			return
		}
		p.wg.Done()
	}()

	for task := range p.taskChan {
		if task != nil {
			task()
		}
	}
}

// Submit 提交任务，通道已满或已关闭时同步执行
func (p *Pool) Submit(action func()) {
	if action == nil {
		return
	}
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		action()
		return
	}
	select {
	case p.taskChan <- action:
		p.mu.RUnlock()
	default:
		p.mu.RUnlock()
		zap.L().Warn("worker task channel full, executing synchronously")
		action()
	}
}

// Close 停止接收任务并等待已提交任务执行完毕
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.taskChan)
		p.mu.Unlock()
		p.wg.Wait()
	})
}

// Inline 直接在调用方 goroutine 执行任务
type Inline struct{}

func (Inline) Submit(action func()) {
	if action != nil {
		action()
	}
}
