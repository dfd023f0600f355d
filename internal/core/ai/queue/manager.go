package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull 等待中的請求已達上限
	ErrQueueFull = errors.New("vision queue is full")
	// ErrQueueClosed 管理器已關閉
	ErrQueueClosed = errors.New("vision queue is closed")
)

// Status 隊列狀態
type Status struct {
	InFlight       int   `json:"in_flight"`
	Waiting        int64 `json:"waiting"`
	ProcessedCount int64 `json:"processed_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
}

// Manager 限制同時進行的視覺模型呼叫數；超出的請求排隊，排隊數有上限
type Manager struct {
	slots     chan struct{}
	maxSize   int
	waiting   int64
	processed int64
	done      chan struct{}
	closeOnce sync.Once
}

// NewManager 創建新的隊列管理器
func NewManager(cfg config.QueueConfig) *Manager {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Manager{
		slots:   make(chan struct{}, workers),
		maxSize: cfg.MaxSize,
		done:    make(chan struct{}),
	}
}

// Acquire 取得執行名額，成功時回傳 release；ctx 取消、排隊已滿或已關閉時返回錯誤
func (m *Manager) Acquire(ctx context.Context) (func(), error) {
	select {
	case <-m.done:
		return nil, ErrQueueClosed
	default:
	}

	select {
	case m.slots <- struct{}{}:
		return m.releaseFunc(), nil
	default:
	}

	if atomic.AddInt64(&m.waiting, 1) > int64(m.maxSize) {
		atomic.AddInt64(&m.waiting, -1)
		common.LogWarn("Vision queue full", zap.Int("max_queue_size", m.maxSize))
		return nil, ErrQueueFull
	}
	defer atomic.AddInt64(&m.waiting, -1)

	select {
	case m.slots <- struct{}{}:
		return m.releaseFunc(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.done:
		return nil, ErrQueueClosed
	}
}

func (m *Manager) releaseFunc() func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			<-m.slots
			atomic.AddInt64(&m.processed, 1)
		})
	}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		InFlight:       len(m.slots),
		Waiting:        atomic.LoadInt64(&m.waiting),
		ProcessedCount: atomic.LoadInt64(&m.processed),
		MaxQueueSize:   m.maxSize,
		Workers:        cap(m.slots),
	}
}

// Close 關閉隊列，等待中的請求會收到 ErrQueueClosed
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}
