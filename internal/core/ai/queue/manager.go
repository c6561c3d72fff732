package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"chefs-fridge/internal/pkg/common"

	"go.uber.org/zap"
)

// DefaultWorkers 未設定時同時進行的模型呼叫上限
const DefaultWorkers = 4

// ErrClosed 隊列已關閉
var ErrClosed = errors.New("queue manager is closed")

// Status 隊列狀態
type Status struct {
	Waiting   int `json:"waiting"`
	Running   int `json:"running"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Workers   int `json:"workers"`
}

// Manager 隊列管理器，限制所有會話同時進行的模型呼叫數量
type Manager struct {
	workers   int
	slots     chan struct{}
	done      chan struct{}
	once      sync.Once
	waiting   int64
	processed int64
	failed    int64
}

// NewManager 創建新的隊列管理器
func NewManager(workers int) *Manager {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Manager{
		workers: workers,
		slots:   make(chan struct{}, workers),
		done:    make(chan struct{}),
	}
}

// Do 取得空位後執行 fn；等待期間 ctx 結束或隊列關閉則不執行
func (m *Manager) Do(ctx context.Context, task string, fn func(ctx context.Context) error) error {
	atomic.AddInt64(&m.waiting, 1)
	select {
	case m.slots <- struct{}{}:
		atomic.AddInt64(&m.waiting, -1)
	case <-ctx.Done():
		atomic.AddInt64(&m.waiting, -1)
		common.LogWarn("等待模型呼叫空位逾時",
			zap.String("task", task),
			zap.Error(ctx.Err()),
		)
		return ctx.Err()
	case <-m.done:
		atomic.AddInt64(&m.waiting, -1)
		return ErrClosed
	}
	defer func() { <-m.slots }()

	common.LogDebug("Request dequeued",
		zap.String("task", task),
		zap.Int("running", len(m.slots)),
		zap.Int("workers", m.workers),
	)

	err := fn(ctx)
	atomic.AddInt64(&m.processed, 1)
	if err != nil {
		atomic.AddInt64(&m.failed, 1)
	}
	return err
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		Waiting:   int(atomic.LoadInt64(&m.waiting)),
		Running:   len(m.slots),
		Processed: int(atomic.LoadInt64(&m.processed)),
		Failed:    int(atomic.LoadInt64(&m.failed)),
		Workers:   m.workers,
	}
}

// Close 關閉隊列管理器，等待中的呼叫回傳 ErrClosed
func (m *Manager) Close() {
	m.once.Do(func() { close(m.done) })
}
