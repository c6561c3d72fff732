package middleware

import (
	"fmt"
	"sync"
	"time"

	"chefs-fridge/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter 令牌桶限流器
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	lastTime time.Time
}

// NewRateLimiter 創建新的限流器
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:   float64(requests),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		lastTime: time.Now(),
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow() bool {
	return rl.allowAt(time.Now())
}

func (rl *RateLimiter) allowAt(now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	// 依經過時間補充令牌
	elapsed := now.Sub(rl.lastTime).Seconds()
	if elapsed > 0 {
		rl.tokens = min(rl.capacity, rl.tokens+elapsed*rl.rate)
		rl.lastTime = now
	}

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// ClientLimiter 每個用戶端 IP 各自一個令牌桶，閒置超過時間窗的桶會被清除
type ClientLimiter struct {
	requests int
	window   time.Duration

	mu       sync.Mutex
	limiters map[string]*RateLimiter
	stop     chan struct{}
	once     sync.Once
}

// NewClientLimiter 建立限流器並啟動閒置清理
func NewClientLimiter(requests int, window time.Duration) *ClientLimiter {
	l := &ClientLimiter{
		requests: requests,
		window:   window,
		limiters: make(map[string]*RateLimiter),
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop(max(window, time.Minute))
	return l
}

func (l *ClientLimiter) limiterFor(ip string) *RateLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	rl, ok := l.limiters[ip]
	if !ok {
		rl = NewRateLimiter(l.requests, l.window)
		l.limiters[ip] = rl
	}
	return rl
}

func (l *ClientLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup(time.Now())
		case <-l.stop:
			return
		}
	}
}

// cleanup 移除閒置超過時間窗的令牌桶；此時桶已補滿，重建不影響限流結果
func (l *ClientLimiter) cleanup(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for ip, rl := range l.limiters {
		rl.mu.Lock()
		idle := now.Sub(rl.lastTime)
		rl.mu.Unlock()
		if idle > l.window {
			delete(l.limiters, ip)
			removed++
		}
	}
	if removed > 0 {
		common.LogDebug("Idle rate limiters removed", zap.Int("count", removed))
	}
	return removed
}

// Len 目前追蹤的用戶端數
func (l *ClientLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Close 停止清理協程
func (l *ClientLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

// Middleware 限流中間件
func (l *ClientLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.limiterFor(c.ClientIP()).Allow() {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(l.window.Seconds())))
			common.WriteError(c, common.ErrTooManyRequests, false)
			return
		}

		c.Next()
	}
}
